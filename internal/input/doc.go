// Package input routes digit entry to challenges on the board.
//
// Two modes exist and a session uses exactly one of them:
//
//   - Direct: every challenge has its own text field; edits name their
//     target challenge explicitly.
//   - Keypad: one shared keypad writes into whichever challenge holds focus.
//     At most one challenge is focused and focus never refers to a challenge
//     that has left the board.
//
// A Mode only mutates challenge text. Deciding whether the new text is a
// correct or incorrect answer is the session's job; every mutating method
// returns the challenge it changed (or nil) so the caller can resolve it.
package input
