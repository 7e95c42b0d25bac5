// Package board models the challenges on the playing field.
//
// A Board is a capacity-bounded, spawn-ordered collection of Challenges.
// It allocates challenge IDs, draws operands, and refuses to grow past its
// capacity; deciding what a full board means for the game is left to the
// caller.
//
// INVARIANTS:
//   - Len() <= Capacity() at all times
//   - IDs are unique, start at 1, and are never reused by the same Board
//   - Challenges() is ordered oldest first
//   - Challenge.Expected == A*B and never changes after creation
//
// A Board is not safe for concurrent use; it is owned by a single game
// session which is driven by a single writer.
package board
