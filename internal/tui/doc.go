// Package tui drives an engine from a terminal.
//
// The App reads keys from a tcell screen, turns them into engine
// commands, and redraws on every published snapshot. Tones for correct
// and incorrect answers come from a Sound registered as a session
// observer.
package tui
