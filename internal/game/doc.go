// Package game implements one round of the falling-problems game.
//
// A Session owns a board, an input mode, a score and every timer it has
// scheduled. It moves through three states:
//
//	Idle --Start--> Running --spawn onto a full board--> GameOver
//
// A new game is a new Session; a finished or abandoned session is never
// restarted. Close cancels every pending timer so a superseded session can
// never touch state again.
//
// Session is not safe for concurrent use. All calls, including the timer
// callbacks it schedules on its clock, must be serialized by the caller.
// engine.Engine does this by routing everything through one event loop;
// tests do it by driving a clock.Manual from the test goroutine.
package game
