// Package engine hosts game sessions behind a single-writer event loop.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every player command (start, reset, digit, backspace, text, focus) and
// every timer a session schedules is turned into an Event and pushed onto
// one FIFO queue. Engine.Run pops events one at a time on a single
// goroutine, so the session never sees two callbacks interleave. Queue
// order is the one total order of everything that happens in a game.
//
// Event Processing Flow:
//  1. Callers enqueue commands from any goroutine (HTTP handlers, the
//     terminal UI, tests).
//  2. Session timers fire on the clock's goroutine and only enqueue a
//     timer event; they never touch session state directly.
//  3. Run dequeues, routes to the current session, then publishes a fresh
//     snapshot.
//  4. Readers take snapshots from an atomic pointer and never block the
//     loop.
//
// Sessions and Rounds:
// Each New Game builds a new game.Session numbered by round. Timer events
// carry the round that scheduled them; events from a superseded round are
// dropped, and a stopped timer never runs even if its fire was already
// queued.
//
// Deterministic Driving:
// With a clock.Manual, tests and the scenario harness skip Run and call
// Drain or Advance from one goroutine instead. Everything then happens in a
// reproducible order.
package engine
