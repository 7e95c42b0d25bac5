// Package clock provides the time sources used by the challenge engine.
//
// Two kinds of time are involved:
//
//   - Wall time (Clock): Now() for measuring how long a challenge was on the
//     board, and AfterFunc() for the cancellable timers that drive spawning,
//     settling, removal and rejection feedback.
//   - Logical time (Seq): a monotonic counter that stamps every game event so
//     traces have a total order independent of wall time.
//
// System is backed by the time package. Manual is a deterministic clock for
// tests and scenario simulation: time only moves when Advance or AdvanceTo is
// called, and due timers fire in deadline order on the caller's goroutine.
package clock
