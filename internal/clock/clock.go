package clock

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. Returns false if the callback already ran
	// or the timer was already stopped.
	Stop() bool
}

// Clock is a source of wall time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the real clock backed by the time package.
//
// AfterFunc callbacks run on their own goroutine; callers that need
// serialized execution must hand the work to a single writer (see
// engine.Engine).
type System struct{}

// Now returns the current time with a monotonic clock reading.
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f after d using time.AfterFunc.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
