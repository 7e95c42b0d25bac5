package testutil

import (
	"time"

	"github.com/roach88/mathtables/internal/clock"
)

// Epoch is the fixed start time for deterministic tests and scenarios.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewClock returns a manual clock parked at Epoch.
//
// Nothing fires until the test advances it, so the same scenario always
// produces the same sequence of timer callbacks.
func NewClock() *clock.Manual {
	return clock.NewManual(Epoch)
}

// At returns Epoch plus d, for asserting timestamps.
func At(d time.Duration) time.Time {
	return Epoch.Add(d)
}
