package engine

import (
	"time"

	"github.com/roach88/mathtables/internal/clock"
)

// loopClock is the clock handed to a session. Its timers do not run their
// callback when they fire; they enqueue it, so the callback runs on the
// loop like any other event.
type loopClock struct {
	e     *Engine
	round int
}

var _ clock.Clock = loopClock{}

func (c loopClock) Now() time.Time {
	return c.e.clock.Now()
}

func (c loopClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	t := &loopTimer{round: c.round, f: f}
	inner := c.e.clock.AfterFunc(d, func() {
		c.e.queue.Enqueue(Event{Type: EventTypeTimer, timer: t})
	})
	t.inner.Store(inner)
	return t
}

// Stop cancels the timer. A fire that is already queued is discarded when
// the loop reaches it.
func (t *loopTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	if inner, ok := t.inner.Load().(clock.Timer); ok {
		inner.Stop()
	}
	return !t.ran.Load()
}
