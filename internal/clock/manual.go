package clock

import (
	"sync"
	"time"
)

// Manual is a controllable clock for tests and deterministic simulation.
//
// Time only advances through Advance or AdvanceTo. Due timers fire in
// deadline order; timers sharing a deadline fire in the order they were
// scheduled. Callbacks run on the caller's goroutine with the clock already
// set to the timer's deadline, so a callback that schedules a follow-up timer
// schedules it relative to its own deadline.
//
// Thread-safety: all methods are safe for concurrent use; callbacks are
// invoked without the internal lock held.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m    *Manual
	when time.Time
	seq  uint64
	f    func()
}

// NewManual creates a manual clock reading start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
// A non-positive d fires on the next Advance/AdvanceTo call.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{m: m, when: m.now.Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Stop cancels the timer if it has not fired yet.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	for i, other := range t.m.timers {
		if other == t {
			t.m.timers = append(t.m.timers[:i], t.m.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers scheduled by callbacks during the advance.
func (m *Manual) Advance(d time.Duration) {
	m.AdvanceTo(m.Now().Add(d))
}

// AdvanceTo moves the clock to target, firing due timers in order.
// Moving backwards is a no-op.
func (m *Manual) AdvanceTo(target time.Time) {
	for {
		m.mu.Lock()
		if target.Before(m.now) {
			m.mu.Unlock()
			return
		}
		t := m.popDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.when
		m.mu.Unlock()

		t.f()
	}
}

// Next reports the deadline of the earliest pending timer.
func (m *Manual) Next() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.earliestLocked()
	if t == nil {
		return time.Time{}, false
	}
	return t.when, true
}

// Pending returns the number of scheduled, unfired timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) earliestLocked() *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if best == nil || t.when.Before(best.when) || (t.when.Equal(best.when) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// popDueLocked removes and returns the earliest timer due at or before target.
func (m *Manual) popDueLocked(target time.Time) *manualTimer {
	t := m.earliestLocked()
	if t == nil || t.when.After(target) {
		return nil
	}
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
	return t
}
