package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual_NowOnlyMovesOnAdvance(t *testing.T) {
	m := NewManual(epoch)
	assert.Equal(t, epoch, m.Now())

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), m.Now())
}

func TestManual_FiresInDeadlineOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []string

	m.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	m.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	m.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	m.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, m.Pending())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_TiesFireInScheduleOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []int

	for i := 1; i <= 3; i++ {
		i := i
		m.AfterFunc(time.Second, func() { order = append(order, i) })
	}

	m.Advance(time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestManual_CallbackSeesDeadline(t *testing.T) {
	m := NewManual(epoch)
	var seen time.Time

	m.AfterFunc(2*time.Second, func() { seen = m.Now() })
	m.Advance(10 * time.Second)

	assert.Equal(t, epoch.Add(2*time.Second), seen)
	assert.Equal(t, epoch.Add(10*time.Second), m.Now())
}

func TestManual_RearmedTimerFiresWithinSameAdvance(t *testing.T) {
	m := NewManual(epoch)
	var ticks []time.Duration

	var arm func()
	arm = func() {
		m.AfterFunc(time.Second, func() {
			ticks = append(ticks, m.Now().Sub(epoch))
			arm()
		})
	}
	arm()

	m.Advance(3500 * time.Millisecond)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, ticks)
	assert.Equal(t, 1, m.Pending())
}

func TestManual_StopPreventsFire(t *testing.T) {
	m := NewManual(epoch)
	fired := false

	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing to cancel")

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManual_StopAfterFireReturnsFalse(t *testing.T) {
	m := NewManual(epoch)
	timer := m.AfterFunc(time.Second, func() {})

	m.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManual_CallbackCanStopSibling(t *testing.T) {
	m := NewManual(epoch)
	fired := false

	var sibling Timer
	m.AfterFunc(time.Second, func() { sibling.Stop() })
	sibling = m.AfterFunc(time.Second, func() { fired = true })

	m.Advance(time.Second)
	assert.False(t, fired)
}

func TestManual_Next(t *testing.T) {
	m := NewManual(epoch)
	_, ok := m.Next()
	require.False(t, ok)

	m.AfterFunc(5*time.Second, func() {})
	m.AfterFunc(2*time.Second, func() {})

	next, ok := m.Next()
	require.True(t, ok)
	assert.Equal(t, epoch.Add(2*time.Second), next)
}

func TestManual_AdvanceToPastIsNoop(t *testing.T) {
	m := NewManual(epoch)
	m.Advance(time.Second)
	m.AdvanceTo(epoch)
	assert.Equal(t, epoch.Add(time.Second), m.Now())
}

func TestSystem_AfterFuncFires(t *testing.T) {
	done := make(chan struct{})
	System{}.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("system timer did not fire")
	}
}
