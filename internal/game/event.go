package game

import (
	"time"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/input"
)

// EventKind names something that happened in a session.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventSpawned   EventKind = "spawned"
	EventSettled   EventKind = "settled"
	EventInput     EventKind = "input"
	EventCorrect   EventKind = "correct"
	EventIncorrect EventKind = "incorrect"
	EventReverted  EventKind = "reverted"
	EventRemoved   EventKind = "removed"
	EventGameOver  EventKind = "game_over"
	// EventAbandoned is emitted when a running session is closed by a reset.
	EventAbandoned EventKind = "abandoned"
)

// Event is one entry in a session's history.
//
// Seq is strictly increasing within a session. Offset is measured from the
// session's start so traces do not depend on wall time. Fields that do not
// apply to a kind are zero.
type Event struct {
	Seq       int64
	Round     int
	Kind      EventKind
	Offset    time.Duration
	Mode      input.Kind
	Challenge board.ID
	A, B      int
	Text      string
	Elapsed   time.Duration
	Points    int
	Score     int
	Combo     int
}

// Observer receives session events synchronously, in order, on the
// goroutine driving the session. Implementations must not call back into
// the session.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Recorder is an Observer that keeps every event. Used by tests and the
// scenario harness.
type Recorder struct {
	Events []Event
}

// Observe appends ev.
func (r *Recorder) Observe(ev Event) { r.Events = append(r.Events, ev) }

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []EventKind {
	out := make([]EventKind, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Kind
	}
	return out
}
