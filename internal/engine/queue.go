package engine

import (
	"sync"
	"sync/atomic"

	"github.com/roach88/mathtables/internal/board"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeStart starts a game if none is running.
	EventTypeStart EventType = iota + 1
	// EventTypeReset abandons the current game and starts a new one.
	EventTypeReset
	// EventTypeDigit appends one digit.
	EventTypeDigit
	// EventTypeBackspace removes one character.
	EventTypeBackspace
	// EventTypeText replaces a challenge's whole text.
	EventTypeText
	// EventTypeFocus moves keypad focus.
	EventTypeFocus
	// EventTypeTimer runs a callback scheduled by a session.
	EventTypeTimer
)

var eventTypeNames = map[EventType]string{
	EventTypeStart:     "start",
	EventTypeReset:     "reset",
	EventTypeDigit:     "digit",
	EventTypeBackspace: "backspace",
	EventTypeText:      "text",
	EventTypeFocus:     "focus",
	EventTypeTimer:     "timer",
}

// String returns the event type name used in logs.
func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Event is one unit of work for the loop.
type Event struct {
	Type      EventType
	Challenge board.ID
	Digit     rune
	Text      string
	// Touch reports detected touch capability; read by start and reset.
	Touch bool

	timer *loopTimer
}

// loopTimer is a session timer whose callback runs on the loop.
type loopTimer struct {
	round   int
	f       func()
	inner   atomic.Value // clock.Timer
	stopped atomic.Bool
	ran     atomic.Bool
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so timer fires and player input never block each
// other. The signal channel enables context-aware waiting in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Nil out the slot so the backing array does not pin timer closures.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // Try TryDequeue
//	}
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
