package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/clock"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/input"
)

// ErrStopped is returned by Wait once the engine has been stopped.
var ErrStopped = errors.New("engine: stopped")

// OperandFactory returns the operand source for a round.
type OperandFactory func(round int) board.OperandSource

// Engine is the single-writer game loop.
//
// Thread-safety model:
//   - Start, Reset, SubmitDigit, SubmitBackspace, SubmitText, Focus:
//     safe from any goroutine (they only enqueue)
//   - Snapshot, Version, Updates, Wait: safe from any goroutine
//   - Run, Step, Drain, Advance: exactly one goroutine at a time, and never
//     Run together with the others
//
// INVARIANTS:
//   - session is only touched from the goroutine processing events
//   - round increases by one for every session built
type Engine struct {
	cfg       game.Config
	clock     clock.Clock
	kind      input.Kind
	touch     bool
	logger    *slog.Logger
	observers []game.Observer
	operands  OperandFactory
	queue     *eventQueue

	// Loop-owned.
	session *game.Session
	round   int

	snapshot atomic.Pointer[game.Snapshot]
	version  atomic.Uint64
	updates  chan struct{}

	mu      sync.Mutex
	changed chan struct{}
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger for the engine and its sessions.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver attaches o to every session the engine builds.
func WithObserver(o game.Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithClock sets the time source. Default: clock.System.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithMode selects the input mode. KindAuto (the default) picks a mode
// from the touch capability reported at start.
func WithMode(k input.Kind) EngineOption {
	return func(e *Engine) {
		e.kind = k
	}
}

// WithTouch sets the touch capability assumed by Start and Reset.
func WithTouch(touch bool) EngineOption {
	return func(e *Engine) {
		e.touch = touch
	}
}

// WithOperands sets the per-round operand source factory.
func WithOperands(f OperandFactory) EngineOption {
	return func(e *Engine) {
		e.operands = f
	}
}

// WithSeed draws operands from a seeded generator; round n uses seed+n.
// A zero seed keeps the unseeded default.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) {
		if seed == 0 {
			return
		}
		e.operands = func(round int) board.OperandSource {
			return board.NewRandomOperands(seed + uint64(round))
		}
	}
}

// New creates an engine holding an idle first round.
func New(cfg game.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     cfg,
		clock:   clock.System{},
		kind:    input.KindAuto,
		logger:  slog.Default(),
		queue:   newEventQueue(),
		updates: make(chan struct{}, 1),
		changed: make(chan struct{}),
		operands: func(int) board.OperandSource {
			return board.NewRandomOperands(0)
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	e.session = e.newSession(e.touch)
	e.publish()
	return e
}

// Start starts a game unless one is running. After a game over it starts a
// fresh round.
func (e *Engine) Start() bool { return e.StartWith(e.touch) }

// StartWith is Start with the client's detected touch capability.
func (e *Engine) StartWith(touch bool) bool {
	return e.queue.Enqueue(Event{Type: EventTypeStart, Touch: touch})
}

// Reset abandons the current round and starts a new one.
func (e *Engine) Reset() bool { return e.ResetWith(e.touch) }

// ResetWith is Reset with the client's detected touch capability.
func (e *Engine) ResetWith(touch bool) bool {
	return e.queue.Enqueue(Event{Type: EventTypeReset, Touch: touch})
}

// SubmitDigit appends d to target, or to the focused challenge when target
// is board.NoID in keypad mode.
func (e *Engine) SubmitDigit(target board.ID, d rune) bool {
	return e.queue.Enqueue(Event{Type: EventTypeDigit, Challenge: target, Digit: d})
}

// SubmitBackspace removes the last character of target (or the focused
// challenge).
func (e *Engine) SubmitBackspace(target board.ID) bool {
	return e.queue.Enqueue(Event{Type: EventTypeBackspace, Challenge: target})
}

// SubmitText replaces target's text (direct mode field edit).
func (e *Engine) SubmitText(target board.ID, text string) bool {
	return e.queue.Enqueue(Event{Type: EventTypeText, Challenge: target, Text: text})
}

// Focus moves keypad focus to id.
func (e *Engine) Focus(id board.ID) bool {
	return e.queue.Enqueue(Event{Type: EventTypeFocus, Challenge: id})
}

// Enqueue submits a raw event. Thread-safe.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	if ev.Type == EventTypeTimer {
		return false
	}
	return e.queue.Enqueue(ev)
}

// Snapshot returns the state published after the last processed event.
func (e *Engine) Snapshot() game.Snapshot {
	return *e.snapshot.Load()
}

// Version counts published snapshots.
func (e *Engine) Version() uint64 {
	return e.version.Load()
}

// Updates signals after snapshots are published. Signals coalesce; a
// single reader should call Snapshot on every receive.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// Wait blocks until a snapshot newer than since is published and returns
// it with its version. Once the engine is stopped it returns ErrStopped,
// including for the final snapshot published on the way out.
func (e *Engine) Wait(ctx context.Context, since uint64) (game.Snapshot, uint64, error) {
	for {
		e.mu.Lock()
		ch := e.changed
		e.mu.Unlock()

		if e.queue.Closed() {
			return game.Snapshot{}, 0, ErrStopped
		}
		if v := e.version.Load(); v > since {
			return e.Snapshot(), v, nil
		}

		select {
		case <-ctx.Done():
			return game.Snapshot{}, 0, ctx.Err()
		case <-ch:
		}
	}
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// Must be called from exactly ONE goroutine. The current round is closed on
// the way out so its timers stop.
//
// ERROR HANDLING: a failing event is logged and the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "mode", e.kind)
	defer e.shutdown()

	for {
		if ok, _ := e.Step(); ok {
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes with the queue.
			if e.queue.Len() == 0 && e.queue.Closed() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the event queue, which will cause Run() to return.
func (e *Engine) Stop() {
	e.queue.Close()
	e.notify()
}

// Step processes at most one queued event. Returns false if the queue was
// empty. A processing error has already been logged.
func (e *Engine) Step() (bool, error) {
	ev, ok := e.queue.TryDequeue()
	if !ok {
		return false, nil
	}
	err := e.processEvent(ev)
	if err != nil {
		logEventError(e.logger, ev, err)
	}
	return true, err
}

// Drain processes queued events until the queue is empty, including events
// enqueued while draining. Returns the number processed.
func (e *Engine) Drain() int {
	n := 0
	for {
		ok, _ := e.Step()
		if !ok {
			return n
		}
		n++
	}
}

// Advance moves m forward by d one deadline at a time, draining the queue
// after every fire so re-armed timers see the state their callback left.
// m must be the engine's clock.
func (e *Engine) Advance(m *clock.Manual, d time.Duration) {
	target := m.Now().Add(d)
	e.Drain()
	for {
		next, ok := m.Next()
		if !ok || next.After(target) {
			break
		}
		m.AdvanceTo(next)
		e.Drain()
	}
	m.AdvanceTo(target)
	e.Drain()
}

// Round returns the current round number. Loop goroutine only.
func (e *Engine) Round() int { return e.round }

// processEvent routes an event to the current session.
// Called only from the goroutine driving the loop.
func (e *Engine) processEvent(ev Event) error {
	changed := true
	switch ev.Type {
	case EventTypeStart:
		e.start(ev.Touch)
	case EventTypeReset:
		e.reset(ev.Touch)
	case EventTypeDigit:
		changed = e.session.SubmitDigit(ev.Challenge, ev.Digit)
	case EventTypeBackspace:
		changed = e.session.SubmitBackspace(ev.Challenge)
	case EventTypeText:
		changed = e.session.SubmitText(ev.Challenge, ev.Text)
	case EventTypeFocus:
		changed = e.session.Focus(ev.Challenge)
	case EventTypeTimer:
		changed = e.fire(ev.timer)
	default:
		return fmt.Errorf("unknown event type: %d", ev.Type)
	}
	if changed {
		e.publish()
	}
	return nil
}

func (e *Engine) start(touch bool) {
	switch e.session.State() {
	case game.StateRunning:
		return
	case game.StateGameOver:
		e.session.Close()
		e.session = e.newSession(touch)
	case game.StateIdle:
		// Rebuild the unstarted round with the detected mode.
		if e.session.Mode() != e.kind.Resolve(touch) {
			e.round--
			e.session = e.newSession(touch)
		}
	}
	e.session.Start()
}

func (e *Engine) reset(touch bool) {
	e.session.Close()
	e.session = e.newSession(touch)
	e.session.Start()
}

// fire runs a timer callback if its round is current and it was not
// stopped after being queued.
func (e *Engine) fire(t *loopTimer) bool {
	if t == nil {
		return false
	}
	if t.round != e.round {
		e.logger.Debug("dropping timer from superseded round", "timer_round", t.round, "round", e.round)
		return false
	}
	if t.stopped.Load() {
		return false
	}
	t.ran.Store(true)
	t.f()
	return true
}

func (e *Engine) newSession(touch bool) *game.Session {
	e.round++
	kind := e.kind.Resolve(touch)
	mode, err := input.New(kind, e.cfg.MaxInputLength)
	if err != nil {
		e.logger.Warn("falling back to direct input", "mode", kind, "error", err)
		mode = input.NewDirect()
	}

	opts := []game.Option{
		game.WithLogger(e.logger),
		game.WithRound(e.round),
		game.WithOperands(e.operands(e.round)),
	}
	for _, o := range e.observers {
		opts = append(opts, game.WithObserver(o))
	}
	return game.New(e.cfg, loopClock{e: e, round: e.round}, mode, opts...)
}

func (e *Engine) publish() {
	snap := e.session.Snapshot()
	e.snapshot.Store(&snap)
	e.version.Add(1)
	e.notify()
}

func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}

	e.mu.Lock()
	close(e.changed)
	e.changed = make(chan struct{})
	e.mu.Unlock()
}

func (e *Engine) shutdown() {
	e.session.Close()
	e.publish()
}

func logEventError(l *slog.Logger, ev Event, err error) {
	l.Error("event processing failed",
		"type", ev.Type.String(),
		"challenge", ev.Challenge,
		"error", err,
	)
}
