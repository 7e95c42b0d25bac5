package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/clock"
	"github.com/roach88/mathtables/internal/engine"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/testutil"
)

// Harness drives one engine through a scenario.
type Harness struct {
	engine *engine.Engine
	clock  *clock.Manual
	logger *slog.Logger
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	cfg    game.Config
	logger *slog.Logger
	extra  []game.Observer
}

// WithConfig overrides the game settings (default: game.DefaultConfig()).
func WithConfig(cfg game.Config) Option {
	return func(o *runOptions) { o.cfg = cfg }
}

// WithLogger routes engine and harness logs to l (default: discarded).
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) { o.logger = l }
}

// WithObserver also feeds every event to obs, e.g. a journal.
func WithObserver(obs game.Observer) Option {
	return func(o *runOptions) { o.extra = append(o.extra, obs) }
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Build an engine on a manual clock parked at testutil.Epoch with the
//     scenario's mode and scripted operands
//  2. Apply each step, draining the event queue after it
//  3. Check each step's expect clause against the snapshot
//  4. Evaluate assertions against the trace and final snapshot
//
// A failing expectation or assertion marks the result failed; an error is
// returned only if the scenario cannot be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{
		cfg:    game.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	pairs := scenario.Pairs()
	rec := &game.Recorder{}
	clk := testutil.NewClock()

	engineOpts := []engine.EngineOption{
		engine.WithClock(clk),
		engine.WithMode(scenario.InputKind()),
		engine.WithLogger(o.logger),
		engine.WithObserver(rec),
		engine.WithOperands(func(int) board.OperandSource {
			return testutil.NewOperands(pairs...)
		}),
	}
	for _, obs := range o.extra {
		engineOpts = append(engineOpts, engine.WithObserver(obs))
	}

	h := &Harness{
		engine: engine.New(o.cfg, engineOpts...),
		clock:  clk,
		logger: o.logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.apply(step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Expect != nil {
			for _, msg := range checkExpect(h.engine.Snapshot(), step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Action, msg))
			}
		}
		h.logger.Debug("step applied", "step", i, "action", step.Action)
	}

	result.Trace = rec.Events
	result.Final = h.engine.Snapshot()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// apply runs one step to completion.
func (h *Harness) apply(step Step) error {
	id := board.ID(step.Challenge)
	switch step.Action {
	case ActionStart:
		h.engine.Start()
	case ActionReset:
		h.engine.Reset()
	case ActionDigit:
		h.engine.SubmitDigit(id, []rune(step.Value)[0])
	case ActionBackspace:
		h.engine.SubmitBackspace(id)
	case ActionText:
		h.engine.SubmitText(id, step.Value)
	case ActionFocus:
		h.engine.Focus(id)
	case ActionAdvance:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return err
		}
		h.engine.Advance(h.clock, d)
		return nil
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	h.engine.Drain()
	return nil
}

// checkExpect returns one message per mismatch.
func checkExpect(snap game.Snapshot, exp *Expect) []string {
	var errs []string
	mismatch := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("%s = %v, want %v", field, got, want))
	}

	if exp.Score != nil && *exp.Score != snap.Score {
		mismatch("score", *exp.Score, snap.Score)
	}
	if exp.Combo != nil && *exp.Combo != snap.Combo {
		mismatch("combo", *exp.Combo, snap.Combo)
	}
	if exp.State != "" && game.State(exp.State) != snap.State {
		mismatch("state", exp.State, snap.State)
	}
	if exp.Round != nil && *exp.Round != snap.Round {
		mismatch("round", *exp.Round, snap.Round)
	}
	if exp.Challenges != nil && *exp.Challenges != len(snap.Challenges) {
		mismatch("challenges", *exp.Challenges, len(snap.Challenges))
	}
	if exp.Focused != nil && board.ID(*exp.Focused) != snap.Focused {
		mismatch("focused", *exp.Focused, snap.Focused)
	}
	if exp.NextSpawnIn != nil && *exp.NextSpawnIn != snap.NextSpawnIn {
		mismatch("next_spawn_in", *exp.NextSpawnIn, snap.NextSpawnIn)
	}
	for _, id := range sortedIDs(exp.Phases) {
		c, ok := snap.Challenge(board.ID(id))
		if !ok {
			errs = append(errs, fmt.Sprintf("challenge %d not on board", id))
			continue
		}
		if want := exp.Phases[id]; c.Phase != want {
			mismatch(fmt.Sprintf("challenge %d phase", id), want, c.Phase)
		}
	}
	for _, id := range sortedIDs(exp.Texts) {
		c, ok := snap.Challenge(board.ID(id))
		if !ok {
			errs = append(errs, fmt.Sprintf("challenge %d not on board", id))
			continue
		}
		if want := exp.Texts[id]; c.Text != want {
			mismatch(fmt.Sprintf("challenge %d text", id), fmt.Sprintf("%q", want), fmt.Sprintf("%q", c.Text))
		}
	}
	return errs
}
