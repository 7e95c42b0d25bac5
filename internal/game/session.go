package game

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/clock"
	"github.com/roach88/mathtables/internal/input"
	"github.com/roach88/mathtables/internal/scoring"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateGameOver State = "game_over"
)

// Session is one game, from Start to game over or Close.
type Session struct {
	cfg       Config
	clock     clock.Clock
	mode      input.Mode
	logger    *slog.Logger
	observers []Observer
	operands  board.OperandSource
	round     int
	seq       *clock.Seq

	state     State
	closed    bool
	board     *board.Board
	startedAt time.Time

	score     int
	combo     int
	bestCombo int
	countdown int

	spawnTimer     clock.Timer
	countdownTimer clock.Timer
	settle         map[board.ID]clock.Timer
	remove         map[board.ID]clock.Timer
	reject         map[board.ID]clock.Timer
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver adds an event observer. Observers are called in the order
// they were added.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithOperands sets the operand source. Default: random operands.
func WithOperands(src board.OperandSource) Option {
	return func(s *Session) {
		s.operands = src
	}
}

// WithRound numbers the session; events and snapshots carry it.
func WithRound(round int) Option {
	return func(s *Session) {
		s.round = round
	}
}

// New creates an idle session. cfg is assumed valid (see Config.Validate).
func New(cfg Config, clk clock.Clock, mode input.Mode, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg,
		clock:  clk,
		mode:   mode,
		logger: slog.Default(),
		round:  1,
		seq:    clock.NewSeq(),
		state:  StateIdle,
		settle: make(map[board.ID]clock.Timer),
		remove: make(map[board.ID]clock.Timer),
		reject: make(map[board.ID]clock.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.board = board.New(cfg.Capacity, s.operands)
	s.countdown = cfg.CountdownStart()
	s.logger = s.logger.With("round", s.round)
	return s
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Round returns the session number.
func (s *Session) Round() int { return s.round }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Combo returns the current combo streak.
func (s *Session) Combo() int { return s.combo }

// Mode returns the session's input mode kind.
func (s *Session) Mode() input.Kind { return s.mode.Kind() }

// Start moves an idle session to Running: the first challenge spawns at
// once and both scheduler timers start. Returns false if the session is not
// idle.
func (s *Session) Start() bool {
	if s.state != StateIdle || s.closed {
		return false
	}
	s.state = StateRunning
	s.startedAt = s.clock.Now()
	s.logger.Info("game started", "mode", s.mode.Kind())
	s.emit(Event{Kind: EventStarted})

	s.spawn()
	if s.state != StateRunning {
		return true
	}
	s.armSpawn()
	return true
}

// Close cancels every pending timer. A running session is abandoned.
// Close is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.stopAll()
	if s.state == StateRunning {
		s.logger.Debug("game abandoned", "score", s.score)
		s.emit(Event{Kind: EventAbandoned, Score: s.score, Combo: s.combo})
	}
}

// SubmitDigit appends d to the target challenge (direct mode) or the
// focused challenge (keypad mode) and resolves the result. Returns false if
// nothing changed.
func (s *Session) SubmitDigit(target board.ID, d rune) bool {
	if !s.live() {
		return false
	}
	return s.edited(s.mode.Digit(s.board, target, d))
}

// SubmitBackspace removes the last character of the target (direct) or the
// focused challenge (keypad).
func (s *Session) SubmitBackspace(target board.ID) bool {
	if !s.live() {
		return false
	}
	return s.edited(s.mode.Backspace(s.board, target))
}

// SubmitText replaces the target's text, as a direct-mode field edit.
func (s *Session) SubmitText(target board.ID, text string) bool {
	if !s.live() {
		return false
	}
	return s.edited(s.mode.Replace(s.board, target, text))
}

// Focus moves keypad focus to id.
func (s *Session) Focus(id board.ID) bool {
	if !s.live() {
		return false
	}
	return s.mode.Focus(s.board, id)
}

func (s *Session) live() bool {
	return s.state == StateRunning && !s.closed
}

func (s *Session) edited(c *board.Challenge) bool {
	if c == nil {
		return false
	}
	s.emit(Event{Kind: EventInput, Challenge: c.ID, Text: c.Text})
	s.resolve(c)
	return true
}

// resolve judges c's text right after it changed.
func (s *Session) resolve(c *board.Challenge) {
	if c.Text == "" {
		return
	}
	if n, err := strconv.Atoi(c.Text); err == nil && n == c.Expected {
		s.correct(c)
		return
	}
	if len(c.Text) >= c.Digits() {
		s.incorrect(c)
	}
}

func (s *Session) correct(c *board.Challenge) {
	elapsed := s.clock.Now().Sub(c.SpawnedAt)
	points := scoring.Award(s.cfg.Scoring.Points(elapsed), s.combo)

	s.score += points
	s.combo++
	s.bestCombo = max(s.bestCombo, s.combo)

	c.Phase = board.PhaseResolving
	stop(s.settle, c.ID)
	stop(s.reject, c.ID)
	s.mode.Released(s.board, c.ID)

	s.logger.Debug("challenge solved",
		"challenge", c.ID, "elapsed", elapsed, "points", points, "score", s.score, "combo", s.combo)
	s.emit(Event{
		Kind:      EventCorrect,
		Challenge: c.ID,
		Text:      c.Text,
		Elapsed:   elapsed,
		Points:    points,
		Score:     s.score,
		Combo:     s.combo,
	})

	id := c.ID
	s.remove[id] = s.clock.AfterFunc(s.cfg.RemoveDelay, func() { s.onRemove(id) })
}

func (s *Session) incorrect(c *board.Challenge) {
	s.combo = 0
	c.Phase = board.PhaseRejected
	stop(s.reject, c.ID)

	s.logger.Debug("answer rejected", "challenge", c.ID, "text", c.Text)
	s.emit(Event{Kind: EventIncorrect, Challenge: c.ID, Text: c.Text, Score: s.score})

	id := c.ID
	s.reject[id] = s.clock.AfterFunc(s.cfg.RejectDelay, func() { s.onRevert(id) })
}

// spawn adds a challenge, or ends the game when the board is full.
func (s *Session) spawn() {
	c, err := s.board.Spawn(s.clock.Now())
	if errors.Is(err, board.ErrFull) {
		s.end()
		return
	}
	s.countdown = s.cfg.CountdownStart()
	s.armCountdown()
	s.mode.Spawned(s.board, c)

	id := c.ID
	s.settle[id] = s.clock.AfterFunc(s.cfg.SettleDelay, func() { s.onSettle(id) })

	s.logger.Debug("challenge spawned", "challenge", id, "a", c.A, "b", c.B, "live", s.board.Len())
	s.emit(Event{Kind: EventSpawned, Challenge: id, A: c.A, B: c.B})
}

func (s *Session) end() {
	s.state = StateGameOver
	s.stopAll()
	s.logger.Info("game over", "score", s.score, "best_combo", s.bestCombo)
	s.emit(Event{Kind: EventGameOver, Score: s.score, Combo: s.combo})
}

// armSpawn schedules the next regular spawn. The timer re-arms itself before
// spawning so a game over can cancel it.
func (s *Session) armSpawn() {
	s.spawnTimer = s.clock.AfterFunc(s.cfg.SpawnPeriod, func() {
		if !s.live() {
			return
		}
		s.armSpawn()
		s.spawn()
	})
}

// armCountdown (re)starts the visible countdown tick from now. Every spawn
// calls it, so the countdown is phased to the most recent spawn.
func (s *Session) armCountdown() {
	if s.countdownTimer != nil {
		s.countdownTimer.Stop()
	}
	s.countdownTimer = s.clock.AfterFunc(s.cfg.CountdownPeriod, func() {
		if !s.live() {
			return
		}
		s.armCountdown()
		if s.countdown <= 1 {
			s.countdown = s.cfg.CountdownStart()
		} else {
			s.countdown--
		}
	})
}

func (s *Session) onSettle(id board.ID) {
	if !s.live() {
		return
	}
	delete(s.settle, id)
	c, ok := s.board.Get(id)
	if !ok || c.Phase != board.PhaseEntering {
		return
	}
	c.Phase = board.PhaseActive
	s.emit(Event{Kind: EventSettled, Challenge: id})
}

func (s *Session) onRevert(id board.ID) {
	if !s.live() {
		return
	}
	delete(s.reject, id)
	c, ok := s.board.Get(id)
	if !ok || c.Phase != board.PhaseRejected {
		return
	}
	c.Phase = board.PhaseActive
	s.emit(Event{Kind: EventReverted, Challenge: id, Text: c.Text})
}

func (s *Session) onRemove(id board.ID) {
	if !s.live() {
		return
	}
	delete(s.remove, id)
	c, ok := s.board.Get(id)
	if !ok {
		return
	}
	s.board.Remove(id)
	s.mode.Released(s.board, id)
	s.emit(Event{Kind: EventRemoved, Challenge: id, A: c.A, B: c.B})

	if s.board.Empty() {
		s.logger.Debug("board empty, spawning early")
		s.spawn()
	}
}

func (s *Session) stopAll() {
	if s.spawnTimer != nil {
		s.spawnTimer.Stop()
		s.spawnTimer = nil
	}
	if s.countdownTimer != nil {
		s.countdownTimer.Stop()
		s.countdownTimer = nil
	}
	for _, m := range []map[board.ID]clock.Timer{s.settle, s.remove, s.reject} {
		for id, t := range m {
			t.Stop()
			delete(m, id)
		}
	}
}

func stop(timers map[board.ID]clock.Timer, id board.ID) {
	if t, ok := timers[id]; ok {
		t.Stop()
		delete(timers, id)
	}
}

func (s *Session) emit(ev Event) {
	ev.Seq = s.seq.Next()
	ev.Round = s.round
	ev.Mode = s.mode.Kind()
	if !s.startedAt.IsZero() {
		ev.Offset = s.clock.Now().Sub(s.startedAt)
	}
	if ev.Challenge != board.NoID && ev.A == 0 {
		if c, ok := s.board.Get(ev.Challenge); ok {
			ev.A, ev.B = c.A, c.B
		}
	}
	for _, o := range s.observers {
		o.Observe(ev)
	}
}
