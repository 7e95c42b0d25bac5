package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/mathtables/internal/game"
)

// Journal records session events into the store. It implements
// game.Observer: a run is opened on started and closed on game_over or
// abandoned.
//
// Keystroke (input) events are held in memory and written in one
// transaction with the next event of their run, so typing never waits on
// the disk. Every run ends with game_over or abandoned, which flushes it.
//
// ERROR HANDLING: a failing write is logged and the game continues; the
// journal never blocks play.
type Journal struct {
	store  *Store
	ids    IDGenerator
	now    func() time.Time
	logger *slog.Logger

	mu   sync.Mutex
	open map[int]*openRun // by round
	last string
}

type openRun struct {
	id      string
	sum     Summary
	pending []game.Event // buffered input events
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) JournalOption {
	return func(j *Journal) { j.ids = g }
}

// WithNow sets the wall clock used for started_at and ended_at.
func WithNow(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// WithJournalLogger sets the logger. Default: slog.Default().
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// NewJournal creates a journal writing to s.
func NewJournal(s *Store, opts ...JournalOption) *Journal {
	j := &Journal{
		store:  s,
		ids:    UUIDv7Generator{},
		now:    time.Now,
		logger: slog.Default(),
		open:   make(map[int]*openRun),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ game.Observer = (*Journal)(nil)

// Observe writes ev to the run of its round.
func (j *Journal) Observe(ev game.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ctx := context.Background()

	if ev.Kind == game.EventStarted {
		run := Run{
			ID:        j.ids.Generate(),
			Round:     ev.Round,
			Mode:      string(ev.Mode),
			StartedAt: j.now(),
		}
		if err := j.store.CreateRun(ctx, run); err != nil {
			j.logger.Error("journal: open run failed", "round", ev.Round, "error", err)
			return
		}
		j.open[ev.Round] = &openRun{id: run.ID}
		j.last = run.ID
		j.logger.Debug("journal: run opened", "run", run.ID, "round", ev.Round)
	}

	r, ok := j.open[ev.Round]
	if !ok {
		j.logger.Debug("journal: event outside an open run", "round", ev.Round, "kind", ev.Kind)
		return
	}

	if ev.Kind == game.EventInput {
		r.pending = append(r.pending, ev)
		return
	}
	batch := append(r.pending, ev)
	r.pending = nil
	if err := j.store.AppendEvents(ctx, r.id, batch); err != nil {
		j.logger.Error("journal: append failed", "run", r.id, "seq", ev.Seq, "events", len(batch), "error", err)
	}

	switch ev.Kind {
	case game.EventSpawned:
		r.sum.Spawned++
	case game.EventCorrect:
		r.sum.Solved++
		r.sum.Score = ev.Score
		r.sum.BestCombo = max(r.sum.BestCombo, ev.Combo)
	case game.EventIncorrect:
		r.sum.Rejected++
	case game.EventGameOver, game.EventAbandoned:
		r.sum.Score = ev.Score
		delete(j.open, ev.Round)
		if err := j.store.FinishRun(ctx, r.id, string(ev.Kind), j.now(), r.sum); err != nil {
			j.logger.Error("journal: close run failed", "run", r.id, "error", err)
			return
		}
		j.logger.Debug("journal: run closed", "run", r.id, "outcome", ev.Kind, "score", r.sum.Score)
	}
}

// LastRunID returns the id of the most recently opened run, or "".
func (j *Journal) LastRunID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}
