package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/mathtables/internal/game"
)

// CreateRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) CreateRun(ctx context.Context, run Run) error {
	outcome := run.Outcome
	if outcome == "" {
		outcome = OutcomeRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, round, mode, started_at, outcome)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Round,
		run.Mode,
		run.StartedAt.UnixMilli(),
		outcome,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// AppendEvent adds a session event to a run.
// Uses ON CONFLICT(run_id, seq) DO NOTHING, so re-delivering an event is
// harmless. The run must exist (foreign key constraint).
func (s *Store) AppendEvent(ctx context.Context, runID string, ev game.Event) error {
	return s.AppendEvents(ctx, runID, []game.Event{ev})
}

// AppendEvents adds several events of one run in a single transaction.
// Either all of them are stored or none is.
func (s *Store) AppendEvents(ctx context.Context, runID string, evs []game.Event) error {
	if len(evs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append events: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (run_id, seq, kind, challenge, points, score, combo, at_ms, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append events: prepare: %w", err)
	}
	defer stmt.Close()

	for _, ev := range evs {
		data, err := marshalEvent(ev)
		if err != nil {
			return fmt.Errorf("append event seq %d: %w", ev.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID,
			ev.Seq,
			string(ev.Kind),
			int64(ev.Challenge),
			ev.Points,
			ev.Score,
			ev.Combo,
			ev.Offset.Milliseconds(),
			data,
		); err != nil {
			return fmt.Errorf("append event seq %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append events: commit: %w", err)
	}
	return nil
}

// FinishRun closes a run with its outcome and totals.
// Returns ErrRunNotFound if no such run exists.
func (s *Store) FinishRun(ctx context.Context, id, outcome string, endedAt time.Time, sum Summary) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET ended_at = ?, outcome = ?, score = ?, best_combo = ?, spawned = ?, solved = ?, rejected = ?
		WHERE id = ?
	`,
		endedAt.UnixMilli(),
		outcome,
		sum.Score,
		sum.BestCombo,
		sum.Spawned,
		sum.Solved,
		sum.Rejected,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
