package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run id is not in the journal.
var ErrRunNotFound = errors.New("run not found")

// Run outcomes.
const (
	OutcomeRunning   = "running"
	OutcomeGameOver  = "game_over"
	OutcomeAbandoned = "abandoned"
)

// Summary holds the totals of a run.
type Summary struct {
	Score     int `json:"score"`
	BestCombo int `json:"best_combo"`
	Spawned   int `json:"spawned"`
	Solved    int `json:"solved"`
	Rejected  int `json:"rejected"`
}

// Run is one journaled round.
type Run struct {
	ID        string     `json:"id"`
	Round     int        `json:"round"`
	Mode      string     `json:"mode"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Outcome   string     `json:"outcome"`
	Summary
}

// Duration returns how long the run lasted, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.EndedAt == nil {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// EventRecord is one stored event.
type EventRecord struct {
	RunID     string `json:"run_id"`
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Challenge int64  `json:"challenge,omitempty"`
	Points    int    `json:"points,omitempty"`
	Score     int    `json:"score"`
	Combo     int    `json:"combo"`
	AtMS      int64  `json:"at_ms"`
	Data      string `json:"data"`
}

const runColumns = `id, round, mode, started_at, ended_at, outcome, score, best_combo, spawned, solved, rejected`

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run. Returns ErrRunNotFound if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// RunEvents returns a run's events ordered by seq.
//
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) RunEvents(ctx context.Context, runID string) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, kind, challenge, points, score, combo, at_ms, data
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []EventRecord{}
	for rows.Next() {
		var ev EventRecord
		if err := rows.Scan(
			&ev.RunID, &ev.Seq, &ev.Kind, &ev.Challenge, &ev.Points,
			&ev.Score, &ev.Combo, &ev.AtMS, &ev.Data,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		startedAt int64
		endedAt   sql.NullInt64
	)
	err := row.Scan(
		&run.ID, &run.Round, &run.Mode, &startedAt, &endedAt, &run.Outcome,
		&run.Score, &run.BestCombo, &run.Spawned, &run.Solved, &run.Rejected,
	)
	if err != nil {
		return Run{}, err
	}

	run.StartedAt = time.UnixMilli(startedAt).UTC()
	if endedAt.Valid {
		t := time.UnixMilli(endedAt.Int64).UTC()
		run.EndedAt = &t
	}
	return run, nil
}
