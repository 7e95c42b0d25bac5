package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/scoring"
)

// Verification is the result of replaying a stored run.
type Verification struct {
	Run        Run      `json:"run"`
	Events     int      `json:"events"`
	Recomputed Summary  `json:"recomputed"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// OK reports whether the stored run agrees with its replay.
func (v Verification) OK() bool {
	return len(v.Mismatches) == 0
}

// VerifyRun replays a run's events and checks them against each other and
// against the run's stored totals.
//
// The replay checks that:
//   - seq numbers are contiguous from 1
//   - every correct answer's points follow table and the combo before it
//   - score and combo on each event match the running totals
//   - a closed run ends with the event named by its outcome
//   - the stored summary equals the recomputed one
//
// Mismatches are reported in the Verification; an error is returned only if
// the run cannot be read.
func (s *Store) VerifyRun(ctx context.Context, id string, table scoring.Table) (Verification, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Verification{}, fmt.Errorf("verify run: %w", err)
	}
	events, err := s.RunEvents(ctx, id)
	if err != nil {
		return Verification{}, fmt.Errorf("verify run: %w", err)
	}

	v := Verification{Run: run, Events: len(events)}
	fail := func(format string, args ...any) {
		v.Mismatches = append(v.Mismatches, fmt.Sprintf(format, args...))
	}

	var sum Summary
	combo := 0
	for i, ev := range events {
		if want := int64(i + 1); ev.Seq != want {
			fail("event %d: seq = %d, want %d", i, ev.Seq, want)
		}

		switch game.EventKind(ev.Kind) {
		case game.EventSpawned:
			sum.Spawned++

		case game.EventCorrect:
			data, err := unmarshalData(ev.Data)
			if err != nil {
				fail("seq %d: %v", ev.Seq, err)
				continue
			}
			elapsed, err := intField(data, "elapsed_ms")
			if err != nil {
				fail("seq %d: %v", ev.Seq, err)
				continue
			}
			want := scoring.Award(table.Points(time.Duration(elapsed)*time.Millisecond), combo)
			if ev.Points != want {
				fail("seq %d: points = %d, want %d", ev.Seq, ev.Points, want)
			}
			sum.Score += ev.Points
			sum.Solved++
			combo++
			sum.BestCombo = max(sum.BestCombo, combo)

		case game.EventIncorrect:
			sum.Rejected++
			combo = 0
		}

		switch game.EventKind(ev.Kind) {
		case game.EventCorrect, game.EventIncorrect, game.EventGameOver, game.EventAbandoned:
			if ev.Score != sum.Score {
				fail("seq %d: score = %d, want %d", ev.Seq, ev.Score, sum.Score)
			}
			if ev.Combo != combo {
				fail("seq %d: combo = %d, want %d", ev.Seq, ev.Combo, combo)
			}
		}
	}
	v.Recomputed = sum

	if run.Outcome == OutcomeRunning {
		return v, nil
	}

	if len(events) == 0 {
		fail("run is %s but has no events", run.Outcome)
	} else if last := events[len(events)-1].Kind; last != run.Outcome {
		fail("run is %s but its last event is %s", run.Outcome, last)
	}
	if run.Summary != sum {
		fail("stored totals %+v, replay gives %+v", run.Summary, sum)
	}
	return v, nil
}
