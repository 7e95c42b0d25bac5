package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mathtables/internal/scoring"
	"github.com/roach88/mathtables/internal/testutil"
)

func journaledRun(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	clk := testutil.NewClock()
	j := NewJournal(s, WithIDGenerator(NewFixedGenerator("run-1")), WithNow(clk.Now))
	playRejectThenSolve(t, j, clk, 1)
	return s
}

func TestVerifyRun_CleanRunPasses(t *testing.T) {
	s := journaledRun(t)

	v, err := s.VerifyRun(context.Background(), "run-1", scoring.Default)
	require.NoError(t, err)
	assert.True(t, v.OK(), "mismatches: %v", v.Mismatches)
	assert.Equal(t, 11, v.Events)
	assert.Equal(t, v.Run.Summary, v.Recomputed)
}

func TestVerifyRun_DetectsTamperedPoints(t *testing.T) {
	s := journaledRun(t)
	_, err := s.DB().Exec(`UPDATE events SET points = 90 WHERE run_id = 'run-1' AND kind = 'correct'`)
	require.NoError(t, err)

	v, err := s.VerifyRun(context.Background(), "run-1", scoring.Default)
	require.NoError(t, err)
	assert.False(t, v.OK())
	assert.Contains(t, v.Mismatches, "seq 8: points = 90, want 100")
	assert.Contains(t, v.Mismatches, "seq 8: score = 100, want 90")
}

func TestVerifyRun_DetectsStoredTotals(t *testing.T) {
	s := journaledRun(t)
	_, err := s.DB().Exec(`UPDATE runs SET score = 5000 WHERE id = 'run-1'`)
	require.NoError(t, err)

	v, err := s.VerifyRun(context.Background(), "run-1", scoring.Default)
	require.NoError(t, err)
	require.Len(t, v.Mismatches, 1)
	assert.Contains(t, v.Mismatches[0], "stored totals")
}

func TestVerifyRun_DetectsSeqGap(t *testing.T) {
	s := journaledRun(t)
	_, err := s.DB().Exec(`DELETE FROM events WHERE run_id = 'run-1' AND seq = 3`)
	require.NoError(t, err)

	v, err := s.VerifyRun(context.Background(), "run-1", scoring.Default)
	require.NoError(t, err)
	assert.Contains(t, v.Mismatches, "event 2: seq = 4, want 3")
}

func TestVerifyRun_OtherTableChangesPoints(t *testing.T) {
	s := journaledRun(t)

	flat := scoring.Table{Fallback: 10}
	v, err := s.VerifyRun(context.Background(), "run-1", flat)
	require.NoError(t, err)
	assert.Contains(t, v.Mismatches, "seq 8: points = 100, want 10")
}

func TestVerifyRun_RunningRunSkipsTotals(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateRun(ctx, createTestRun("run-1", 1)))
	require.NoError(t, s.AppendEvent(ctx, "run-1", createTestEvent(1, "started")))

	v, err := s.VerifyRun(ctx, "run-1", scoring.Default)
	require.NoError(t, err)
	assert.True(t, v.OK(), "mismatches: %v", v.Mismatches)
}

func TestVerifyRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.VerifyRun(context.Background(), "missing", scoring.Default)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
