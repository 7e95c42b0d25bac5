package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/mathtables/internal/game"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// createTestRun creates a run record with minimal required fields.
func createTestRun(id string, round int) Run {
	return Run{
		ID:        id,
		Round:     round,
		Mode:      "direct",
		StartedAt: testStart.Add(time.Duration(round) * time.Minute),
	}
}

// createTestEvent creates a session event with the given kind and seq.
func createTestEvent(seq int64, kind game.EventKind) game.Event {
	return game.Event{
		Seq:    seq,
		Round:  1,
		Kind:   kind,
		Offset: time.Duration(seq) * time.Second,
	}
}
