package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mathtables/internal/harness"
	"github.com/roach88/mathtables/internal/store"
)

const scenariosDir = "../../testdata/scenarios"

var journalTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func noEnv(string) (string, bool) { return "", false }

func testRoot(format string) *RootOptions {
	return &RootOptions{Format: format, LookupEnv: noEnv}
}

// execute runs cmd with args and returns what it wrote.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// seedJournal plays the reset scenario into a fresh journal: run-1 is
// abandoned with 100 points, run-2 is still running.
func seedJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.db")
	st, err := store.Open(path)
	require.NoError(t, err)

	j := store.NewJournal(st,
		store.WithIDGenerator(store.NewFixedGenerator("run-1", "run-2")),
		store.WithNow(func() time.Time { return journalTime }),
	)
	scenario, err := harness.LoadScenario(filepath.Join(scenariosDir, "reset_discards_round.yaml"))
	require.NoError(t, err)
	result, err := harness.Run(scenario, harness.WithObserver(j))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, st.Close())
	return path
}

// syncBuffer is a bytes.Buffer safe for a logger writing from another
// goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
