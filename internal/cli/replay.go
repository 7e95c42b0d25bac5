package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mathtables/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID      string        `json:"run_id"`
	Outcome    string        `json:"outcome"`
	Events     int           `json:"events"`
	Stored     store.Summary `json:"stored"`
	Recomputed store.Summary `json:"recomputed"`
	Consistent bool          `json:"consistent"`
	Mismatches []string      `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs          []ReplayRunResult `json:"runs"`
	TotalRuns     int               `json:"total_runs"`
	AllConsistent bool              `json:"all_consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled runs and verify their scores",
		Long: `Replay the events of journaled runs and check them against each other.

Points are recomputed from each answer's elapsed time and combo, running
totals are re-derived, and the stored run summary must match the replay.

Exit codes:
  0 - All runs are consistent
  1 - One or more runs disagree with their replay
  2 - Command error (database not found, unknown run, etc.)

Examples:
  mathtables replay --db ./games.db
  mathtables replay --db ./games.db --run 0192c3a4-...
  mathtables replay --db ./games.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	table := cfg.GameConfig().Scoring

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ids, err := runIDs(ctx, st, opts.RunID)
	if err != nil {
		return err
	}

	result := ReplayResult{
		Runs:          make([]ReplayRunResult, 0, len(ids)),
		TotalRuns:     len(ids),
		AllConsistent: true,
	}
	for _, id := range ids {
		v, err := st.VerifyRun(ctx, id, table)
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", id), err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}

		rr := ReplayRunResult{
			RunID:      id,
			Outcome:    v.Run.Outcome,
			Events:     v.Events,
			Stored:     v.Run.Summary,
			Recomputed: v.Recomputed,
			Consistent: v.OK(),
			Mismatches: v.Mismatches,
		}
		result.Runs = append(result.Runs, rr)
		if !rr.Consistent {
			result.AllConsistent = false
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.JSON() {
		if err := formatter.Result(result, !result.AllConsistent, ErrCodeReplay, "replay verification failed"); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result, opts.Verbose)
	}

	if !result.AllConsistent {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

// runIDs returns the requested run, or every run oldest first.
func runIDs(ctx context.Context, st *store.Store, only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	runs, err := st.ListRuns(ctx, 0)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[len(runs)-1-i] = r.ID
	}
	return ids, nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Consistent {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s (%s)\n", status, run.RunID, run.Outcome)
		fmt.Fprintf(w, "  Events: %d, score %d, solved %d of %d\n",
			run.Events, run.Recomputed.Score, run.Recomputed.Solved, run.Recomputed.Spawned)
		if verbose {
			fmt.Fprintf(w, "  Best combo: %d\n", run.Recomputed.BestCombo)
			fmt.Fprintf(w, "  Rejected: %d\n", run.Recomputed.Rejected)
		}
		for _, m := range run.Mismatches {
			fmt.Fprintf(w, "  Mismatch: %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if result.AllConsistent {
		fmt.Fprintln(w, "✓ All runs verified")
		return
	}
	fmt.Fprintln(w, "✗ Replay verification failed")
}
