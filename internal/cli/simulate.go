package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mathtables/internal/harness"
	"github.com/roach88/mathtables/internal/trace"
)

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	Scenario string           `json:"scenario"`
	Pass     bool             `json:"pass"`
	Errors   []string         `json:"errors,omitempty"`
	Trace    []map[string]any `json:"trace"`
	Final    any              `json:"final"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario-file>",
		Short: "Run one scenario and print its trace",
		Long: `Run a scenario file on a simulated clock and print the event trace.

Text output is the golden-file form: a header line, then one canonical
JSON object per event. Step and assertion failures go to stderr.

Exit codes:
  0 - Scenario passed
  1 - Scenario failed
  2 - Command error (unreadable or invalid scenario)

Example:
  mathtables simulate testdata/scenarios/combo_scoring.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSimulate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Running %s (%s, %d steps)", scenario.Name, scenario.InputKind(), len(scenario.Steps))

	var runOpts []harness.Option
	if opts.Verbose {
		runOpts = append(runOpts, harness.WithLogger(logTo(opts, cmd)))
	}
	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if formatter.JSON() {
		data := SimulateResult{
			Scenario: scenario.Name,
			Pass:     result.Pass,
			Errors:   result.Errors,
			Trace:    make([]map[string]any, 0, len(result.Trace)),
			Final:    result.Final,
		}
		for _, ev := range result.Trace {
			data.Trace = append(data.Trace, trace.Fields(ev))
		}
		msg := fmt.Sprintf("scenario %s failed", scenario.Name)
		if err := formatter.Result(data, !result.Pass, ErrCodeTest, msg); err != nil {
			return err
		}
	} else {
		out, err := harness.GoldenTrace(scenario, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render trace", err)
		}
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
		for _, e := range result.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}
