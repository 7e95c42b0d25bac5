package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mathtables/internal/config"
	"github.com/roach88/mathtables/internal/engine"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/input"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// ConfigFile is an optional CUE configuration file.
	ConfigFile string
	// EnvFile is a .env file read under the real environment.
	EnvFile string

	// LookupEnv overrides os.LookupEnv (for testing).
	LookupEnv func(string) (string, bool)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mathtables CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mathtables",
		Short: "mathtables - timed multiplication practice",
		Long: `A multiplication game: problems fall onto a board on a fixed cadence and
the player answers them before the board fills up.

Play in the terminal, serve the game over HTTP, or run deterministic
scenario files against the engine.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "CUE configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with MATHTABLES_* settings")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig reads the effective configuration for opts.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(config.Options{
		File:      opts.ConfigFile,
		EnvFile:   opts.EnvFile,
		LookupEnv: opts.LookupEnv,
	})
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}

// newLogger builds the text logger commands write diagnostics with.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newEngine builds an engine from cfg.
func newEngine(cfg config.Config, logger *slog.Logger, observers ...game.Observer) *engine.Engine {
	opts := []engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithMode(cfg.Input.Mode),
		engine.WithSeed(cfg.Seed),
	}
	for _, o := range observers {
		opts = append(opts, engine.WithObserver(o))
	}
	return engine.New(cfg.GameConfig(), opts...)
}

// applyModeFlag overrides the configured input mode when flag is set.
func applyModeFlag(dst *input.Kind, flag string) error {
	if flag == "" {
		return nil
	}
	k, err := input.ParseKind(flag)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --mode", err)
	}
	*dst = k
	return nil
}
