package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/tui"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database string
	LogFile  string
	Mode     string
	Mute     bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play the game in the terminal.

Problems appear on the board every spawn period. Type the answer to the
highlighted row; tab moves to another row. Enter starts a game, n starts
a new one, q or Esc quits.

Examples:
  mathtables play
  mathtables play --mode keypad --mute
  mathtables play --db ./games.db --log ./play.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record games in this SQLite journal")
	cmd.Flags().StringVar(&opts.LogFile, "log", "", "write logs to this file (logs are discarded otherwise)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "input mode (direct|keypad|auto)")
	cmd.Flags().BoolVar(&opts.Mute, "mute", false, "disable sound")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := applyModeFlag(&cfg.Input.Mode, opts.Mode); err != nil {
		return err
	}
	if opts.Database != "" {
		cfg.Journal.DB = opts.Database
	}

	// The screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(opts.RootOptions, logOut)

	st, journal, err := openJournal(cfg.Journal.DB, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	var observers []game.Observer
	if journal != nil {
		observers = append(observers, journal)
	}
	if cfg.Sound && !opts.Mute {
		sp := tui.NewSpeaker(logger)
		defer sp.Close()
		observers = append(observers, tui.SoundObserver(sp))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	if err := screen.Init(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialise terminal", err)
	}
	defer screen.Fini()

	eng := newEngine(cfg, logger, observers...)
	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(ctx)
	}()

	err = tui.New(screen, eng, tui.WithLogger(logger)).Run(ctx)
	cancel()
	<-done

	final := eng.Snapshot()
	logger.Info("play finished", "round", final.Round, "score", final.Score, "best_combo", final.BestCombo)
	return err
}

// logTo is the logger for commands that keep stderr for diagnostics.
func logTo(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	return newLogger(opts, cmd.ErrOrStderr())
}
