package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string
	Mode     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP",
		Long: `Run one game engine behind an HTTP API for a browser front end.

Commands are POSTed to /api/v1/game/*; clients follow state with
GET /api/v1/game/wait?since=<version>. With --db, finished rounds are
browsable under /api/v1/runs.

Example:
  mathtables serve --addr :8080 --db ./games.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record games in this SQLite journal")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "input mode (direct|keypad|auto)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := applyModeFlag(&cfg.Input.Mode, opts.Mode); err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Database != "" {
		cfg.Journal.DB = opts.Database
	}

	logger := logTo(opts.RootOptions, cmd)

	st, journal, err := openJournal(cfg.Journal.DB, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	var observers []game.Observer
	if journal != nil {
		observers = append(observers, journal)
	}
	eng := newEngine(cfg, logger, observers...)

	srvOpts := []server.Option{
		server.WithLogger(logger),
		server.WithScoring(cfg.GameConfig().Scoring),
	}
	if st != nil {
		srvOpts = append(srvOpts, server.WithJournal(st))
	}
	srv := server.New(eng, srvOpts...)

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Run(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", cfg.Server.Addr)
	err = srv.ListenAndServe(ctx, cfg.Server.Addr)
	cancel()
	<-done

	if err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
