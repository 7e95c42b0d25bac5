package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/scoring"
	"github.com/roach88/mathtables/internal/store"
)

// Game is the engine surface the server drives.
type Game interface {
	Snapshot() game.Snapshot
	Version() uint64
	Wait(ctx context.Context, since uint64) (game.Snapshot, uint64, error)

	StartWith(touch bool) bool
	ResetWith(touch bool) bool
	SubmitDigit(target board.ID, d rune) bool
	SubmitBackspace(target board.ID) bool
	SubmitText(target board.ID, text string) bool
	Focus(id board.ID) bool
}

const (
	// DefaultWaitTimeout bounds a long-poll when the client sets none.
	DefaultWaitTimeout = 25 * time.Second
	// MaxWaitTimeout stays below the request timeout middleware.
	MaxWaitTimeout = 55 * time.Second

	requestTimeout = 60 * time.Second
)

// Server handles HTTP requests for one engine.
type Server struct {
	game      Game
	journal   *store.Store
	scoring   scoring.Table
	logger    *slog.Logger
	startTime time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJournal enables the /api/v1/runs endpoints.
func WithJournal(st *store.Store) Option {
	return func(s *Server) { s.journal = st }
}

// WithScoring sets the table used to verify journaled runs.
// Default: scoring.Default.
func WithScoring(t scoring.Table) Option {
	return func(s *Server) { s.scoring = t }
}

// New creates a server for g.
func New(g Game, opts ...Option) *Server {
	s := &Server{
		game:      g,
		scoring:   scoring.Default,
		logger:    slog.Default(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/game", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Get("/wait", s.handleWait)
			r.Post("/start", s.handleStart)
			r.Post("/reset", s.handleReset)
			r.Post("/digit", s.handleDigit)
			r.Post("/backspace", s.handleBackspace)
			r.Post("/text", s.handleText)
			r.Post("/focus", s.handleFocus)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
			r.Get("/{id}/verify", s.handleVerifyRun)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully. It returns once the listener is closed.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
