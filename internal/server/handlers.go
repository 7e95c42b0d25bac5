package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/engine"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/store"
)

// GameResponse carries a snapshot and its version.
type GameResponse struct {
	Version uint64        `json:"version"`
	Game    game.Snapshot `json:"game"`
}

// CommandResponse acknowledges a queued command. Since is the version to
// pass to /wait to see its effect.
type CommandResponse struct {
	Accepted bool   `json:"accepted"`
	Since    uint64 `json:"since"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version uint64 `json:"version"`
	Round   int    `json:"round"`
	State   string `json:"state"`
	Journal bool   `json:"journal"`
}

// RunResponse is a journaled run with its events.
type RunResponse struct {
	Run    store.Run           `json:"run"`
	Events []store.EventRecord `json:"events"`
}

type startRequest struct {
	Touch bool `json:"touch"`
}

type digitRequest struct {
	Challenge board.ID `json:"challenge"`
	Digit     string   `json:"digit"`
}

type targetRequest struct {
	Challenge board.ID `json:"challenge"`
}

type textRequest struct {
	Challenge board.ID `json:"challenge"`
	Text      string   `json:"text"`
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.game.Snapshot()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Version: s.game.Version(),
		Round:   snap.Round,
		State:   string(snap.State),
		Journal: s.journal != nil,
	})
}

// GET /api/v1/game
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	// Version first: the snapshot is at least this new.
	v := s.game.Version()
	s.writeJSON(w, http.StatusOK, GameResponse{Version: v, Game: s.game.Snapshot()})
}

// GET /api/v1/game/wait?since=N&timeout=25s
func (s *Server) handleWait(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var since uint64
	if raw := q.Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "since must be a non-negative integer")
			return
		}
		since = n
	}

	timeout := DefaultWaitTimeout
	if raw := q.Get("timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "timeout must be a positive duration")
			return
		}
		timeout = min(d, MaxWaitTimeout)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	snap, v, err := s.game.Wait(ctx, since)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, engine.ErrStopped):
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeStopped, "engine stopped")
	case err != nil:
		// Client went away.
		s.logger.Debug("wait abandoned", "error", err)
	default:
		s.writeJSON(w, http.StatusOK, GameResponse{Version: v, Game: snap})
	}
}

// POST /api/v1/game/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}
	s.command(w, r, func() bool { return s.game.StartWith(req.Touch) })
}

// POST /api/v1/game/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}
	s.command(w, r, func() bool { return s.game.ResetWith(req.Touch) })
}

// POST /api/v1/game/digit
func (s *Server) handleDigit(w http.ResponseWriter, r *http.Request) {
	var req digitRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, size := utf8.DecodeRuneInString(req.Digit)
	if size != len(req.Digit) || d < '0' || d > '9' {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "digit must be a single character 0-9")
		return
	}
	s.command(w, r, func() bool { return s.game.SubmitDigit(req.Challenge, d) })
}

// POST /api/v1/game/backspace
func (s *Server) handleBackspace(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.command(w, r, func() bool { return s.game.SubmitBackspace(req.Challenge) })
}

// POST /api/v1/game/text
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	for _, c := range req.Text {
		if c < '0' || c > '9' {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "text must contain only digits")
			return
		}
	}
	s.command(w, r, func() bool { return s.game.SubmitText(req.Challenge, req.Text) })
}

// POST /api/v1/game/focus
func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Challenge == board.NoID {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "challenge is required")
		return
	}
	s.command(w, r, func() bool { return s.game.Focus(req.Challenge) })
}

// GET /api/v1/runs?limit=N
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.journalEnabled(w, r) {
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.journal.ListRuns(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// GET /api/v1/runs/{id}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.journalEnabled(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	run, err := s.journal.GetRun(r.Context(), id)
	if err != nil {
		s.runError(w, r, err)
		return
	}
	events, err := s.journal.RunEvents(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{Run: run, Events: events})
}

// GET /api/v1/runs/{id}/verify
func (s *Server) handleVerifyRun(w http.ResponseWriter, r *http.Request) {
	if !s.journalEnabled(w, r) {
		return
	}
	v, err := s.journal.VerifyRun(r.Context(), chi.URLParam(r, "id"), s.scoring)
	if err != nil {
		s.runError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

// command submits a command and acknowledges it.
func (s *Server) command(w http.ResponseWriter, r *http.Request, submit func() bool) {
	since := s.game.Version()
	if !submit() {
		s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeStopped, "engine stopped")
		return
	}
	s.writeJSON(w, http.StatusAccepted, CommandResponse{Accepted: true, Since: since})
}

// decode reads a required JSON body, rejecting unknown fields.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// decodeOptional is decode for endpoints that accept an empty body.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func (s *Server) journalEnabled(w http.ResponseWriter, r *http.Request) bool {
	if s.journal == nil {
		s.writeError(w, r, http.StatusNotFound, ErrTypeDisabled, "game journal is not enabled")
		return false
	}
	return true
}

func (s *Server) runError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, err.Error())
		return
	}
	s.internalError(w, r, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "internal error")
}
