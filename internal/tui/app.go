package tui

import (
	"context"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/input"
)

// Game is the engine surface the terminal drives.
type Game interface {
	Snapshot() game.Snapshot
	Updates() <-chan struct{}

	StartWith(touch bool) bool
	ResetWith(touch bool) bool
	SubmitDigit(target board.ID, d rune) bool
	SubmitBackspace(target board.ID) bool
	Focus(id board.ID) bool
}

// App is a terminal session over one engine.
type App struct {
	screen tcell.Screen
	game   Game
	logger *slog.Logger

	// selected is the row typed digits go to in direct mode.
	selected board.ID
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an App. The screen must already be initialised.
func New(screen tcell.Screen, g Game, opts ...Option) *App {
	a := &App{
		screen: screen,
		game:   g,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run redraws on every update and handles keys until the player quits or
// ctx is cancelled. The caller owns the screen and finalises it.
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	a.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.game.Updates():
			a.render()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.HandleKey(ev) {
					a.logger.Debug("player quit")
					return nil
				}
			case *tcell.EventResize:
				a.screen.Sync()
				a.render()
			}
		}
	}
}

// HandleKey maps one key press to an engine command. Returns false when
// the player asked to quit.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	snap := a.game.Snapshot()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		if snap.State != game.StateRunning {
			a.game.StartWith(false)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.game.SubmitBackspace(a.target(snap))
	case tcell.KeyTab:
		a.cycle(snap)
		a.render()
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r >= '0' && r <= '9':
			a.game.SubmitDigit(a.target(snap), r)
		case r == 'q':
			return false
		case r == 'n':
			a.selected = board.NoID
			a.game.ResetWith(false)
		case r == ' ':
			if snap.State != game.StateRunning {
				a.game.StartWith(false)
			}
		}
	}
	return true
}

// Selected returns the row digits go to in direct mode.
func (a *App) Selected() board.ID {
	return a.selected
}

// target picks the command target for snap. Keypad mode uses the
// engine's focus. Direct mode keeps the selected row while it takes
// input, else falls back to the oldest row that does.
func (a *App) target(snap game.Snapshot) board.ID {
	if snap.Mode == input.KindKeypad {
		return board.NoID
	}
	if c, ok := snap.Challenge(a.selected); ok && acceptsInput(c) {
		return a.selected
	}
	a.selected = board.NoID
	for _, c := range snap.Challenges {
		if acceptsInput(c) {
			a.selected = c.ID
			break
		}
	}
	return a.selected
}

// cycle moves to the next row that takes input, wrapping around.
func (a *App) cycle(snap game.Snapshot) {
	current := a.selected
	if snap.Mode == input.KindKeypad {
		current = snap.Focused
	}

	var candidates []board.ID
	for _, c := range snap.Challenges {
		if acceptsInput(c) {
			candidates = append(candidates, c.ID)
		}
	}
	if len(candidates) == 0 {
		return
	}

	next := candidates[0]
	for i, id := range candidates {
		if id == current {
			next = candidates[(i+1)%len(candidates)]
			break
		}
	}

	if snap.Mode == input.KindKeypad {
		a.game.Focus(next)
		return
	}
	a.selected = next
}

func (a *App) render() {
	snap := a.game.Snapshot()
	selected := snap.Focused
	if snap.Mode != input.KindKeypad {
		selected = a.target(snap)
	}
	draw(a.screen, Frame(snap, selected))
}

func acceptsInput(c game.ChallengeView) bool {
	return c.Phase != board.PhaseResolving.String()
}
