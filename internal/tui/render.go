package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/input"
)

// Line is one styled row of the frame.
type Line struct {
	Text  string
	Style tcell.Style
}

var (
	styleHeader    = tcell.StyleDefault.Bold(true)
	styleEntering  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleActive    = tcell.StyleDefault
	styleResolving = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRejected  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHint      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGameOver  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Frame lays out snap as text rows. selected marks the row that takes
// typed digits.
func Frame(snap game.Snapshot, selected board.ID) []Line {
	lines := []Line{
		{Text: header(snap), Style: styleHeader},
		{},
	}

	for _, c := range snap.Challenges {
		lines = append(lines, challengeLine(c, c.ID == selected))
	}
	for i := len(snap.Challenges); i < snap.Capacity; i++ {
		lines = append(lines, Line{Text: "  .", Style: styleHint})
	}

	lines = append(lines, Line{})
	switch snap.State {
	case game.StateIdle:
		lines = append(lines, Line{Text: "Press Enter to start", Style: styleHeader})
	case game.StateGameOver:
		lines = append(lines, Line{
			Text:  fmt.Sprintf("GAME OVER  score %d  best combo %d", snap.Score, snap.BestCombo),
			Style: styleGameOver,
		})
	}
	lines = append(lines, Line{Text: hint(snap), Style: styleHint})
	return lines
}

func header(snap game.Snapshot) string {
	next := fmt.Sprintf("next in %ds", snap.NextSpawnIn)
	if snap.State != game.StateRunning {
		next = "stopped"
	}
	return fmt.Sprintf("Round %d  Score %d  Combo %d (x%s)  %s  [%s]",
		snap.Round, snap.Score, snap.Combo, snap.Multiplier, next, snap.Mode)
}

func challengeLine(c game.ChallengeView, selected bool) Line {
	marker := "  "
	if selected {
		marker = "> "
	}
	text := fmt.Sprintf("%s%d x %d = %s", marker, c.A, c.B, c.Text)
	if selected && c.Phase != board.PhaseResolving.String() {
		text += "_"
	}

	style := styleActive
	switch c.Phase {
	case board.PhaseEntering.String():
		style = styleEntering
	case board.PhaseResolving.String():
		style = styleResolving
	case board.PhaseRejected.String():
		style = styleRejected
	}
	if selected {
		style = style.Reverse(true)
	}
	return Line{Text: text, Style: style}
}

func hint(snap game.Snapshot) string {
	if snap.Mode == input.KindKeypad {
		return "digits: answer  backspace: erase  tab: next problem  n: new game  q: quit"
	}
	return "digits: answer  backspace: erase  tab: next row  n: new game  q: quit"
}

// draw paints lines onto s, clipped to its size.
func draw(s tcell.Screen, lines []Line) {
	s.Clear()
	w, h := s.Size()
	for y, l := range lines {
		if y >= h {
			break
		}
		x := 0
		for _, r := range l.Text {
			if x >= w {
				break
			}
			s.SetContent(x, y, r, nil, l.Style)
			x++
		}
	}
	s.Show()
}
