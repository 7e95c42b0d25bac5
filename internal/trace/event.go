package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/game"
)

// Fields returns the canonical field map of a game event.
//
// Every record carries seq, round, kind and at_ms. The rest depends on the
// kind, so a trace only shows what changed.
func Fields(ev game.Event) map[string]any {
	m := map[string]any{
		"seq":   ev.Seq,
		"round": ev.Round,
		"kind":  string(ev.Kind),
		"at_ms": ev.Offset.Milliseconds(),
	}
	if ev.Challenge != board.NoID {
		m["challenge"] = int64(ev.Challenge)
	}

	switch ev.Kind {
	case game.EventStarted:
		m["mode"] = string(ev.Mode)
	case game.EventSpawned:
		m["a"] = ev.A
		m["b"] = ev.B
	case game.EventInput, game.EventReverted:
		m["text"] = ev.Text
	case game.EventCorrect:
		m["text"] = ev.Text
		m["points"] = ev.Points
		m["elapsed_ms"] = ev.Elapsed.Milliseconds()
		m["score"] = ev.Score
		m["combo"] = ev.Combo
	case game.EventIncorrect:
		m["text"] = ev.Text
		m["score"] = ev.Score
		m["combo"] = ev.Combo
	case game.EventGameOver, game.EventAbandoned:
		m["score"] = ev.Score
		m["combo"] = ev.Combo
	}
	return m
}

// Line returns the canonical JSON for ev, without a newline.
func Line(ev game.Event) ([]byte, error) {
	return Marshal(Fields(ev))
}

// Write emits header (if non-nil) and then one line per event.
func Write(w io.Writer, header map[string]any, events []game.Event) error {
	bw := bufio.NewWriter(w)
	if header != nil {
		b, err := Marshal(header)
		if err != nil {
			return fmt.Errorf("header: %w", err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	for _, ev := range events {
		b, err := Line(ev)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.Seq, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
