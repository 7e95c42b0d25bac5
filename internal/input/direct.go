package input

import "github.com/roach88/mathtables/internal/board"

// Direct gives every challenge its own field. Entry length is not capped;
// an over-long answer is rejected as soon as it reaches the answer's length.
type Direct struct{}

// NewDirect returns the direct-entry mode.
func NewDirect() *Direct { return &Direct{} }

func (*Direct) Kind() Kind { return KindDirect }

func (*Direct) Digit(b *board.Board, target board.ID, d rune) *board.Challenge {
	if !isDigit(d) {
		return nil
	}
	c, ok := editable(b, target)
	if !ok {
		return nil
	}
	c.Text += string(d)
	return c
}

func (*Direct) Backspace(b *board.Board, target board.ID) *board.Challenge {
	c, ok := editable(b, target)
	if !ok || c.Text == "" {
		return nil
	}
	c.Text = trimLast(c.Text)
	return c
}

// Replace accepts the new field value only if it is empty or all digits,
// mirroring a numeric field that refuses other keystrokes.
func (*Direct) Replace(b *board.Board, target board.ID, text string) *board.Challenge {
	if !allDigits(text) {
		return nil
	}
	c, ok := editable(b, target)
	if !ok || c.Text == text {
		return nil
	}
	c.Text = text
	return c
}

func (*Direct) Focus(*board.Board, board.ID) bool { return false }

func (*Direct) Focused() board.ID { return board.NoID }

func (*Direct) Spawned(*board.Board, *board.Challenge) {}

func (*Direct) Released(*board.Board, board.ID) {}
