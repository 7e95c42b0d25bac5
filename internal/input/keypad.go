package input

import "github.com/roach88/mathtables/internal/board"

// DefaultMaxLength caps keypad entry.
const DefaultMaxLength = 4

// Keypad is the shared on-screen keypad bound to one focused challenge.
type Keypad struct {
	maxLen  int
	focused board.ID
}

// NewKeypad returns a keypad mode. A non-positive maxLen uses
// DefaultMaxLength.
func NewKeypad(maxLen int) *Keypad {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &Keypad{maxLen: maxLen}
}

func (*Keypad) Kind() Kind { return KindKeypad }

// MaxLength returns the entry cap.
func (k *Keypad) MaxLength() int { return k.maxLen }

// Digit ignores target: the keypad only ever writes to the focused challenge.
func (k *Keypad) Digit(b *board.Board, _ board.ID, d rune) *board.Challenge {
	if !isDigit(d) {
		return nil
	}
	c, ok := editable(b, k.focused)
	if !ok || len(c.Text) >= k.maxLen {
		return nil
	}
	c.Text += string(d)
	return c
}

func (k *Keypad) Backspace(b *board.Board, _ board.ID) *board.Challenge {
	c, ok := editable(b, k.focused)
	if !ok || c.Text == "" {
		return nil
	}
	c.Text = trimLast(c.Text)
	return c
}

// Replace is not a keypad gesture.
func (*Keypad) Replace(*board.Board, board.ID, string) *board.Challenge { return nil }

func (k *Keypad) Focus(b *board.Board, id board.ID) bool {
	if id == k.focused {
		return false
	}
	if _, ok := editable(b, id); !ok {
		return false
	}
	k.focused = id
	return true
}

func (k *Keypad) Focused() board.ID { return k.focused }

// Spawned gives focus to c when nothing holds it.
func (k *Keypad) Spawned(_ *board.Board, c *board.Challenge) {
	if k.focused == board.NoID && c.AcceptsInput() {
		k.focused = c.ID
	}
}

// Released hands focus to the newest remaining challenge that still takes
// input, or clears it.
func (k *Keypad) Released(b *board.Board, id board.ID) {
	if k.focused != id && k.focused != board.NoID {
		return
	}
	next, ok := b.Latest(func(c *board.Challenge) bool {
		return c.ID != id && c.AcceptsInput()
	})
	if !ok {
		k.focused = board.NoID
		return
	}
	k.focused = next.ID
}
