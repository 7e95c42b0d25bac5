package input

import (
	"fmt"
	"strings"

	"github.com/roach88/mathtables/internal/board"
)

// Kind names an input mode.
type Kind string

const (
	KindDirect Kind = "direct"
	KindKeypad Kind = "keypad"
	// KindAuto defers the choice to Select at session start.
	KindAuto Kind = "auto"
)

// ParseKind parses a mode name as it appears in configuration.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDirect, KindKeypad, KindAuto:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("unknown input mode %q (want direct, keypad or auto)", s)
	}
}

// Select picks a concrete kind from detected input capability: touch-only
// devices get the shared keypad, everything else types directly.
func Select(touch bool) Kind {
	if touch {
		return KindKeypad
	}
	return KindDirect
}

// Resolve turns KindAuto into a concrete kind using touch.
func (k Kind) Resolve(touch bool) Kind {
	if k == KindAuto || k == "" {
		return Select(touch)
	}
	return k
}

// Mode is one input modality. Implementations are not safe for concurrent
// use; the session calls them from its single event goroutine.
//
// Mutating methods return the challenge whose text changed, or nil when the
// call was ignored.
type Mode interface {
	Kind() Kind

	// Digit appends d to the target challenge's text. Keypad ignores target
	// and writes to the focused challenge.
	Digit(b *board.Board, target board.ID, d rune) *board.Challenge

	// Backspace removes the last character of the target's text.
	Backspace(b *board.Board, target board.ID) *board.Challenge

	// Replace sets the target's whole text, as a direct field edit does.
	Replace(b *board.Board, target board.ID, text string) *board.Challenge

	// Focus moves keypad focus to id. Returns false if focus did not change
	// hands or the mode has no focus.
	Focus(b *board.Board, id board.ID) bool

	// Focused returns the focused challenge, or board.NoID.
	Focused() board.ID

	// Spawned is called after c was added to the board.
	Spawned(b *board.Board, c *board.Challenge)

	// Released is called when id stops accepting input, either because it
	// resolved or because it left the board.
	Released(b *board.Board, id board.ID)
}

// New returns a fresh mode of the given concrete kind. maxLen caps keypad
// entry; it is ignored for direct mode.
func New(kind Kind, maxLen int) (Mode, error) {
	switch kind {
	case KindDirect:
		return NewDirect(), nil
	case KindKeypad:
		return NewKeypad(maxLen), nil
	default:
		return nil, fmt.Errorf("input mode %q is not concrete", kind)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func allDigits(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func trimLast(s string) string {
	if s == "" {
		return s
	}
	return s[:len(s)-1]
}

// editable returns the challenge for id if it exists and accepts input.
func editable(b *board.Board, id board.ID) (*board.Challenge, bool) {
	if id == board.NoID {
		return nil, false
	}
	c, ok := b.Get(id)
	if !ok || !c.AcceptsInput() {
		return nil, false
	}
	return c, true
}
