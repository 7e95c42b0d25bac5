package board

import (
	"errors"
	"slices"
	"time"
)

// DefaultCapacity is the number of challenges a board holds before the next
// spawn ends the game.
const DefaultCapacity = 6

// ErrFull is returned by Spawn when the board is at capacity.
var ErrFull = errors.New("board: at capacity")

// Board is the capacity-bounded, spawn-ordered set of live challenges.
type Board struct {
	capacity   int
	nextID     ID
	challenges []*Challenge
	operands   OperandSource
}

// New creates an empty board. A non-positive capacity falls back to
// DefaultCapacity; a nil source draws random operands.
func New(capacity int, operands OperandSource) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if operands == nil {
		operands = NewRandomOperands(0)
	}
	return &Board{
		capacity:   capacity,
		challenges: make([]*Challenge, 0, capacity),
		operands:   operands,
	}
}

// Spawn appends a new challenge stamped at now.
// Returns ErrFull, leaving the board untouched, when at capacity.
func (b *Board) Spawn(now time.Time) (*Challenge, error) {
	if b.Full() {
		return nil, ErrFull
	}
	a, c := b.operands.Operands()
	b.nextID++
	ch := newChallenge(b.nextID, a, c, now)
	b.challenges = append(b.challenges, ch)
	return ch, nil
}

// Get returns the challenge with the given id.
func (b *Board) Get(id ID) (*Challenge, bool) {
	for _, c := range b.challenges {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Remove deletes the challenge with the given id, preserving order.
// Returns false if no such challenge is on the board.
func (b *Board) Remove(id ID) bool {
	i := slices.IndexFunc(b.challenges, func(c *Challenge) bool { return c.ID == id })
	if i < 0 {
		return false
	}
	b.challenges = slices.Delete(b.challenges, i, i+1)
	return true
}

// Latest returns the most recently spawned challenge satisfying keep.
// A nil keep matches every challenge.
func (b *Board) Latest(keep func(*Challenge) bool) (*Challenge, bool) {
	for i := len(b.challenges) - 1; i >= 0; i-- {
		c := b.challenges[i]
		if keep == nil || keep(c) {
			return c, true
		}
	}
	return nil, false
}

// Challenges returns the live challenges, oldest first. The slice is a copy;
// the challenges are not.
func (b *Board) Challenges() []*Challenge {
	return slices.Clone(b.challenges)
}

// Len returns the number of live challenges.
func (b *Board) Len() int { return len(b.challenges) }

// Capacity returns the maximum number of live challenges.
func (b *Board) Capacity() int { return b.capacity }

// Full reports whether the next Spawn would fail.
func (b *Board) Full() bool { return len(b.challenges) >= b.capacity }

// Empty reports whether the board has no challenges.
func (b *Board) Empty() bool { return len(b.challenges) == 0 }

// LastID returns the most recently allocated id, or NoID.
func (b *Board) LastID() ID { return b.nextID }
