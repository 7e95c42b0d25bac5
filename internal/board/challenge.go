package board

import (
	"strconv"
	"time"
)

// ID identifies a challenge within one game session.
type ID int64

// NoID means "no challenge" (no target, nothing focused).
const NoID ID = 0

// Phase is a challenge's lifecycle phase.
type Phase int

const (
	// PhaseEntering is a freshly spawned challenge still settling onto the board.
	PhaseEntering Phase = iota
	// PhaseActive is a challenge waiting for its answer.
	PhaseActive
	// PhaseResolving is a correctly answered challenge pending removal.
	PhaseResolving
	// PhaseRejected marks a just-failed full-length answer (transient).
	PhaseRejected
)

// String returns the phase name used in snapshots and traces.
func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseActive:
		return "active"
	case PhaseResolving:
		return "resolving"
	case PhaseRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Challenge is one multiplication problem on the board.
type Challenge struct {
	ID        ID
	A, B      int
	Expected  int
	Text      string
	SpawnedAt time.Time
	Phase     Phase
}

func newChallenge(id ID, a, b int, at time.Time) *Challenge {
	return &Challenge{
		ID:        id,
		A:         a,
		B:         b,
		Expected:  a * b,
		SpawnedAt: at,
		Phase:     PhaseEntering,
	}
}

// Digits returns the decimal length of the expected answer.
func (c *Challenge) Digits() int {
	return len(strconv.Itoa(c.Expected))
}

// AcceptsInput reports whether the challenge's text may still change.
func (c *Challenge) AcceptsInput() bool {
	return c.Phase != PhaseResolving
}
