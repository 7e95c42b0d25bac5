package game

import (
	"fmt"
	"time"

	"github.com/roach88/mathtables/internal/board"
	"github.com/roach88/mathtables/internal/input"
	"github.com/roach88/mathtables/internal/scoring"
)

// Config holds the timings and limits of a session.
type Config struct {
	// Capacity is the number of challenges the board holds; the spawn after
	// that ends the game.
	Capacity int

	// SpawnPeriod is the regular spawn cadence.
	SpawnPeriod time.Duration

	// CountdownPeriod is the tick of the visible next-spawn countdown.
	CountdownPeriod time.Duration

	// SettleDelay is how long a new challenge stays Entering.
	SettleDelay time.Duration

	// RemoveDelay is how long a solved challenge stays Resolving.
	RemoveDelay time.Duration

	// RejectDelay is how long a wrong answer stays Rejected.
	RejectDelay time.Duration

	// MaxInputLength caps keypad entry.
	MaxInputLength int

	Scoring scoring.Table
}

// DefaultConfig returns the standard game settings.
func DefaultConfig() Config {
	return Config{
		Capacity:        board.DefaultCapacity,
		SpawnPeriod:     8 * time.Second,
		CountdownPeriod: time.Second,
		SettleDelay:     time.Second,
		RemoveDelay:     300 * time.Millisecond,
		RejectDelay:     500 * time.Millisecond,
		MaxInputLength:  input.DefaultMaxLength,
		Scoring:         scoring.Default,
	}
}

// Validate reports the first setting that cannot drive a session.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("capacity must be positive, got %d", c.Capacity)
	case c.SpawnPeriod <= 0:
		return fmt.Errorf("spawn period must be positive, got %s", c.SpawnPeriod)
	case c.CountdownPeriod <= 0 || c.CountdownPeriod > c.SpawnPeriod:
		return fmt.Errorf("countdown period must be in (0, %s], got %s", c.SpawnPeriod, c.CountdownPeriod)
	case c.SettleDelay < 0, c.RemoveDelay < 0, c.RejectDelay < 0:
		return fmt.Errorf("delays must not be negative")
	case c.MaxInputLength <= 0:
		return fmt.Errorf("max input length must be positive, got %d", c.MaxInputLength)
	}
	for i := 1; i < len(c.Scoring.Tiers); i++ {
		if c.Scoring.Tiers[i].Within <= c.Scoring.Tiers[i-1].Within {
			return fmt.Errorf("scoring tiers must be in increasing order of time")
		}
	}
	return nil
}

// CountdownStart is the value the visible countdown resets to on spawn.
func (c Config) CountdownStart() int {
	n := int(c.SpawnPeriod / c.CountdownPeriod)
	if n < 1 {
		return 1
	}
	return n
}
