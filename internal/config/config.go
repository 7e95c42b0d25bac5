package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/mathtables/internal/game"
	"github.com/roach88/mathtables/internal/input"
	"github.com/roach88/mathtables/internal/scoring"
)

// ErrInvalid is returned for settings that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the effective configuration. Its JSON form is the shape of a
// configuration file.
type Config struct {
	Game    Game    `json:"game"`
	Input   Input   `json:"input"`
	Server  Server  `json:"server"`
	Journal Journal `json:"journal"`
	Sound   bool    `json:"sound"`
	Seed    uint64  `json:"seed"`
}

// Game holds session timings in milliseconds and limits.
type Game struct {
	Capacity          int    `json:"capacity"`
	SpawnPeriodMS     int64  `json:"spawn_period_ms"`
	CountdownPeriodMS int64  `json:"countdown_period_ms"`
	SettleMS          int64  `json:"settle_ms"`
	RemoveMS          int64  `json:"remove_ms"`
	RejectMS          int64  `json:"reject_ms"`
	MaxInputLength    int    `json:"max_input_length"`
	Tiers             []Tier `json:"tiers"`
	FallbackPoints    int    `json:"fallback_points"`
}

// Tier is one scoring tier.
type Tier struct {
	WithinMS int64 `json:"within_ms"`
	Points   int   `json:"points"`
}

type Input struct {
	Mode input.Kind `json:"mode"`
}

type Server struct {
	Addr string `json:"addr"`
}

// Journal locates the game journal. An empty DB disables it.
type Journal struct {
	DB string `json:"db"`
}

// DefaultAddr is the default HTTP listen address.
const DefaultAddr = "127.0.0.1:8080"

// Default returns the built-in settings.
func Default() Config {
	g := game.DefaultConfig()
	tiers := make([]Tier, 0, len(g.Scoring.Tiers))
	for _, t := range g.Scoring.Tiers {
		tiers = append(tiers, Tier{WithinMS: t.Within.Milliseconds(), Points: t.Points})
	}
	return Config{
		Game: Game{
			Capacity:          g.Capacity,
			SpawnPeriodMS:     g.SpawnPeriod.Milliseconds(),
			CountdownPeriodMS: g.CountdownPeriod.Milliseconds(),
			SettleMS:          g.SettleDelay.Milliseconds(),
			RemoveMS:          g.RemoveDelay.Milliseconds(),
			RejectMS:          g.RejectDelay.Milliseconds(),
			MaxInputLength:    g.MaxInputLength,
			Tiers:             tiers,
			FallbackPoints:    g.Scoring.Fallback,
		},
		Input:  Input{Mode: input.KindAuto},
		Server: Server{Addr: DefaultAddr},
		Sound:  true,
	}
}

// GameConfig converts the game settings for game.New.
func (c Config) GameConfig() game.Config {
	ms := func(n int64) time.Duration { return time.Duration(n) * time.Millisecond }

	table := scoring.Table{Fallback: c.Game.FallbackPoints}
	for _, t := range c.Game.Tiers {
		table.Tiers = append(table.Tiers, scoring.Tier{Within: ms(t.WithinMS), Points: t.Points})
	}
	return game.Config{
		Capacity:        c.Game.Capacity,
		SpawnPeriod:     ms(c.Game.SpawnPeriodMS),
		CountdownPeriod: ms(c.Game.CountdownPeriodMS),
		SettleDelay:     ms(c.Game.SettleMS),
		RemoveDelay:     ms(c.Game.RemoveMS),
		RejectDelay:     ms(c.Game.RejectMS),
		MaxInputLength:  c.Game.MaxInputLength,
		Scoring:         table,
	}
}

// Validate checks settings that came from flags or the environment, which
// the CUE schema never saw.
func (c Config) Validate() error {
	if _, err := input.ParseKind(string(c.Input.Mode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.GameConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server address is empty", ErrInvalid)
	}
	return nil
}
