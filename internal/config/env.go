package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/mathtables/internal/input"
)

// Environment variables read by Load.
const (
	EnvMode        = "MATHTABLES_MODE"
	EnvAddr        = "MATHTABLES_ADDR"
	EnvDB          = "MATHTABLES_DB"
	EnvSound       = "MATHTABLES_SOUND"
	EnvSeed        = "MATHTABLES_SEED"
	EnvCapacity    = "MATHTABLES_CAPACITY"
	EnvSpawnPeriod = "MATHTABLES_SPAWN_PERIOD"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMode); ok {
		k, err := input.ParseKind(v)
		if err != nil {
			return envError(EnvMode, err)
		}
		cfg.Input.Mode = k
	}
	if v, ok := lookup(EnvAddr); ok {
		cfg.Server.Addr = v
	}
	if v, ok := lookup(EnvDB); ok {
		cfg.Journal.DB = v
	}
	if v, ok := lookup(EnvSound); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvSound, err)
		}
		cfg.Sound = b
	}
	if v, ok := lookup(EnvSeed); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return envError(EnvSeed, err)
		}
		cfg.Seed = n
	}
	if v, ok := lookup(EnvCapacity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvCapacity, err)
		}
		cfg.Game.Capacity = n
	}
	if v, ok := lookup(EnvSpawnPeriod); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError(EnvSpawnPeriod, err)
		}
		cfg.Game.SpawnPeriodMS = d.Milliseconds()
	}
	return nil
}

func envError(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
}

// withFallback reads from primary, then from vars.
func withFallback(primary func(string) (string, bool), vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}
}
