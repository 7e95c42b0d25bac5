package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
)

//go:embed schema.cue
var schemaCUE string

// Options selects the configuration sources.
type Options struct {
	// File is an optional CUE configuration file.
	File string

	// EnvFile is an optional .env file. Variables already set in the
	// environment win over the file. A missing file is not an error.
	EnvFile string

	// LookupEnv reads the environment. Default: os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from defaults, the file and the
// environment, then validates it.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := applyCUE(&cfg, opts.File, data); err != nil {
			return Config{}, err
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if opts.EnvFile != "" {
		vars, err := godotenv.Read(opts.EnvFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read env file: %w", err)
		default:
			lookup = withFallback(lookup, vars)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse applies CUE source on top of the defaults and validates the result.
func Parse(filename string, data []byte) (Config, error) {
	cfg := Default()
	if err := applyCUE(&cfg, filename, data); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyCUE unifies data with the schema and decodes the fields it sets
// over cfg.
func applyCUE(cfg *Config, filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, formatCUEError(err))
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, formatCUEError(err))
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, formatCUEError(err))
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// formatCUEError flattens a CUE error list into one line per error, with
// positions.
func formatCUEError(err error) string {
	return cueerrors.Details(err, nil)
}
