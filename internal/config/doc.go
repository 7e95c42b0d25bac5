// Package config loads the effective mathtables settings.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional CUE file validated against the embedded schema
//  3. MATHTABLES_* environment variables, optionally read from a .env file
//  4. Command-line flags, applied by package cli
//
// Every failure to validate is reported as ErrInvalid.
package config
