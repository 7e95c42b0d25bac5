package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/mathtables/internal/config"
	"github.com/roach88/mathtables/internal/harness"
)

// FileError is a validation failure in one file.
type FileError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Files  int         `json:"files"`
	Errors []FileError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir|scenario-file>",
		Short: "Validate scenario files without running them",
		Long: `Check scenario files for unknown fields, bad actions and malformed
assertions without running them. With --config, the configuration file
is checked against its schema as well.

Exit codes:
  0 - Everything is valid
  1 - One or more files are invalid
  2 - Command error (path not found)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	info, err := os.Stat(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario path not found", err)
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = findScenarioFiles(path, ""); err != nil {
			return WrapExitError(ExitCommandError, "failed to list scenarios", err)
		}
	}

	result := ValidationResult{Valid: true}
	for _, f := range files {
		formatter.VerboseLog("Validating %s", f)
		result.Files++
		if _, err := harness.LoadScenario(f); err != nil {
			result.Errors = append(result.Errors, FileError{File: f, Code: ErrCodeScenario, Message: err.Error()})
		}
	}

	if opts.ConfigFile != "" {
		formatter.VerboseLog("Validating %s", opts.ConfigFile)
		result.Files++
		if err := validateConfigFile(opts.ConfigFile); err != nil {
			result.Errors = append(result.Errors, FileError{File: opts.ConfigFile, Code: ErrCodeConfig, Message: err.Error()})
		}
	}
	result.Valid = len(result.Errors) == 0

	if formatter.JSON() {
		if err := formatter.Result(result, !result.Valid, ErrCodeScenario, "validation failed"); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n  [%s] %s\n", filepath.Base(e.File), e.Code, e.Message)
		}
		if result.Valid {
			fmt.Fprintf(w, "✓ %d file(s) valid\n", result.Files)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) invalid", len(result.Errors), result.Files))
	}
	return nil
}

func validateConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = config.Parse(path, data)
	return err
}
