package tptload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Configuration failures all wrap ErrInvalidConfig so a single check
// decides whether the run was aborted before any table was processed:
//
//	if errors.Is(err, tptload.ErrInvalidConfig) {
//	    // nothing was loaded
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigNotFound indicates tptload.yaml does not exist.
	ErrConfigNotFound = fmt.Errorf("config file not found: %w", ErrInvalidConfig)

	// ErrTemplateNotFound indicates a required script template is missing.
	ErrTemplateNotFound = fmt.Errorf("template not found: %w", ErrInvalidConfig)

	// ErrDataDirNotFound indicates the data directory does not exist.
	ErrDataDirNotFound = fmt.Errorf("data directory not found: %w", ErrInvalidConfig)

	// ErrInterrupted indicates the run was cancelled before every table was processed.
	ErrInterrupted = errors.New("run interrupted")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
//
// Table failures are never reported through an error, so a run in which
// some tables failed still exits with ExitSuccess.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInterrupted):
		return ExitGeneralError
	}

	if isUsageError(err) {
		return ExitUsageError
	}

	return ExitGeneralError
}

// isUsageError recognises the argument and flag errors produced by cobra,
// which are plain fmt errors without a sentinel.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"arg(s), received",
		"requires at least",
		"flag needs an argument",
		"required flag",
		"invalid argument",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
