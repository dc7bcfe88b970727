// Package tui decides how tptload decorates terminal output and holds the
// shared lipgloss styles.
package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the output mode for tptload.
type Mode int

const (
	// ModePlain is used for CI/CD pipelines, cron jobs and redirected output.
	ModePlain Mode = iota
	// ModeColor is used when a human is watching the terminal.
	ModeColor
)

// DetectMode determines whether output written to f may be coloured.
//
// Returns ModePlain if:
//   - TPTLOAD_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - f is not a terminal
func DetectMode(f *os.File) Mode {
	if os.Getenv("TPTLOAD_PLAIN") == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModeColor
}

// ColorEnabled is a convenience function that returns true if f may be coloured.
func ColorEnabled(f *os.File) bool {
	return DetectMode(f) == ModeColor
}
