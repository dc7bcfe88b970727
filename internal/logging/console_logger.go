package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mortie23/tptload/internal/tui"
)

// ConsoleLogger writes log messages to stderr.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	color   bool
	out     io.Writer
	mu      sync.Mutex
}

// ConsoleOption configures a ConsoleLogger.
type ConsoleOption func(*ConsoleLogger)

// WithWriter redirects output away from stderr.
func WithWriter(w io.Writer) ConsoleOption {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithColor forces coloured output on or off.
func WithColor(enabled bool) ConsoleOption {
	return func(l *ConsoleLogger) {
		l.color = enabled
	}
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output.
// Colour is enabled when stderr is a terminal, unless overridden by WithColor.
func NewConsoleLogger(verbose bool, opts ...ConsoleOption) *ConsoleLogger {
	l := &ConsoleLogger{
		verbose: verbose,
		color:   tui.ColorEnabled(os.Stderr),
		out:     os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(tui.Paint(tui.MutedStyle, "[VERBOSE] ", l.color), format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Warn logs recoverable problems.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write(tui.Paint(tui.WarningStyle, "[WARN] ", l.color), format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(tui.Paint(tui.ErrorStyle, "[ERROR] ", l.color), format, args)
}

// Success logs completed work with a check mark.
func (l *ConsoleLogger) Success(format string, args ...interface{}) {
	l.write(tui.Paint(tui.SuccessStyle, tui.SymbolCheck+" ", l.color), format, args)
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, prefix+msg+"\n")
}
