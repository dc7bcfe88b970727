package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// levelSuccess sits between info and warn so success lines survive an
// info threshold but not a warn threshold.
const levelSuccess = slog.Level(2)

// FileLogger appends leveled slog records to a log file.
type FileLogger struct {
	logger *slog.Logger
	file   *os.File
}

// ParseLevel converts a config level name into a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "verbose":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "success":
		return levelSuccess, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, success, warn or error)", name)
	}
}

// NewFileLogger opens (or creates) path for appending, creating parent directories.
func NewFileLogger(path string, level slog.Level) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelSuccess {
					a.Value = slog.StringValue("SUCCESS")
				}
			}
			return a
		},
	})
	return &FileLogger{logger: slog.New(handler), file: f}, nil
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	return l.file.Close()
}

func (l *FileLogger) Verbose(format string, args ...interface{}) {
	l.log(slog.LevelDebug, format, args)
}

func (l *FileLogger) Info(format string, args ...interface{}) {
	l.log(slog.LevelInfo, format, args)
}

func (l *FileLogger) Warn(format string, args ...interface{}) {
	l.log(slog.LevelWarn, format, args)
}

func (l *FileLogger) Error(format string, args ...interface{}) {
	l.log(slog.LevelError, format, args)
}

func (l *FileLogger) Success(format string, args ...interface{}) {
	l.log(levelSuccess, format, args)
}

func (l *FileLogger) log(level slog.Level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.logger.Log(context.Background(), level, msg)
}
