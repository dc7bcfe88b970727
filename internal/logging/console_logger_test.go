package logging

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mortie23/tptload/pkg/tptload"
)

var (
	_ tptload.Logger = (*ConsoleLogger)(nil)
	_ tptload.Logger = (*FileLogger)(nil)
	_ tptload.Logger = (*MultiLogger)(nil)
	_ tptload.Logger = (*NullLogger)(nil)
)

func plainLogger(verbose bool) (*ConsoleLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewConsoleLogger(verbose, WithWriter(&buf), WithColor(false)), &buf
}

func TestConsoleLogger_Verbose_WhenEnabled(t *testing.T) {
	logger, buf := plainLogger(true)
	logger.Verbose("test message: %s", "value")

	expected := "[VERBOSE] test message: value\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestConsoleLogger_Verbose_WhenDisabled(t *testing.T) {
	logger, buf := plainLogger(false)
	logger.Verbose("test message: %s", "value")

	if buf.String() != "" {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		log      func(l *ConsoleLogger)
		expected string
	}{
		{"info", func(l *ConsoleLogger) { l.Info("info message: %s", "value") }, "info message: value\n"},
		{"warn", func(l *ConsoleLogger) { l.Warn("stderr from %s", "tbuild") }, "[WARN] stderr from tbuild\n"},
		{"error", func(l *ConsoleLogger) { l.Error("error message: %d", 12) }, "[ERROR] error message: 12\n"},
		{"success", func(l *ConsoleLogger) { l.Success("loaded %s", "GAME") }, "✓ loaded GAME\n"},
		{"no args keeps percent", func(l *ConsoleLogger) { l.Info("100% done") }, "100% done\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := plainLogger(false)
			tt.log(logger)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestConsoleLogger_ColorKeepsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(false, WithWriter(&buf), WithColor(true))
	logger.Error("drop failed for %s", "UNMAPPED")

	assert.Contains(t, buf.String(), "[ERROR]")
	assert.Contains(t, buf.String(), "drop failed for UNMAPPED")
}

func TestConsoleLogger_ConcurrentSafety(t *testing.T) {
	logger, buf := plainLogger(true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger.Info("message %d", id)
			logger.Verbose("verbose %d", id)
			logger.Error("error %d", id)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 30 {
		t.Errorf("Expected 30 lines, got %d", len(lines))
	}
}

func TestNullLogger_DiscardsAllMessages(t *testing.T) {
	logger := NewNullLogger()
	logger.Verbose("verbose")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	logger.Success("success")
}

func TestMultiLogger_FansOut(t *testing.T) {
	first, firstBuf := plainLogger(false)
	second, secondBuf := plainLogger(false)

	multi := NewMultiLogger(first, nil, second)
	multi.Success("table %s loaded", "GAME")
	multi.Warn("careful")

	for _, buf := range []*bytes.Buffer{firstBuf, secondBuf} {
		assert.Equal(t, "✓ table GAME loaded\n[WARN] careful\n", buf.String())
	}
}

func TestFileLogger_WritesLeveledRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tptload.log")

	logger, err := NewFileLogger(path, slog.LevelInfo)
	require.NoError(t, err)
	logger.Verbose("hidden detail")
	logger.Info("starting run %s", "abc")
	logger.Success("loaded %s", "GAME")
	logger.Error("drop failed")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.NotContains(t, text, "hidden detail")
	assert.Contains(t, text, `level=INFO msg="starting run abc"`)
	assert.Contains(t, text, `level=SUCCESS msg="loaded GAME"`)
	assert.Contains(t, text, `level=ERROR msg="drop failed"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"Warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"success", levelSuccess, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("level %q", tt.input), func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// BenchmarkConsoleLogger_VerboseDisabled measures performance when verbose is disabled
func BenchmarkConsoleLogger_VerboseDisabled(b *testing.B) {
	logger, _ := plainLogger(false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Verbose("benchmark message %d", i)
	}
}
