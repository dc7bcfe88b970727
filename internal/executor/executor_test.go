package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mortie23/tptload/internal/logging"
	"github.com/mortie23/tptload/pkg/tptload"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	result ProcessResult
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string) ProcessResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.result
}

var gameLoad = tptload.StageRequest{
	Table:      "GAME",
	Stage:      tptload.StageLoad,
	VarsPath:   "render_tmp/GAME.vars",
	ScriptPath: "render_tmp/GAME_load.script",
}

func TestExecute_ArgumentOrder(t *testing.T) {
	runner := &fakeRunner{}
	exec := New(Config{}, runner, logging.NewNullLogger())

	result := exec.Execute(context.Background(), gameLoad)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"tbuild", "-f", "render_tmp/GAME_load.script", "-v", "render_tmp/GAME.vars"}, runner.calls[0])
	assert.Equal(t, "tbuild -f render_tmp/GAME_load.script -v render_tmp/GAME.vars", result.Command)
	assert.True(t, result.Succeeded())
	assert.Equal(t, tptload.StageLoad, result.Stage)
}

func TestExecute_CustomCommand(t *testing.T) {
	runner := &fakeRunner{}
	exec := New(Config{Executable: "/opt/tbuild", ScriptFlag: "--file", VarsFlag: "--vars"}, runner, logging.NewNullLogger())

	exec.Execute(context.Background(), gameLoad)
	assert.Equal(t, []string{"/opt/tbuild", "--file", "render_tmp/GAME_load.script", "--vars", "render_tmp/GAME.vars"}, runner.calls[0])
}

func TestExecute_ResultShapes(t *testing.T) {
	tests := []struct {
		name        string
		proc        ProcessResult
		succeeded   bool
		exitCode    int
		launchError string
	}{
		{"zero exit", ProcessResult{Stdout: "ok"}, true, 0, ""},
		{"nonzero exit", ProcessResult{ExitCode: 12, Stderr: "TPT_INFRA: error"}, false, 12, ""},
		{"launch failure", ProcessResult{ExitCode: -1, Err: errors.New(`exec: "tbuild": executable file not found in $PATH`)}, false, -1, `exec: "tbuild": executable file not found in $PATH`},
		{"error without code", ProcessResult{Err: errors.New("permission denied")}, false, -1, "permission denied"},
		{"killed by signal", ProcessResult{ExitCode: -1, Signal: "killed"}, false, -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := New(Config{}, &fakeRunner{result: tt.proc}, logging.NewNullLogger())
			result := exec.Execute(context.Background(), gameLoad)

			assert.Equal(t, tt.succeeded, result.Succeeded())
			assert.Equal(t, tt.exitCode, result.ExitCode)
			assert.Equal(t, tt.launchError, result.LaunchError)
			assert.Equal(t, tt.proc.Signal, result.Signal)
			assert.Equal(t, tt.proc.Stdout, result.Stdout)
			assert.Equal(t, tt.proc.Stderr, result.Stderr)
		})
	}
}

func TestExecute_WritesArtifacts(t *testing.T) {
	logs := filepath.Join(t.TempDir(), "logs")
	runner := &fakeRunner{result: ProcessResult{ExitCode: 8, Stdout: "job started", Stderr: "job failed"}}
	exec := New(Config{LogsDir: logs, StageLogs: true}, runner, logging.NewNullLogger())

	exec.Execute(context.Background(), gameLoad)

	stdout, err := os.ReadFile(filepath.Join(logs, "GAME_load_stdout.log"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stdout), "Command: tbuild -f render_tmp/GAME_load.script -v render_tmp/GAME.vars\nReturn Code: 8\nOperation: load\n"+separator+"\n"))
	assert.True(t, strings.HasSuffix(string(stdout), "job started"))

	stderr, err := os.ReadFile(filepath.Join(logs, "GAME_load_stderr.log"))
	require.NoError(t, err)
	assert.Contains(t, string(stderr), "job failed")

	combined, err := os.ReadFile(filepath.Join(logs, "GAME_load_combined.log"))
	require.NoError(t, err)
	assert.Contains(t, string(combined), "Success: false\n")
	assert.Contains(t, string(combined), "STDOUT:\njob started\n")
	assert.Contains(t, string(combined), "STDERR:\njob failed\n")
}

func TestExecute_EmptyStreamsOnlyCombined(t *testing.T) {
	logs := t.TempDir()
	exec := New(Config{LogsDir: logs, StageLogs: true}, &fakeRunner{}, logging.NewNullLogger())

	exec.Execute(context.Background(), gameLoad)

	_, err := os.Stat(filepath.Join(logs, "GAME_load_stdout.log"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(logs, "GAME_load_stderr.log"))
	assert.True(t, os.IsNotExist(err))

	combined, err := os.ReadFile(filepath.Join(logs, "GAME_load_combined.log"))
	require.NoError(t, err)
	assert.Contains(t, string(combined), "Success: true\n")
	assert.NotContains(t, string(combined), "STDOUT:")
}

func TestExecute_ArtifactsDisabled(t *testing.T) {
	logs := filepath.Join(t.TempDir(), "logs")
	exec := New(Config{LogsDir: logs}, &fakeRunner{result: ProcessResult{Stdout: "x"}}, logging.NewNullLogger())

	exec.Execute(context.Background(), gameLoad)
	_, err := os.Stat(logs)
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_ArtifactWriteFailureIsOnlyAWarning(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0644))

	exec := New(Config{LogsDir: blocker, StageLogs: true}, &fakeRunner{result: ProcessResult{Stdout: "ok"}}, logging.NewNullLogger())
	result := exec.Execute(context.Background(), gameLoad)
	assert.True(t, result.Succeeded())
}

func TestNew_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() { New(Config{}, nil, nil) })
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-tbuild")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}

	t.Run("captures output and exit code", func(t *testing.T) {
		script := writeScript(t, "echo \"script=$2 vars=$4\"\necho oops >&2\nexit 3\n")
		got := ExecRunner{}.Run(context.Background(), script, []string{"-f", "a.script", "-v", "a.vars"})

		require.NoError(t, got.Err)
		assert.Equal(t, 3, got.ExitCode)
		assert.Equal(t, "script=a.script vars=a.vars\n", got.Stdout)
		assert.Equal(t, "oops\n", got.Stderr)
	})

	t.Run("missing executable", func(t *testing.T) {
		got := ExecRunner{}.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
		assert.Error(t, got.Err)
		assert.Equal(t, -1, got.ExitCode)
	})

	t.Run("not executable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain")
		require.NoError(t, os.WriteFile(path, []byte("echo hi"), 0644))
		got := ExecRunner{}.Run(context.Background(), path, nil)
		assert.Error(t, got.Err)
		assert.Equal(t, -1, got.ExitCode)
	})

	t.Run("killed while running", func(t *testing.T) {
		script := writeScript(t, "echo started\nexec sleep 5\n")
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		got := ExecRunner{}.Run(ctx, script, nil)

		require.NoError(t, got.Err)
		assert.Equal(t, -1, got.ExitCode)
		assert.Equal(t, "killed", got.Signal)
	})

	t.Run("cancelled context", func(t *testing.T) {
		script := writeScript(t, "sleep 5\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		got := ExecRunner{}.Run(ctx, script, nil)
		assert.Error(t, got.Err)
	})
}
