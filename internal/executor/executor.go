// Package executor invokes the external bulk-load utility, one process per
// stage, and persists what it printed.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mortie23/tptload/pkg/tptload"
)

const separator = "================================================================================"

// Config describes the command-line contract of the load utility.
type Config struct {
	Executable string
	ScriptFlag string
	VarsFlag   string

	// LogsDir receives per-stage artifacts when StageLogs is set.
	LogsDir   string
	StageLogs bool
}

// Executor runs one stage of the load utility per call.
type Executor struct {
	cfg    Config
	runner ProcessRunner
	logger tptload.Logger
}

var _ tptload.StageExecutor = (*Executor)(nil)

// New creates an Executor. Empty command fields take the tbuild defaults and
// a nil runner selects ExecRunner.
func New(cfg Config, runner ProcessRunner, logger tptload.Logger) *Executor {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if cfg.Executable == "" {
		cfg.Executable = tptload.DefaultExecutable
	}
	if cfg.ScriptFlag == "" {
		cfg.ScriptFlag = tptload.DefaultScriptFlag
	}
	if cfg.VarsFlag == "" {
		cfg.VarsFlag = tptload.DefaultVarsFlag
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Executor{cfg: cfg, runner: runner, logger: logger}
}

// Args returns the argument vector for a request: script flag and path,
// then vars flag and path.
func (e *Executor) Args(req tptload.StageRequest) []string {
	return []string{e.cfg.ScriptFlag, req.ScriptPath, e.cfg.VarsFlag, req.VarsPath}
}

// Execute blocks until the process exits. Launch failures are reported as
// exit code -1 with LaunchError set.
func (e *Executor) Execute(ctx context.Context, req tptload.StageRequest) tptload.StageResult {
	args := e.Args(req)
	command := strings.Join(append([]string{e.cfg.Executable}, args...), " ")
	e.logger.Verbose("Starting %s operation: %s", req.Stage, command)

	start := time.Now()
	proc := e.runner.Run(ctx, e.cfg.Executable, args)
	result := tptload.StageResult{
		Stage:    req.Stage,
		Command:  command,
		ExitCode: proc.ExitCode,
		Stdout:   proc.Stdout,
		Stderr:   proc.Stderr,
		Signal:   proc.Signal,
		Duration: time.Since(start),
	}
	if proc.Err != nil {
		result.LaunchError = proc.Err.Error()
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
	}

	if e.cfg.StageLogs {
		e.writeArtifacts(req, result)
	}
	if result.Stderr != "" {
		e.logger.Warn("%s stderr output for %s: %s", req.Stage, req.Table, strings.TrimSpace(result.Stderr))
	}
	if result.Stdout != "" {
		e.logger.Verbose("%s stdout for %s: %s", req.Stage, req.Table, strings.TrimSpace(result.Stdout))
	}
	return result
}

// ArtifactPath returns the log file path for a table, stage and stream
// (stdout, stderr or combined).
func (e *Executor) ArtifactPath(table string, stage tptload.Stage, stream string) string {
	return filepath.Join(e.cfg.LogsDir, fmt.Sprintf("%s_%s_%s.log", table, stage, stream))
}

func (e *Executor) writeArtifacts(req tptload.StageRequest, result tptload.StageResult) {
	if err := os.MkdirAll(e.cfg.LogsDir, 0755); err != nil {
		e.logger.Warn("Failed to create logs directory %s: %v", e.cfg.LogsDir, err)
		return
	}

	header := func(withSuccess bool) string {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Command: %s\n", result.Command)
		fmt.Fprintf(&sb, "Return Code: %d\n", result.ExitCode)
		fmt.Fprintf(&sb, "Operation: %s\n", req.Stage)
		if withSuccess {
			fmt.Fprintf(&sb, "Success: %t\n", result.Succeeded())
		}
		if result.LaunchError != "" {
			fmt.Fprintf(&sb, "Launch Error: %s\n", result.LaunchError)
		}
		if result.Signal != "" {
			fmt.Fprintf(&sb, "Signal: %s\n", result.Signal)
		}
		sb.WriteString(separator + "\n")
		return sb.String()
	}

	if result.Stdout != "" {
		e.writeArtifact(e.ArtifactPath(req.Table, req.Stage, "stdout"), header(false)+result.Stdout)
	}
	if result.Stderr != "" {
		e.writeArtifact(e.ArtifactPath(req.Table, req.Stage, "stderr"), header(false)+result.Stderr)
	}

	combined := header(true)
	if result.Stdout != "" {
		combined += "STDOUT:\n" + result.Stdout + "\n" + separator + "\n"
	}
	if result.Stderr != "" {
		combined += "STDERR:\n" + result.Stderr + "\n" + separator + "\n"
	}
	path := e.ArtifactPath(req.Table, req.Stage, "combined")
	if e.writeArtifact(path, combined) {
		e.logger.Verbose("Complete output saved to: %s", path)
	}
}

func (e *Executor) writeArtifact(path, content string) bool {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.logger.Warn("Failed to write %s: %v", path, err)
		return false
	}
	return true
}
