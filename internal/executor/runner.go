package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ProcessResult is the raw outcome of one child process.
// Err is set only when the process could not be started or waited on.
// Signal names the signal that killed a started process.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Signal   string
	Err      error
}

// ProcessRunner starts a child process and waits for it to exit.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args []string) ProcessResult
}

// ExecRunner runs processes with os/exec. Cancelling ctx kills the child.
type ExecRunner struct {
	// Dir is the working directory of the child. Empty inherits ours.
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, name string, args []string) ProcessResult {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode == -1 {
			result.Signal = strings.TrimPrefix(exitErr.String(), "signal: ")
		}
		return result
	}
	result.ExitCode = -1
	result.Err = err
	return result
}
