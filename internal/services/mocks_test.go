package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/mortie23/tptload/pkg/tptload"
)

type mockGenerator struct {
	err   error
	calls []tptload.LoadUnit
}

func (m *mockGenerator) Generate(unit tptload.LoadUnit, _ tptload.Credentials) (tptload.ScriptSet, error) {
	m.calls = append(m.calls, unit)
	if m.err != nil {
		return tptload.ScriptSet{}, m.err
	}
	set := tptload.ScriptSet{
		VarsPath: unit.Table + ".vars",
		Scripts:  map[tptload.Stage]string{},
	}
	for _, s := range []tptload.Stage{tptload.StageDrop, tptload.StageCreate, tptload.StageLoad, "stats"} {
		set.Scripts[s] = fmt.Sprintf("%s_%s.script", unit.Table, s)
	}
	return set, nil
}

// mockExecutor records invocations in order and fails the configured
// table/stage pairs.
type mockExecutor struct {
	mu       sync.Mutex
	calls    []tptload.StageRequest
	failures map[string]tptload.Stage
	stdout   string
	onCall   func(req tptload.StageRequest)
}

func (m *mockExecutor) Execute(_ context.Context, req tptload.StageRequest) tptload.StageResult {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.onCall != nil {
		m.onCall(req)
	}

	result := tptload.StageResult{Stage: req.Stage, Command: "tbuild -f " + req.ScriptPath + " -v " + req.VarsPath}
	if stage, ok := m.failures[req.Table]; ok && stage == req.Stage {
		result.ExitCode = 12
		result.Stderr = "TPT12109: failure"
		return result
	}
	if req.Stage == tptload.StageLoad {
		result.Stdout = m.stdout
	}
	return result
}

func (m *mockExecutor) sequence() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Table + ":" + string(c.Stage)
	}
	return out
}

// fixedExecutor returns the same result for every stage.
type fixedExecutor struct {
	result tptload.StageResult
}

func (f fixedExecutor) Execute(_ context.Context, req tptload.StageRequest) tptload.StageResult {
	r := f.result
	r.Stage = req.Stage
	return r
}

type mockExtractor struct {
	metrics tptload.LoadMetrics
	inputs  []string
}

func (m *mockExtractor) Extract(output string) tptload.LoadMetrics {
	m.inputs = append(m.inputs, output)
	return m.metrics
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) { l.add("verbose", format, args...) }
func (l *recordingLogger) Info(format string, args ...interface{})    { l.add("info", format, args...) }
func (l *recordingLogger) Warn(format string, args ...interface{})    { l.add("warn", format, args...) }
func (l *recordingLogger) Error(format string, args ...interface{})   { l.add("error", format, args...) }
func (l *recordingLogger) Success(format string, args ...interface{}) { l.add("success", format, args...) }
