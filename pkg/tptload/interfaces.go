package tptload

import "context"

// ScriptGenerator renders the control documents of a LoadUnit to disk.
type ScriptGenerator interface {
	Generate(unit LoadUnit, creds Credentials) (ScriptSet, error)
}

// StageRequest identifies one external invocation.
type StageRequest struct {
	Table      string
	Stage      Stage
	VarsPath   string
	ScriptPath string
}

// StageExecutor runs one stage of the external load utility.
// Failures are reported in the StageResult, never as an error.
type StageExecutor interface {
	Execute(ctx context.Context, req StageRequest) StageResult
}

// MetricsExtractor parses row counters out of load-stage output.
type MetricsExtractor interface {
	Extract(output string) LoadMetrics
}

// CredentialProvider supplies the connection secrets for a run.
type CredentialProvider interface {
	Credentials() (Credentials, error)
}

// RunRecorder persists finished run summaries.
type RunRecorder interface {
	RecordRun(ctx context.Context, summary RunSummary) error
}
