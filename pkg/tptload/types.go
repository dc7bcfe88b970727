package tptload

import (
	"fmt"
	"strings"
	"time"
)

// DataFile is a discovered input file. LogicalName is the file name without
// its extension and is the join key into the TableMapping.
type DataFile struct {
	Path        string `json:"path"`
	LogicalName string `json:"logical_name"`
}

// TableMapping maps logical names to target table identifiers.
// It is loaded once per run and never modified afterwards.
type TableMapping map[string]string

// LoadUnit pairs a data file with its resolved target table.
type LoadUnit struct {
	File  DataFile `json:"file"`
	Table string   `json:"table"`
}

// Stage names one invocation of the external load utility.
type Stage string

const (
	StageDrop   Stage = "drop"
	StageCreate Stage = "create"
	StageLoad   Stage = "load"

	// StageGenerate marks outcomes that failed before any external
	// invocation, while writing control documents.
	StageGenerate Stage = "generate"
)

// Verb returns the progressive form used in progress messages.
func (s Stage) Verb() string {
	switch s {
	case StageDrop:
		return "Dropping"
	case StageCreate:
		return "Creating"
	case StageLoad:
		return "Loading"
	case StageGenerate:
		return "Generating scripts for"
	default:
		return fmt.Sprintf("Running %s on", s)
	}
}

// ScriptSet lists the control documents generated for one LoadUnit.
type ScriptSet struct {
	VarsPath string
	Scripts  map[Stage]string
}

// LoadMetrics holds the row counters reported by a load stage.
// A nil field means the counter was not present in the output.
type LoadMetrics struct {
	RowsSent    *int64 `json:"rows_sent"`
	RowsApplied *int64 `json:"rows_applied"`
}

// Empty reports whether neither counter was found.
func (m LoadMetrics) Empty() bool {
	return m.RowsSent == nil && m.RowsApplied == nil
}

// StageResult is the outcome of one external invocation.
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Command  string        `json:"command"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"-"`
	Stderr   string        `json:"-"`
	Duration time.Duration `json:"duration"`

	// LaunchError is set when the process could not be started at all.
	LaunchError string `json:"launch_error,omitempty"`

	// Signal is set when a started process was killed, e.g. on interrupt.
	Signal string `json:"signal,omitempty"`

	// Metrics is only populated for the metrics stage.
	Metrics *LoadMetrics `json:"metrics,omitempty"`
}

// Succeeded reports whether the invocation started and exited with code zero.
func (r StageResult) Succeeded() bool {
	return r.LaunchError == "" && r.ExitCode == 0
}

// LoadOutcome aggregates the stage results of one LoadUnit.
type LoadOutcome struct {
	Unit        LoadUnit      `json:"unit"`
	Success     bool          `json:"success"`
	FailedStage Stage         `json:"failed_stage,omitempty"`
	Results     []StageResult `json:"results"`
	Metrics     *LoadMetrics  `json:"metrics,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// TableFailure names a failed table and the stage that failed.
type TableFailure struct {
	Table string `json:"table"`
	Stage Stage  `json:"stage"`
}

func (f TableFailure) String() string {
	return fmt.Sprintf("%s (%s)", f.Table, f.Stage)
}

// RunSummary is the end-of-run aggregate. Add is the only mutator and keeps
// Succeeded + Failed == Processed.
type RunSummary struct {
	RunID        string         `json:"run_id"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Processed    int            `json:"processed"`
	Succeeded    int            `json:"succeeded"`
	Failed       int            `json:"failed"`
	FailedTables []string       `json:"failed_tables"`
	Failures     []TableFailure `json:"failures"`
	Skipped      []DataFile     `json:"skipped,omitempty"`
	Outcomes     []LoadOutcome  `json:"outcomes"`
	Interrupted  bool           `json:"interrupted,omitempty"`
}

// Add folds a finished outcome into the summary.
func (s *RunSummary) Add(outcome LoadOutcome) {
	s.Processed++
	if outcome.Success {
		s.Succeeded++
	} else {
		s.Failed++
		s.FailedTables = append(s.FailedTables, outcome.Unit.Table)
		s.Failures = append(s.Failures, TableFailure{Table: outcome.Unit.Table, Stage: outcome.FailedStage})
	}
	s.Outcomes = append(s.Outcomes, outcome)
}

// String renders the one-line summary printed at the end of every run.
func (s RunSummary) String() string {
	line := fmt.Sprintf("Completed: %d/%d tables loaded successfully, %d failed", s.Succeeded, s.Processed, s.Failed)
	if len(s.Failures) > 0 {
		failed := make([]string, len(s.Failures))
		for i, f := range s.Failures {
			failed[i] = f.String()
		}
		line += ": " + strings.Join(failed, ", ")
	}
	return line
}

// Credentials are the connection secrets substituted into every control
// document of a run.
type Credentials struct {
	DDLUsername     string
	DDLPassword     string
	TargetUsername  string
	TargetPassword  string
	DDLHost         string
	TargetHost      string
	DDLLogonMech    string
	TargetLogonMech string
	WorkingDatabase string
}

// Variables returns the template variable names and values for the credentials.
func (c Credentials) Variables() map[string]string {
	return map[string]string{
		"ddl_username":      c.DDLUsername,
		"ddl_password":      c.DDLPassword,
		"target_username":   c.TargetUsername,
		"target_password":   c.TargetPassword,
		"ddl_host":          c.DDLHost,
		"target_host":       c.TargetHost,
		"ddl_logon_mech":    c.DDLLogonMech,
		"target_logon_mech": c.TargetLogonMech,
		"working_database":  c.WorkingDatabase,
	}
}

// Redacted returns a copy safe to print: passwords are masked.
func (c Credentials) Redacted() Credentials {
	mask := func(s string) string {
		if s == "" {
			return "(empty)"
		}
		return strings.Repeat("*", len(s))
	}
	c.DDLPassword = mask(c.DDLPassword)
	c.TargetPassword = mask(c.TargetPassword)
	return c
}
