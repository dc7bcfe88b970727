// Package services sequences the load stages of each table and aggregates
// the outcomes of a run.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mortie23/tptload/pkg/tptload"
)

// StagePlan is the ordered stage sequence applied to every table.
// Metrics are extracted from the output of MetricsStage.
type StagePlan struct {
	Stages       []tptload.Stage
	MetricsStage tptload.Stage
}

// DefaultStagePlan returns drop, create, load with metrics from load.
func DefaultStagePlan() StagePlan {
	return StagePlan{Stages: tptload.DefaultStages(), MetricsStage: tptload.StageLoad}
}

// Validate checks that the plan is non-empty, has no duplicate stages and
// that MetricsStage, when set, is part of the sequence.
func (p StagePlan) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("%w: stage plan is empty", tptload.ErrInvalidConfig)
	}
	seen := make(map[tptload.Stage]bool, len(p.Stages))
	for _, s := range p.Stages {
		if s == "" {
			return fmt.Errorf("%w: stage name cannot be empty", tptload.ErrInvalidConfig)
		}
		if s == tptload.StageGenerate {
			return fmt.Errorf("%w: %q is reserved", tptload.ErrInvalidConfig, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: duplicate stage %q", tptload.ErrInvalidConfig, s)
		}
		seen[s] = true
	}
	if p.MetricsStage != "" && !seen[p.MetricsStage] {
		return fmt.Errorf("%w: metrics stage %q is not in the stage plan", tptload.ErrInvalidConfig, p.MetricsStage)
	}
	return nil
}

// LoadService runs the stage plan for each LoadUnit.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type LoadService struct {
	generator tptload.ScriptGenerator
	executor  tptload.StageExecutor
	extractor tptload.MetricsExtractor
	logger    tptload.Logger
	plan      StagePlan
	now       func() time.Time
}

// NewLoadService creates a LoadService. It panics on nil dependencies and on
// an invalid plan; both are programmer errors.
func NewLoadService(
	generator tptload.ScriptGenerator,
	executor tptload.StageExecutor,
	extractor tptload.MetricsExtractor,
	logger tptload.Logger,
	plan StagePlan,
) *LoadService {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	if extractor == nil {
		panic("extractor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if err := plan.Validate(); err != nil {
		panic(err.Error())
	}

	return &LoadService{
		generator: generator,
		executor:  executor,
		extractor: extractor,
		logger:    logger,
		plan:      plan,
		now:       time.Now,
	}
}

// LoadTable generates the control documents for unit and runs each stage in
// order. The first failing stage ends the sequence; later stages never run.
func (s *LoadService) LoadTable(ctx context.Context, unit tptload.LoadUnit, creds tptload.Credentials) tptload.LoadOutcome {
	start := s.now()
	outcome := tptload.LoadOutcome{Unit: unit}
	s.logger.Info("Starting table load process: %s -> %s", unit.File.Path, unit.Table)

	scripts, err := s.generator.Generate(unit, creds)
	if err != nil {
		s.logger.Error("Failed to generate scripts for %s: %v", unit.Table, err)
		outcome.FailedStage = tptload.StageGenerate
		outcome.Error = err.Error()
		outcome.Duration = s.now().Sub(start)
		return outcome
	}

	total := len(s.plan.Stages)
	for i, stage := range s.plan.Stages {
		s.logger.Info("Step %d/%d: %s table %s", i+1, total, stage.Verb(), unit.Table)

		result := s.executor.Execute(ctx, tptload.StageRequest{
			Table:      unit.Table,
			Stage:      stage,
			VarsPath:   scripts.VarsPath,
			ScriptPath: scripts.Scripts[stage],
		})
		if stage == s.plan.MetricsStage {
			m := s.extractor.Extract(result.Stdout)
			result.Metrics = &m
		}
		outcome.Results = append(outcome.Results, result)

		if !result.Succeeded() {
			s.logStageFailure(unit.Table, result)
			outcome.FailedStage = stage
			outcome.Duration = s.now().Sub(start)
			return outcome
		}
		s.logger.Verbose("%s operation completed successfully", stage)
		if result.Metrics != nil {
			outcome.Metrics = result.Metrics
			s.logMetrics(*result.Metrics)
		}
	}

	outcome.Success = true
	outcome.Duration = s.now().Sub(start)
	s.logger.Success("Successfully completed table load: %s", unit.Table)
	return outcome
}

// Run loads units one at a time in order. A failed unit never stops the run;
// cancelling ctx does, after the current unit, and returns ErrInterrupted
// alongside the partial summary.
func (s *LoadService) Run(ctx context.Context, units []tptload.LoadUnit, creds tptload.Credentials) (tptload.RunSummary, error) {
	summary := tptload.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
	}
	s.logger.Verbose("Run %s: %d table(s) to load", summary.RunID, len(units))

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			summary.Interrupted = true
			summary.FinishedAt = s.now()
			s.logger.Warn("Run interrupted; %d of %d table(s) not attempted", len(units)-i, len(units))
			return summary, fmt.Errorf("%w: %v", tptload.ErrInterrupted, err)
		}
		s.logger.Info("Processing: %s -> %s", unit.File.Path, unit.Table)
		summary.Add(s.LoadTable(ctx, unit, creds))
	}

	summary.FinishedAt = s.now()
	return summary, nil
}

func (s *LoadService) logStageFailure(table string, result tptload.StageResult) {
	switch {
	case result.LaunchError != "":
		s.logger.Error("Failed to %s table %s: could not start %q: %s", result.Stage, table, result.Command, result.LaunchError)
		return
	case result.Signal != "":
		s.logger.Error("Failed to %s table %s: %s operation was terminated (%s)", result.Stage, table, result.Stage, result.Signal)
		return
	}
	s.logger.Error("Failed to %s table %s: %s operation failed with return code %d", result.Stage, table, result.Stage, result.ExitCode)
}

func (s *LoadService) logMetrics(m tptload.LoadMetrics) {
	if m.Empty() {
		s.logger.Warn("No row counts found in %s output", s.plan.MetricsStage)
		return
	}
	if m.RowsSent != nil {
		s.logger.Info("Rows sent to RDBMS: %d", *m.RowsSent)
	}
	if m.RowsApplied != nil {
		s.logger.Info("Rows applied: %d", *m.RowsApplied)
	}
}
