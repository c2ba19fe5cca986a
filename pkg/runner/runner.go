// Package runner executes migration procedures as ordered stages and owns
// the run-level reporting: per-stage summaries, Prometheus counters, Redis
// lifecycle events and OpenTelemetry spans. Per-entity failures are
// collected and surfaced in the summary; only infrastructure errors abort
// a run.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoea-platform/zmig/pkg/db"
	"github.com/zoea-platform/zmig/pkg/events"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// EntityError records one entity that could not be migrated. The run keeps
// going; the error surfaces in the final summary.
type EntityError struct {
	Entity string
	Key    string
	Err    error
}

// StageSummary is the tally for one stage of a run.
type StageSummary struct {
	Name     string
	Migrated int
	Skipped  int
	Failed   int
	Errors   []EntityError
	Elapsed  time.Duration
}

// RecordFailure counts one failed entity and keeps its error for the
// summary.
func (s *StageSummary) RecordFailure(entity, key string, err error) {
	s.Failed++
	s.Errors = append(s.Errors, EntityError{Entity: entity, Key: key, Err: err})
}

// Result is the outcome of a full run.
type Result struct {
	RunID     string
	Procedure string
	Stages    []StageSummary
	StartedAt time.Time
	Elapsed   time.Duration
}

// Totals sums the stage tallies.
func (r Result) Totals() (migrated, skipped, failed int) {
	for _, s := range r.Stages {
		migrated += s.Migrated
		skipped += s.Skipped
		failed += s.Failed
	}
	return
}

// Clean reports whether the run had no per-entity failures.
func (r Result) Clean() bool {
	_, _, failed := r.Totals()
	return failed == 0
}

// Stage is one step of a procedure. The function fills in the summary it
// is handed; returning an error aborts the whole run.
type Stage struct {
	Name string
	Run  func(ctx context.Context, sum *StageSummary) error
}

// Runner executes procedures.
type Runner struct {
	logger    logging.Logger
	metrics   *db.RunMetrics
	publisher *events.Publisher
	tracer    trace.Tracer
}

// New creates a runner. metrics and publisher may be nil.
func New(logger logging.Logger, metrics *db.RunMetrics, publisher *events.Publisher) *Runner {
	return &Runner{
		logger:    logger,
		metrics:   metrics,
		publisher: publisher,
		tracer:    otel.Tracer("zmig/runner"),
	}
}

// Run executes the stages of a procedure in order. Stage errors are fatal;
// per-entity failures recorded in the summaries are not.
func (r *Runner) Run(ctx context.Context, procedure string, stages []Stage) (Result, error) {
	result := Result{
		RunID:     uuid.NewString(),
		Procedure: procedure,
		StartedAt: time.Now(),
	}

	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}

	log := r.logger.With(
		logging.F("procedure", procedure),
		logging.F("run_id", result.RunID))
	log.Info("run started", logging.F("stages", strings.Join(names, ",")))

	if err := r.publisher.PublishRunStarted(ctx, result.RunID, procedure, names); err != nil {
		log.Warn("could not publish run start", logging.Err(err))
	}

	ctx, span := r.tracer.Start(ctx, "run."+procedure,
		trace.WithAttributes(attribute.String("run_id", result.RunID)))
	defer span.End()

	for _, stage := range stages {
		sum, err := r.runStage(ctx, log, procedure, result.RunID, stage)
		result.Stages = append(result.Stages, sum)
		if err != nil {
			result.Elapsed = time.Since(result.StartedAt)
			r.finish(ctx, log, result, false)
			return result, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}

	result.Elapsed = time.Since(result.StartedAt)
	r.finish(ctx, log, result, true)
	return result, nil
}

func (r *Runner) runStage(ctx context.Context, log logging.Logger, procedure, runID string, stage Stage) (StageSummary, error) {
	sum := StageSummary{Name: stage.Name}
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "stage."+stage.Name)
	defer span.End()

	err := stage.Run(ctx, &sum)
	sum.Elapsed = time.Since(start)

	span.SetAttributes(
		attribute.Int("migrated", sum.Migrated),
		attribute.Int("skipped", sum.Skipped),
		attribute.Int("failed", sum.Failed))

	if err != nil {
		span.RecordError(err)
		log.Error("stage aborted", logging.F("stage", stage.Name), logging.Err(err))
		return sum, err
	}

	log.Info("stage completed",
		logging.F("stage", stage.Name),
		logging.F("migrated", sum.Migrated),
		logging.F("skipped", sum.Skipped),
		logging.F("failed", sum.Failed),
		logging.F("elapsed", sum.Elapsed.Round(time.Millisecond).String()))

	if perr := r.publisher.PublishStageCompleted(ctx, runID, procedure, stage.Name,
		sum.Migrated, sum.Skipped, sum.Failed, sum.Elapsed); perr != nil {
		log.Warn("could not publish stage completion", logging.Err(perr))
	}
	return sum, nil
}

func (r *Runner) finish(ctx context.Context, log logging.Logger, result Result, success bool) {
	migrated, skipped, failed := result.Totals()

	r.metrics.ObserveRun(result.Procedure, migrated, skipped, failed, result.Elapsed)

	if err := r.publisher.PublishRunCompleted(ctx, events.RunCompletedEvent{
		RunID:       result.RunID,
		Procedure:   result.Procedure,
		Migrated:    migrated,
		Skipped:     skipped,
		Failed:      failed,
		StartedAt:   result.StartedAt,
		CompletedAt: result.StartedAt.Add(result.Elapsed),
		Success:     success && failed == 0,
	}); err != nil {
		log.Warn("could not publish run completion", logging.Err(err))
	}

	log.Info("run finished",
		logging.F("migrated", migrated),
		logging.F("skipped", skipped),
		logging.F("failed", failed),
		logging.F("elapsed", result.Elapsed.Round(time.Millisecond).String()),
		logging.F("success", success))

	for _, stage := range result.Stages {
		for _, e := range stage.Errors {
			log.Warn("entity not migrated",
				logging.F("stage", stage.Name),
				logging.F("entity", e.Entity),
				logging.F("key", e.Key),
				logging.Err(e.Err))
		}
	}
}
