package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/store"
)

// Result holds the aggregate counts of one generation pass.
type Result struct {
	// Generated is the number of tasks created by this pass.
	Generated int `json:"generated"`

	// Skipped counts candidates that needed no task: already generated for
	// the day, not yet due, or lost an idempotence race to a concurrent pass.
	Skipped int `json:"skipped"`

	// Failed counts candidates whose processing errored. Failures never
	// abort the pass; they are logged and the remaining candidates proceed.
	Failed int `json:"failed"`
}

// Engine performs generation passes. It is re-entrant: concurrent or repeated
// invocations are safe because deduplication is a task-store existence check
// backed by a store-level uniqueness constraint, not engine state.
type Engine struct {
	recurrences store.RecurrenceStore
	tasks       store.TaskStore
	runs        store.GenerationRunStore
	cutoffHour  int
	loc         *time.Location
	logger      *slog.Logger
}

// NewEngine creates a generation engine. cutoffHour is the local hour before
// which RunPass is a no-op; loc is the location the cutoff and due dates are
// evaluated in.
func NewEngine(
	recurrences store.RecurrenceStore,
	tasks store.TaskStore,
	runs store.GenerationRunStore,
	cutoffHour int,
	loc *time.Location,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		recurrences: recurrences,
		tasks:       tasks,
		runs:        runs,
		cutoffHour:  cutoffHour,
		loc:         loc,
		logger:      logger,
	}
}

// RunPass executes one generation pass at instant now. Both the scheduled
// trigger and the manual trigger call this same function.
//
// Before the cutoff hour the pass returns zero counts without touching any
// store. Otherwise every active, in-window recurrence definition is processed
// independently: compute the due date, skip if a generated task already
// exists for that calendar day, create the task and update the definition's
// bookkeeping otherwise. A failure on one candidate never blocks the rest.
//
// Only a failure of the candidate-selection query itself is returned as an
// error; nothing has been mutated at that point, so the next invocation
// retries naturally.
func (e *Engine) RunPass(ctx context.Context, now time.Time) (Result, error) {
	var result Result

	if now.In(e.loc).Hour() < e.cutoffHour {
		e.logger.Debug("generation pass before cutoff hour, nothing to do",
			"hour", now.In(e.loc).Hour(),
			"cutoff_hour", e.cutoffHour)
		return result, nil
	}

	candidates, err := e.recurrences.FindActive(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to load generation candidates: %w", err)
	}

	e.logger.Info("starting generation pass",
		"candidates", len(candidates))

	for _, def := range candidates {
		e.processCandidate(ctx, def, now, &result)
	}

	e.recordRun(ctx, now, result)

	e.logger.Info("generation pass completed",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

// processCandidate handles one recurrence definition and updates the pass
// counters. Errors are logged with enough context to diagnose the definition
// and counted as failures, never propagated.
func (e *Engine) processCandidate(
	ctx context.Context,
	def *domain.RecurrenceDefinition,
	now time.Time,
	result *Result,
) {
	logger := e.logger.With(
		"recurrence_id", def.ID,
		"title", def.Title,
		"frequency", def.Frequency,
	)

	dueDate, err := NextDueDate(def, now, e.loc)
	if err != nil {
		if err == ErrNotYetDue {
			logger.Debug("recurrence not yet due", "start_date", def.StartDate)
			result.Skipped++
			return
		}
		logger.Error("failed to compute due date", "error", err)
		result.Failed++
		return
	}

	dayStart, dayEnd := dayWindow(dueDate)
	existing, err := e.tasks.FindGenerated(ctx, def.ID, dayStart, dayEnd)
	if err != nil && !store.IsNotFoundError(err) {
		logger.Error("failed to check for existing generated task", "error", err)
		result.Failed++
		return
	}
	if existing != nil {
		logger.Debug("task already generated for due date",
			"due_date", dueDate,
			"task_id", existing.ID)
		result.Skipped++
		return
	}

	task, err := domain.NewGeneratedTask(def, dueDate)
	if err != nil {
		logger.Error("recurrence produced an invalid task", "error", err)
		result.Failed++
		return
	}

	if err := e.tasks.Create(ctx, task); err != nil {
		if store.IsDuplicateError(err) {
			// A concurrent pass won the race between our existence check and
			// this insert. The task exists, which is all that matters.
			logger.Debug("lost idempotence race, task already created",
				"due_date", dueDate)
			result.Skipped++
			return
		}
		logger.Error("failed to create generated task", "error", err)
		result.Failed++
		return
	}

	if err := e.recurrences.UpdateBookkeeping(ctx, def.ID, now.UTC(), dueDate); err != nil {
		// The task was created, so this still counts as generated. The
		// bookkeeping fields are advisory and will be corrected next pass.
		logger.Warn("failed to update recurrence bookkeeping", "error", err)
	}

	logger.Info("generated task",
		"task_id", task.ID,
		"due_date", dueDate,
		"assignee_id", task.AssigneeID)
	result.Generated++
}

// recordRun persists the pass outcome. Run history is advisory scheduling
// state; a write failure is logged, not surfaced.
func (e *Engine) recordRun(ctx context.Context, startedAt time.Time, result Result) {
	run := domain.NewGenerationRun(startedAt.UTC(), result.Generated, result.Skipped, result.Failed)
	if err := e.runs.Create(ctx, run); err != nil {
		e.logger.Warn("failed to record generation run", "error", err)
	}
}
