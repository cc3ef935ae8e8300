// Package scheduler wires the generation engine to a recurring trigger: a
// cron entry firing daily at the cutoff hour, plus a boot-time catch-up pass
// driven by the persisted run history so a crash-restart cannot lose the
// day's generation.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskloop/taskloop-api/internal/generation"
	"github.com/taskloop/taskloop-api/internal/store"
)

// passTimeout bounds a single scheduled generation pass.
const passTimeout = 5 * time.Minute

// PassRunner is the slice of the generation engine the scheduler drives.
type PassRunner interface {
	// RunPass executes one generation pass at instant now.
	RunPass(ctx context.Context, now time.Time) (generation.Result, error)
}

// Scheduler owns the cron entry for the daily generation pass. It is
// constructed explicitly and owned by the process entry point; there is no
// package-level instance.
type Scheduler struct {
	cron       *cron.Cron
	engine     PassRunner
	runs       store.GenerationRunStore
	cutoffHour int
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Scheduler that fires a generation pass daily at five minutes
// past cutoffHour in loc.
func New(
	engine PassRunner,
	runs store.GenerationRunStore,
	cutoffHour int,
	loc *time.Location,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		engine:     engine,
		runs:       runs,
		cutoffHour: cutoffHour,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

// Start registers the daily cron entry and begins scheduling. If the run
// history shows no completed pass for the current day and the cutoff hour
// has already passed, a catch-up pass runs immediately. Over-triggering is
// harmless because the engine deduplicates, while a process that was down
// across the cutoff would otherwise wait a full day.
func (s *Scheduler) Start(ctx context.Context) error {
	// Five past the hour leaves room for clock skew around the cutoff.
	spec := fmt.Sprintf("5 %d * * *", s.cutoffHour)
	if _, err := s.cron.AddFunc(spec, s.runScheduledPass); err != nil {
		return fmt.Errorf("failed to register generation cron entry: %w", err)
	}

	if s.needsCatchUp(ctx) {
		s.logger.Info("no generation run recorded for today, running catch-up pass")
		s.runScheduledPass()
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"cron_spec", spec,
		"timezone", s.loc.String())
	return nil
}

// Stop halts scheduling and waits for any in-flight pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runScheduledPass executes one pass with a bounded context. Pass failures
// are logged, never raised: the next trigger retries naturally.
func (s *Scheduler) runScheduledPass() {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	now := s.now()
	result, err := s.engine.RunPass(ctx, now)
	if err != nil {
		s.logger.Error("scheduled generation pass failed", "error", err)
		return
	}

	s.logger.Info("scheduled generation pass finished",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed)
}

// needsCatchUp reports whether the current day's pass was missed: the cutoff
// hour has passed and the latest recorded run started on an earlier day.
func (s *Scheduler) needsCatchUp(ctx context.Context) bool {
	now := s.now().In(s.loc)
	if now.Hour() < s.cutoffHour {
		return false
	}

	latest, err := s.runs.GetLatest(ctx)
	if err != nil {
		if store.IsNotFoundError(err) {
			return true
		}
		s.logger.Warn("failed to load run history, skipping catch-up check", "error", err)
		return false
	}

	ly, lm, ld := latest.StartedAt.In(s.loc).Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}
