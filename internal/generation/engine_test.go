package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/store"
)

const testCutoffHour = 21

func newTestEngine(recurrences *MockRecurrenceStore, tasks *MockTaskStore, runs *MockRunStore) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return NewEngine(recurrences, tasks, runs, testCutoffHour, time.UTC, logger)
}

func TestEngine_RunPass_WindowGate(t *testing.T) {
	t.Parallel()

	// Wednesday 20:59, one minute before the cutoff.
	now := time.Date(2025, time.June, 11, 20, 59, 0, 0, time.UTC)

	recurrences := NewMockRecurrenceStore(newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -1, 0)))
	recurrences.FindActiveFn = func(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error) {
		t.Error("candidate selection must not run before the cutoff hour")
		return nil, nil
	}
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()

	result, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Empty(t, tasks.Tasks())
	assert.Empty(t, runs.Runs())
}

func TestEngine_RunPass_Idempotence(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)
	def := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -1, 0))

	recurrences := NewMockRecurrenceStore(def)
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()
	engine := newTestEngine(recurrences, tasks, runs)

	first, err := engine.RunPass(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Generated: 1}, first)

	// Same store state, same now: the existing task must be detected.
	second, err := engine.RunPass(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, second)

	require.Len(t, tasks.Tasks(), 1)
}

func TestEngine_RunPass_LostRaceCountsAsSkip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)
	def := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -1, 0))

	recurrences := NewMockRecurrenceStore(def)
	runs := NewMockRunStore()

	// The existence check sees nothing, but the insert hits the uniqueness
	// constraint, as when a concurrent pass wrote between check and insert.
	tasks := NewMockTaskStore()
	tasks.FindFn = func(ctx context.Context, recurrenceID uuid.UUID, dayStart, dayEnd time.Time) (*domain.Task, error) {
		return nil, store.ErrTaskNotFound
	}
	tasks.CreateFn = func(ctx context.Context, task *domain.Task) error {
		return store.ErrGeneratedTaskExists
	}

	result, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, result)
}

func TestEngine_RunPass_PartialFailureIsolation(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	first := newTestDefinition(t, domain.FrequencyDaily, start)
	second := newTestDefinition(t, domain.FrequencyDaily, start)
	second.Title = "doomed"
	third := newTestDefinition(t, domain.FrequencyDaily, start)

	recurrences := NewMockRecurrenceStore(first, second, third)
	runs := NewMockRunStore()

	tasks := NewMockTaskStore()
	defaultCreate := tasks.CreateFn
	tasks.CreateFn = func(ctx context.Context, task *domain.Task) error {
		if task.Title == "doomed" {
			return errors.New("write failed")
		}
		return defaultCreate(ctx, task)
	}

	result, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, tasks.Tasks(), 2)
}

func TestEngine_RunPass_NotYetDueIsSkipped(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)

	// Active but starting two weeks out; candidate selection includes it only
	// once startDate <= now, so force it in to exercise the calculator bound.
	def := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, 0, 14))
	recurrences := NewMockRecurrenceStore(def)
	recurrences.FindActiveFn = func(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error) {
		return []*domain.RecurrenceDefinition{def}, nil
	}
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()

	result, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1}, result)
	assert.Empty(t, tasks.Tasks())
}

func TestEngine_RunPass_EndedDefinitionExcluded(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)

	ended := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -2, 0))
	endDate := now.AddDate(0, -1, 0)
	ended.EndDate = &endDate

	inactive := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -2, 0))
	inactive.IsActive = false

	recurrences := NewMockRecurrenceStore(ended, inactive)
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()

	result, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Empty(t, tasks.Tasks())
}

func TestEngine_RunPass_CandidateSelectionFailureIsFatal(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)

	recurrences := NewMockRecurrenceStore()
	recurrences.FindActiveFn = func(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error) {
		return nil, errors.New("connection refused")
	}
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()

	_, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load generation candidates")
	assert.Empty(t, runs.Runs())
}

func TestEngine_RunPass_RecordsRunAndBookkeeping(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)
	def := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -1, 0))

	recurrences := NewMockRecurrenceStore(def)
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()

	_, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)
	require.NoError(t, err)

	require.NotNil(t, def.LastGeneratedAt)
	assert.Equal(t, now.UTC(), *def.LastGeneratedAt)
	require.NotNil(t, def.NextRunAt)
	assert.Equal(t, time.Date(2025, time.June, 12, 12, 0, 0, 0, time.UTC), *def.NextRunAt)

	recorded := runs.Runs()
	require.Len(t, recorded, 1)
	assert.Equal(t, 1, recorded[0].Generated)
	assert.Equal(t, 0, recorded[0].Skipped)
	assert.Equal(t, now.UTC(), recorded[0].StartedAt)
}

// TestEngine_RunPass_WeeklyScenario is the full path: a weekly recurrence
// created four weeks ago, run on a Wednesday evening with an empty task
// store, yields exactly one self-assigned pending task due next Wednesday.
func TestEngine_RunPass_WeeklyScenario(t *testing.T) {
	t.Parallel()

	// Wednesday 2025-06-11 21:05; the Monday four weeks earlier is May 12.
	now := time.Date(2025, time.June, 11, 21, 5, 0, 0, time.UTC)
	start := time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, start.Weekday())

	assignee := uuid.New()
	def, err := domain.NewRecurrenceDefinition(
		"weekly report",
		"compile the team status report",
		domain.FrequencyWeekly,
		start,
		nil,
		assignee,
		uuid.New(),
		domain.TaskTemplate{Priority: domain.PriorityHigh, StartTime: "09:00", EndTime: "10:00"},
	)
	require.NoError(t, err)

	recurrences := NewMockRecurrenceStore(def)
	tasks := NewMockTaskStore()
	runs := NewMockRunStore()

	result, err := newTestEngine(recurrences, tasks, runs).RunPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, Result{Generated: 1}, result)

	created := tasks.Tasks()
	require.Len(t, created, 1)
	task := created[0]

	assert.Equal(t, time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC), task.DueDate)
	assert.Equal(t, time.Wednesday, task.DueDate.Weekday())
	assert.Equal(t, "weekly report", task.Title)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, "09:00", task.StartTime)
	assert.Equal(t, assignee, task.AssigneeID)
	assert.Equal(t, assignee, task.CreatorID)
	require.NotNil(t, task.RecurrenceID)
	assert.Equal(t, def.ID, *task.RecurrenceID)
}
