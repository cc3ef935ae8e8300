package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskloop/taskloop-api/internal/domain"
)

// TaskStore defines the slice of task persistence this subsystem consumes.
// Full task CRUD lives behind the out-of-scope task API; generation only
// creates tasks and probes for existing generated ones.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrGeneratedTaskExists if the task carries a recurrence
	// back-reference and a generated task already exists for the same
	// recurrence and calendar day.
	Create(ctx context.Context, task *domain.Task) error

	// FindGenerated retrieves the task generated from the given recurrence
	// whose due date falls within [dayStart, dayEnd). This is the idempotence
	// check: the window is one calendar day wide to tolerate the normalized
	// time-of-day on generated due dates.
	// Returns ErrTaskNotFound if no such task exists.
	FindGenerated(ctx context.Context, recurrenceID uuid.UUID, dayStart, dayEnd time.Time) (*domain.Task, error)
}
