package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskloop/taskloop-api/internal/domain"
)

// RecurrenceStore defines the interface for recurrence definition persistence.
type RecurrenceStore interface {
	// Create saves a new recurrence definition to the store.
	// It handles domain validation internally.
	// Returns validation errors wrapped in ErrInvalidEntity if data is invalid.
	Create(ctx context.Context, def *domain.RecurrenceDefinition) error

	// GetByID retrieves a recurrence definition by its unique ID.
	// Returns ErrRecurrenceNotFound if the definition does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceDefinition, error)

	// FindByAssignee retrieves all definitions assigned to the given user,
	// most recently created first. Returns an empty slice if none match.
	FindByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*domain.RecurrenceDefinition, error)

	// FindActive retrieves the generation candidates for the given instant:
	// definitions that are active, have started, and have not ended.
	// Returns an empty slice if none match.
	FindActive(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error)

	// Update saves changes to an existing definition.
	// Returns ErrRecurrenceNotFound if the definition does not exist.
	Update(ctx context.Context, def *domain.RecurrenceDefinition) error

	// UpdateBookkeeping persists the generation bookkeeping fields only.
	// These are the sole fields the generation engine is allowed to mutate.
	// Returns ErrRecurrenceNotFound if the definition does not exist.
	UpdateBookkeeping(ctx context.Context, id uuid.UUID, lastGeneratedAt, nextRunAt time.Time) error

	// Delete removes a definition. Already-generated tasks are not retracted.
	// Returns ErrRecurrenceNotFound if the definition does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
