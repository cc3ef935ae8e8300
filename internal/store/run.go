package store

import (
	"context"

	"github.com/taskloop/taskloop-api/internal/domain"
)

// GenerationRunStore persists generation pass history. The most recent run is
// the scheduler's persisted state: a crash-restart consults it to decide
// whether the current day's pass still needs to happen.
type GenerationRunStore interface {
	// Create records a completed generation pass.
	Create(ctx context.Context, run *domain.GenerationRun) error

	// GetLatest retrieves the most recently started run.
	// Returns ErrNotFound if no run has ever been recorded.
	GetLatest(ctx context.Context) (*domain.GenerationRun, error)
}
