package postgres

import (
	"context"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/platform/logger"
	"github.com/taskloop/taskloop-api/internal/store"
)

// PostgresRunStore implements store.GenerationRunStore using PostgreSQL.
type PostgresRunStore struct {
	db store.DBTX
}

// NewPostgresRunStore creates a new PostgresRunStore.
func NewPostgresRunStore(db store.DBTX) *PostgresRunStore {
	return &PostgresRunStore{db: db}
}

// Create records a completed generation pass.
func (s *PostgresRunStore) Create(ctx context.Context, run *domain.GenerationRun) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO generation_runs (id, started_at, ended_at, generated, skipped, failed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt,
		run.EndedAt,
		run.Generated,
		run.Skipped,
		run.Failed,
	)
	if err != nil {
		log.Error("failed to record generation run",
			"run_id", run.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetLatest retrieves the most recently started run.
func (s *PostgresRunStore) GetLatest(ctx context.Context) (*domain.GenerationRun, error) {
	query := `
		SELECT id, started_at, ended_at, generated, skipped, failed
		FROM generation_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run domain.GenerationRun
	err := s.db.QueryRowContext(ctx, query).Scan(
		&run.ID,
		&run.StartedAt,
		&run.EndedAt,
		&run.Generated,
		&run.Skipped,
		&run.Failed,
	)
	if err != nil {
		return nil, MapError(err)
	}

	return &run, nil
}
