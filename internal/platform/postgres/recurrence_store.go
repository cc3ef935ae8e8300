package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/platform/logger"
	"github.com/taskloop/taskloop-api/internal/store"
)

// PostgresRecurrenceStore implements store.RecurrenceStore using PostgreSQL.
type PostgresRecurrenceStore struct {
	db store.DBTX
}

// NewPostgresRecurrenceStore creates a new PostgresRecurrenceStore.
func NewPostgresRecurrenceStore(db store.DBTX) *PostgresRecurrenceStore {
	return &PostgresRecurrenceStore{db: db}
}

// Create saves a new recurrence definition to the database.
func (s *PostgresRecurrenceStore) Create(ctx context.Context, def *domain.RecurrenceDefinition) error {
	log := logger.FromContext(ctx)

	if err := def.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(def.Template.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO recurrences (
			id, title, description, frequency, start_date, end_date,
			assignee_id, creator_id, priority, start_time, end_time, tags,
			is_active, last_generated_at, next_run_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = s.db.ExecContext(ctx, query,
		def.ID,
		def.Title,
		def.Description,
		def.Frequency,
		def.StartDate,
		def.EndDate,
		def.AssigneeID,
		def.CreatorID,
		def.Template.Priority,
		def.Template.StartTime,
		def.Template.EndTime,
		tags,
		def.IsActive,
		def.LastGeneratedAt,
		def.NextRunAt,
		def.CreatedAt,
		def.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create recurrence",
			"recurrence_id", def.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID retrieves a recurrence definition by its unique ID.
func (s *PostgresRecurrenceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceDefinition, error) {
	query := selectRecurrence + ` WHERE id = $1`

	def, err := scanRecurrence(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrRecurrenceNotFound
		}
		return nil, MapError(err)
	}
	return def, nil
}

// FindByAssignee retrieves all definitions assigned to the given user,
// most recently created first.
func (s *PostgresRecurrenceStore) FindByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*domain.RecurrenceDefinition, error) {
	query := selectRecurrence + ` WHERE assignee_id = $1 ORDER BY created_at DESC`
	return s.queryRecurrences(ctx, query, assigneeID)
}

// FindActive retrieves the generation candidates for the given instant:
// active definitions whose window [start_date, end_date] contains now.
func (s *PostgresRecurrenceStore) FindActive(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error) {
	query := selectRecurrence + `
		WHERE is_active
		  AND start_date <= $1
		  AND (end_date IS NULL OR end_date >= $1)
	`
	return s.queryRecurrences(ctx, query, now)
}

// Update saves changes to an existing definition.
func (s *PostgresRecurrenceStore) Update(ctx context.Context, def *domain.RecurrenceDefinition) error {
	log := logger.FromContext(ctx)

	if err := def.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(def.Template.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		UPDATE recurrences
		SET title = $1, description = $2, frequency = $3, start_date = $4,
		    end_date = $5, assignee_id = $6, priority = $7, start_time = $8,
		    end_time = $9, tags = $10, is_active = $11, updated_at = $12
		WHERE id = $13
	`

	result, err := s.db.ExecContext(ctx, query,
		def.Title,
		def.Description,
		def.Frequency,
		def.StartDate,
		def.EndDate,
		def.AssigneeID,
		def.Template.Priority,
		def.Template.StartTime,
		def.Template.EndTime,
		tags,
		def.IsActive,
		time.Now().UTC(),
		def.ID,
	)
	if err != nil {
		log.Error("failed to update recurrence",
			"recurrence_id", def.ID,
			"error", err)
		return MapError(err)
	}

	return CheckRowsAffected(result, "recurrence")
}

// UpdateBookkeeping persists the generation bookkeeping fields only. This is
// the single mutation the generation engine performs on definitions.
func (s *PostgresRecurrenceStore) UpdateBookkeeping(ctx context.Context, id uuid.UUID, lastGeneratedAt, nextRunAt time.Time) error {
	query := `
		UPDATE recurrences
		SET last_generated_at = $1, next_run_at = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, lastGeneratedAt, nextRunAt, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "recurrence")
}

// Delete removes a definition. Tasks already generated from it keep their
// back-reference nulled by the schema's ON DELETE SET NULL.
func (s *PostgresRecurrenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recurrences WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "recurrence")
}

const selectRecurrence = `
	SELECT id, title, description, frequency, start_date, end_date,
	       assignee_id, creator_id, priority, start_time, end_time, tags,
	       is_active, last_generated_at, next_run_at, created_at, updated_at
	FROM recurrences
`

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecurrence(row rowScanner) (*domain.RecurrenceDefinition, error) {
	var def domain.RecurrenceDefinition
	var endDate, lastGeneratedAt, nextRunAt sql.NullTime
	var tags []byte

	err := row.Scan(
		&def.ID,
		&def.Title,
		&def.Description,
		&def.Frequency,
		&def.StartDate,
		&endDate,
		&def.AssigneeID,
		&def.CreatorID,
		&def.Template.Priority,
		&def.Template.StartTime,
		&def.Template.EndTime,
		&tags,
		&def.IsActive,
		&lastGeneratedAt,
		&nextRunAt,
		&def.CreatedAt,
		&def.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if endDate.Valid {
		def.EndDate = &endDate.Time
	}
	if lastGeneratedAt.Valid {
		def.LastGeneratedAt = &lastGeneratedAt.Time
	}
	if nextRunAt.Valid {
		def.NextRunAt = &nextRunAt.Time
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &def.Template.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &def, nil
}

func (s *PostgresRecurrenceStore) queryRecurrences(ctx context.Context, query string, args ...any) ([]*domain.RecurrenceDefinition, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query recurrences", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var defs []*domain.RecurrenceDefinition
	for rows.Next() {
		def, err := scanRecurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurrence row: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return defs, nil
}
