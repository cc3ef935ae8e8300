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

// PostgresTaskStore implements store.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// Create saves a task to the database. For generated tasks (non-nil
// RecurrenceID) the insert also writes the due_day column backing the
// partial unique index on (recurrence_id, due_day): this is the second line
// of defense against idempotence races. A racing insert comes back as
// store.ErrGeneratedTaskExists.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	// due_day is the calendar day of the due date in the location the
	// generation engine computed it in.
	var dueDay *string
	if task.RecurrenceID != nil {
		day := task.DueDate.Format("2006-01-02")
		dueDay = &day
	}

	query := `
		INSERT INTO tasks (
			id, title, description, status, priority, due_date, due_day,
			start_time, end_time, tags, assignee_id, creator_id,
			recurrence_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		dueDay,
		task.StartTime,
		task.EndTime,
		tags,
		task.AssigneeID,
		task.CreatorID,
		task.RecurrenceID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrGeneratedTaskExists
		}
		log.Error("failed to create task",
			"task_id", task.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// FindGenerated retrieves the task generated from the given recurrence whose
// due date falls within [dayStart, dayEnd). This is the generation engine's
// idempotence check.
func (s *PostgresTaskStore) FindGenerated(ctx context.Context, recurrenceID uuid.UUID, dayStart, dayEnd time.Time) (*domain.Task, error) {
	query := `
		SELECT id, title, description, status, priority, due_date,
		       start_time, end_time, tags, assignee_id, creator_id,
		       recurrence_id, completed_at, created_at, updated_at
		FROM tasks
		WHERE recurrence_id = $1
		  AND due_date >= $2
		  AND due_date < $3
		LIMIT 1
	`

	var task domain.Task
	var recurrence uuid.NullUUID
	var completedAt sql.NullTime
	var tags []byte

	err := s.db.QueryRowContext(ctx, query, recurrenceID, dayStart, dayEnd).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.StartTime,
		&task.EndTime,
		&tags,
		&task.AssigneeID,
		&task.CreatorID,
		&recurrence,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	if recurrence.Valid {
		task.RecurrenceID = &recurrence.UUID
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	return &task, nil
}
