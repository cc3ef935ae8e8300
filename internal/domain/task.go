package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskAssigneeEmpty is returned when a task has no assignee.
	ErrTaskAssigneeEmpty = errors.New("task assignee cannot be empty")

	// ErrTaskCreatorEmpty is returned when a task has no creator.
	ErrTaskCreatorEmpty = errors.New("task creator cannot be empty")

	// ErrTaskDueDateZero is returned when a task has no due date.
	ErrTaskDueDateZero = errors.New("task due date cannot be zero")

	// ErrInvalidTaskStatus is returned when a status is not one of the known values.
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// Priority represents the urgency of a task.
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// IsValid reports whether the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TaskStatus represents the lifecycle state of a task. Status transitions are
// owned by the task CRUD path; generation only ever writes TaskStatusPending.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is a concrete, time-stamped work item. A task spawned by the
// generation engine carries a non-nil RecurrenceID back-reference; at most
// one generated task exists per (RecurrenceID, calendar day of DueDate).
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
	StartTime   string     `json:"start_time,omitempty"`
	EndTime     string     `json:"end_time,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	AssigneeID  uuid.UUID  `json:"assignee_id"`
	CreatorID   uuid.UUID  `json:"creator_id"`

	// RecurrenceID links a generated task to the definition that spawned it.
	// Nil for ordinary, manually created tasks.
	RecurrenceID *uuid.UUID `json:"recurrence_id,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewGeneratedTask builds a pending task from a recurrence definition and a
// computed due date. The creator is deliberately set to the assignee, not the
// definition's creator: generated tasks are self-assigned work items.
func NewGeneratedTask(def *RecurrenceDefinition, dueDate time.Time) (*Task, error) {
	now := time.Now().UTC()
	recurrenceID := def.ID

	task := &Task{
		ID:           uuid.New(),
		Title:        def.Title,
		Description:  def.Description,
		Status:       TaskStatusPending,
		Priority:     def.Template.Priority,
		DueDate:      dueDate,
		StartTime:    def.Template.StartTime,
		EndTime:      def.Template.EndTime,
		Tags:         def.Template.Tags,
		AssigneeID:   def.AssigneeID,
		CreatorID:    def.AssigneeID,
		RecurrenceID: &recurrenceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if t.DueDate.IsZero() {
		return ErrTaskDueDateZero
	}

	if t.AssigneeID == uuid.Nil {
		return ErrTaskAssigneeEmpty
	}

	if t.CreatorID == uuid.Nil {
		return ErrTaskCreatorEmpty
	}

	return nil
}
