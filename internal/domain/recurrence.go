package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Recurrence-specific validation errors
var (
	// ErrRecurrenceIDEmpty is returned when a recurrence ID is empty or nil.
	ErrRecurrenceIDEmpty = errors.New("recurrence ID cannot be empty")

	// ErrRecurrenceTitleEmpty is returned when a recurrence title is empty.
	ErrRecurrenceTitleEmpty = errors.New("recurrence title cannot be empty")

	// ErrRecurrenceAssigneeEmpty is returned when a recurrence has no assignee.
	ErrRecurrenceAssigneeEmpty = errors.New("recurrence assignee cannot be empty")

	// ErrRecurrenceCreatorEmpty is returned when a recurrence has no creator.
	ErrRecurrenceCreatorEmpty = errors.New("recurrence creator cannot be empty")

	// ErrRecurrenceStartDateZero is returned when a recurrence has no start date.
	ErrRecurrenceStartDateZero = errors.New("recurrence start date cannot be zero")

	// ErrRecurrenceEndBeforeStart is returned when an end date precedes the start date.
	ErrRecurrenceEndBeforeStart = errors.New("recurrence end date cannot precede start date")

	// ErrInvalidFrequency is returned when a frequency is not one of the known values.
	ErrInvalidFrequency = errors.New("invalid recurrence frequency")

	// ErrInvalidPriority is returned when a template priority is not one of the known values.
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Frequency describes how often a recurrence definition spawns tasks.
// The set is closed: there are no custom intervals.
type Frequency string

// Possible frequency values
const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// IsValid reports whether the frequency is one of the known values.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// TaskTemplate holds the task fields copied verbatim onto every task
// generated from a recurrence definition. StartTime and EndTime are
// free-form local-time strings ("09:00"), not timestamps.
type TaskTemplate struct {
	Priority  Priority `json:"priority"`
	StartTime string   `json:"start_time,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Validate checks the template fields. An empty priority is allowed and
// defaults to Medium at construction time.
func (t TaskTemplate) Validate() error {
	if t.Priority != "" && !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}

// RecurrenceDefinition is a user-authored template describing how often and
// for whom to generate tasks. Generation never mutates anything except the
// LastGeneratedAt/NextRunAt bookkeeping fields; everything else is owned by
// the edit path, which is creator-only.
type RecurrenceDefinition struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Frequency   Frequency    `json:"frequency"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	AssigneeID  uuid.UUID    `json:"assignee_id"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	Template    TaskTemplate `json:"task_template"`

	IsActive bool `json:"is_active"`

	// LastGeneratedAt and NextRunAt are advisory bookkeeping only. They are
	// never consulted for deduplication; dedup is a task-store query.
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecurrenceDefinition creates an active RecurrenceDefinition with a fresh
// ID and timestamps. An empty template priority defaults to Medium.
// Returns an error if validation fails.
func NewRecurrenceDefinition(
	title, description string,
	frequency Frequency,
	startDate time.Time,
	endDate *time.Time,
	assigneeID, creatorID uuid.UUID,
	template TaskTemplate,
) (*RecurrenceDefinition, error) {
	if template.Priority == "" {
		template.Priority = PriorityMedium
	}

	now := time.Now().UTC()
	def := &RecurrenceDefinition{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Frequency:   frequency,
		StartDate:   startDate,
		EndDate:     endDate,
		AssigneeID:  assigneeID,
		CreatorID:   creatorID,
		Template:    template,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return def, nil
}

// Validate checks if the RecurrenceDefinition has valid data.
// Returns an error if any field fails validation.
func (d *RecurrenceDefinition) Validate() error {
	if d.ID == uuid.Nil {
		return ErrRecurrenceIDEmpty
	}

	if d.Title == "" {
		return ErrRecurrenceTitleEmpty
	}

	if !d.Frequency.IsValid() {
		return ErrInvalidFrequency
	}

	if d.StartDate.IsZero() {
		return ErrRecurrenceStartDateZero
	}

	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return ErrRecurrenceEndBeforeStart
	}

	if d.AssigneeID == uuid.Nil {
		return ErrRecurrenceAssigneeEmpty
	}

	if d.CreatorID == uuid.Nil {
		return ErrRecurrenceCreatorEmpty
	}

	return d.Template.Validate()
}

// IsCreator reports whether the given user authored this definition.
// Edit, delete and toggle are restricted to the creator.
func (d *RecurrenceDefinition) IsCreator(userID uuid.UUID) bool {
	return d.CreatorID == userID
}
