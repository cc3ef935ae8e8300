package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password"     validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT token used for API authorization
	Token string `json:"token"`
}

// CreateRecurrenceRequest defines the payload for creating a recurrence
// definition. The authenticated caller becomes the creator; AssigneeID
// defaults to the creator when omitted.
type CreateRecurrenceRequest struct {
	Title       string     `json:"title"       validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Frequency   string     `json:"frequency"   validate:"required,oneof=Daily Weekly Monthly"`
	StartDate   time.Time  `json:"start_date"  validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=Low Medium High Urgent"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Tags        []string   `json:"tags"`
}

// UpdateRecurrenceRequest defines the payload for replacing an existing
// recurrence definition. The creator and assignee never change on update.
type UpdateRecurrenceRequest struct {
	Title       string     `json:"title"       validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Frequency   string     `json:"frequency"   validate:"required,oneof=Daily Weekly Monthly"`
	StartDate   time.Time  `json:"start_date"  validate:"required"`
	EndDate     *time.Time `json:"end_date"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=Low Medium High Urgent"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Tags        []string   `json:"tags"`
	IsActive    bool       `json:"is_active"`
}

// RecurrenceResponse represents a recurrence definition in API responses.
type RecurrenceResponse struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Frequency       string     `json:"frequency"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	AssigneeID      uuid.UUID  `json:"assignee_id"`
	CreatorID       uuid.UUID  `json:"creator_id"`
	Priority        string     `json:"priority"`
	StartTime       string     `json:"start_time,omitempty"`
	EndTime         string     `json:"end_time,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	IsActive        bool       `json:"is_active"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// GenerateResponse defines the response of the manual generation trigger.
type GenerateResponse struct {
	Message   string `json:"message"`
	Generated int    `json:"generated"`
	Skipped   int    `json:"skipped"`
}

// RunResponse represents a completed generation pass in API responses.
type RunResponse struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Generated int       `json:"generated"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

func recurrenceToResponse(def *domain.RecurrenceDefinition) RecurrenceResponse {
	return RecurrenceResponse{
		ID:              def.ID,
		Title:           def.Title,
		Description:     def.Description,
		Frequency:       string(def.Frequency),
		StartDate:       def.StartDate,
		EndDate:         def.EndDate,
		AssigneeID:      def.AssigneeID,
		CreatorID:       def.CreatorID,
		Priority:        string(def.Template.Priority),
		StartTime:       def.Template.StartTime,
		EndTime:         def.Template.EndTime,
		Tags:            def.Template.Tags,
		IsActive:        def.IsActive,
		LastGeneratedAt: def.LastGeneratedAt,
		NextRunAt:       def.NextRunAt,
		CreatedAt:       def.CreatedAt,
		UpdatedAt:       def.UpdatedAt,
	}
}

func runToResponse(run *domain.GenerationRun) RunResponse {
	return RunResponse{
		ID:        run.ID,
		StartedAt: run.StartedAt,
		EndedAt:   run.EndedAt,
		Generated: run.Generated,
		Skipped:   run.Skipped,
		Failed:    run.Failed,
	}
}
