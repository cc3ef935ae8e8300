package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop-api/internal/api/shared"
	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/platform/logger"
	"github.com/taskloop/taskloop-api/internal/store"
)

// RecurrenceHandler handles recurrence-definition HTTP requests.
type RecurrenceHandler struct {
	recurrenceStore store.RecurrenceStore
	logger          *slog.Logger
}

// NewRecurrenceHandler creates a new RecurrenceHandler.
func NewRecurrenceHandler(recurrenceStore store.RecurrenceStore, logger *slog.Logger) *RecurrenceHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecurrenceHandler{
		recurrenceStore: recurrenceStore,
		logger:          logger.With(slog.String("component", "recurrence_handler")),
	}
}

// List handles GET /recurrences requests. It returns the definitions
// assigned to the authenticated user, most recent first.
func (h *RecurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	defs, err := h.recurrenceStore.FindByAssignee(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list recurrences")
		return
	}

	responses := make([]RecurrenceResponse, 0, len(defs))
	for _, def := range defs {
		responses = append(responses, recurrenceToResponse(def))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /recurrences/{id} requests. Only the creator or the
// assignee may view a definition.
func (h *RecurrenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	def, err := h.recurrenceStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if def.CreatorID != userID && def.AssigneeID != userID {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recurrenceToResponse(def))
}

// Create handles POST /recurrences requests. The authenticated user becomes
// the creator; the assignee defaults to the creator when not given.
func (h *RecurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateRecurrenceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	assigneeID := userID
	if req.AssigneeID != nil && *req.AssigneeID != uuid.Nil {
		assigneeID = *req.AssigneeID
	}

	def, err := domain.NewRecurrenceDefinition(
		req.Title,
		req.Description,
		domain.Frequency(req.Frequency),
		req.StartDate,
		req.EndDate,
		assigneeID,
		userID,
		domain.TaskTemplate{
			Priority:  domain.Priority(req.Priority),
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Tags:      req.Tags,
		},
	)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid recurrence data")
		return
	}

	if err := h.recurrenceStore.Create(r.Context(), def); err != nil {
		HandleAPIError(w, r, err, "Failed to create recurrence")
		return
	}

	log.Debug("recurrence created",
		slog.String("recurrence_id", def.ID.String()),
		slog.String("creator_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, recurrenceToResponse(def))
}

// Update handles PUT /recurrences/{id} requests. Creator-only. Already
// generated tasks are not touched.
func (h *RecurrenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateRecurrenceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	def, err := h.recurrenceStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !def.IsCreator(userID) {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	def.Title = req.Title
	def.Description = req.Description
	def.Frequency = domain.Frequency(req.Frequency)
	def.StartDate = req.StartDate
	def.EndDate = req.EndDate
	def.IsActive = req.IsActive
	def.Template = domain.TaskTemplate{
		Priority:  domain.Priority(req.Priority),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Tags:      req.Tags,
	}
	if def.Template.Priority == "" {
		def.Template.Priority = domain.PriorityMedium
	}

	if err := def.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid recurrence data")
		return
	}

	if err := h.recurrenceStore.Update(r.Context(), def); err != nil {
		HandleAPIError(w, r, err, "Failed to update recurrence")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recurrenceToResponse(def))
}

// Toggle handles POST /recurrences/{id}/toggle requests. Creator-only. It
// flips the active flag without touching the rest of the definition.
func (h *RecurrenceHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	def, err := h.recurrenceStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !def.IsCreator(userID) {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	def.IsActive = !def.IsActive
	if err := h.recurrenceStore.Update(r.Context(), def); err != nil {
		HandleAPIError(w, r, err, "Failed to update recurrence")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recurrenceToResponse(def))
}

// Delete handles DELETE /recurrences/{id} requests. Creator-only. Tasks
// already generated from the definition are kept.
func (h *RecurrenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	def, err := h.recurrenceStore.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !def.IsCreator(userID) {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	if err := h.recurrenceStore.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete recurrence")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
