package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskloop/taskloop-api/internal/api/shared"
	"github.com/taskloop/taskloop-api/internal/generation"
	"github.com/taskloop/taskloop-api/internal/store"
)

// PassRunner is the slice of the generation engine the handler needs.
type PassRunner interface {
	RunPass(ctx context.Context, now time.Time) (generation.Result, error)
}

// GenerationHandler handles the manual generation trigger and run history.
type GenerationHandler struct {
	engine PassRunner
	runs   store.GenerationRunStore
	logger *slog.Logger
	now    func() time.Time
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(engine PassRunner, runs store.GenerationRunStore, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationHandler{
		engine: engine,
		runs:   runs,
		logger: logger.With(slog.String("component", "generation_handler")),
		now:    time.Now,
	}
}

// Trigger handles POST /recurrences/generate requests. It runs one
// generation pass immediately and reports the counts. Before the daily
// cutoff the pass is a no-op and both counts are zero.
func (h *GenerationHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	h.logger.Info("manual generation triggered",
		slog.String("user_id", userID.String()))

	result, err := h.engine.RunPass(r.Context(), h.now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate recurring tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{
		Message:   "Recurring task generation completed",
		Generated: result.Generated,
		Skipped:   result.Skipped,
	})
}

// LatestRun handles GET /recurrences/runs/latest requests. It returns the
// most recent completed pass, or 404 when no pass has run yet.
func (h *GenerationHandler) LatestRun(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	run, err := h.runs.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "No generation run recorded yet")
			return
		}
		HandleAPIError(w, r, err, "Failed to load latest generation run")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, runToResponse(run))
}
