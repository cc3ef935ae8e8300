package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop/taskloop-api/internal/api/shared"
	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/generation"
)

func newTestDefinition(t *testing.T, creatorID uuid.UUID) *domain.RecurrenceDefinition {
	t.Helper()

	def, err := domain.NewRecurrenceDefinition(
		"Water the plants",
		"",
		domain.FrequencyDaily,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		nil,
		creatorID,
		creatorID,
		domain.TaskTemplate{},
	)
	require.NoError(t, err)
	return def
}

// authedRequest builds a request carrying the authenticated user ID and,
// when id is non-nil, a chi route context with the {id} parameter set.
func authedRequest(method, path string, userID uuid.UUID, id *uuid.UUID, body any) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)

	if id != nil {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", id.String())
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}

	return req.WithContext(ctx)
}

func TestRecurrenceHandler_List(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	def := newTestDefinition(t, userID)
	other := newTestDefinition(t, uuid.New())
	handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(def, other), nil)

	w := httptest.NewRecorder()
	handler.List(w, authedRequest(http.MethodGet, "/recurrences", userID, nil, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp []RecurrenceResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, def.ID, resp[0].ID)
}

func TestRecurrenceHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("assignee defaults to creator", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		recurrences := generation.NewMockRecurrenceStore()
		handler := NewRecurrenceHandler(recurrences, nil)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/recurrences", userID, nil, CreateRecurrenceRequest{
			Title:     "Take out the trash",
			Frequency: "Weekly",
			StartDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		}))

		require.Equal(t, http.StatusCreated, w.Code)
		var resp RecurrenceResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, userID, resp.CreatorID)
		assert.Equal(t, userID, resp.AssigneeID)
		assert.Equal(t, "Medium", resp.Priority)
		assert.True(t, resp.IsActive)
	})

	t.Run("rejects unknown frequency", func(t *testing.T) {
		t.Parallel()

		handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(), nil)

		w := httptest.NewRecorder()
		handler.Create(w, authedRequest(http.MethodPost, "/recurrences", uuid.New(), nil, CreateRecurrenceRequest{
			Title:     "Take out the trash",
			Frequency: "Fortnightly",
			StartDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecurrenceHandler_Update(t *testing.T) {
	t.Parallel()

	t.Run("creator can update", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		def := newTestDefinition(t, userID)
		handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(def), nil)

		w := httptest.NewRecorder()
		handler.Update(w, authedRequest(http.MethodPut, "/recurrences/"+def.ID.String(), userID, &def.ID, UpdateRecurrenceRequest{
			Title:     "Water the plants twice",
			Frequency: "Monthly",
			StartDate: def.StartDate,
			IsActive:  false,
		}))

		require.Equal(t, http.StatusOK, w.Code)
		var resp RecurrenceResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Water the plants twice", resp.Title)
		assert.Equal(t, "Monthly", resp.Frequency)
		assert.False(t, resp.IsActive)
	})

	t.Run("non-creator is forbidden", func(t *testing.T) {
		t.Parallel()

		def := newTestDefinition(t, uuid.New())
		handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(def), nil)

		w := httptest.NewRecorder()
		handler.Update(w, authedRequest(http.MethodPut, "/recurrences/"+def.ID.String(), uuid.New(), &def.ID, UpdateRecurrenceRequest{
			Title:     "Hijacked",
			Frequency: "Daily",
			StartDate: def.StartDate,
			IsActive:  true,
		}))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRecurrenceHandler_Toggle(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	def := newTestDefinition(t, userID)
	require.True(t, def.IsActive)
	handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(def), nil)

	w := httptest.NewRecorder()
	handler.Toggle(w, authedRequest(http.MethodPost, "/recurrences/"+def.ID.String()+"/toggle", userID, &def.ID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp RecurrenceResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.IsActive)
}

func TestRecurrenceHandler_Delete(t *testing.T) {
	t.Parallel()

	t.Run("creator can delete", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		def := newTestDefinition(t, userID)
		recurrences := generation.NewMockRecurrenceStore(def)
		handler := NewRecurrenceHandler(recurrences, nil)

		w := httptest.NewRecorder()
		handler.Delete(w, authedRequest(http.MethodDelete, "/recurrences/"+def.ID.String(), userID, &def.ID, nil))
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		handler.Get(w, authedRequest(http.MethodGet, "/recurrences/"+def.ID.String(), userID, &def.ID, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(), nil)
		missing := uuid.New()

		w := httptest.NewRecorder()
		handler.Delete(w, authedRequest(http.MethodDelete, "/recurrences/"+missing.String(), uuid.New(), &missing, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		handler := NewRecurrenceHandler(generation.NewMockRecurrenceStore(), nil)

		req := httptest.NewRequest(http.MethodDelete, "/recurrences/not-a-uuid", nil)
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, uuid.New())
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", "not-a-uuid")
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

		w := httptest.NewRecorder()
		handler.Delete(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
