package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/generation"
)

type stubPassRunner struct {
	result generation.Result
	err    error
	calls  int
}

func (s *stubPassRunner) RunPass(ctx context.Context, now time.Time) (generation.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestGenerationHandler_Trigger(t *testing.T) {
	t.Parallel()

	t.Run("reports counts", func(t *testing.T) {
		t.Parallel()

		runner := &stubPassRunner{result: generation.Result{Generated: 3, Skipped: 2, Failed: 0}}
		handler := NewGenerationHandler(runner, generation.NewMockRunStore(), nil)

		w := httptest.NewRecorder()
		handler.Trigger(w, authedRequest(http.MethodPost, "/recurrences/generate", uuid.New(), nil, nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp GenerateResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, 3, resp.Generated)
		assert.Equal(t, 2, resp.Skipped)
		assert.NotEmpty(t, resp.Message)
		assert.Equal(t, 1, runner.calls)
	})

	t.Run("fatal pass failure returns generic 500", func(t *testing.T) {
		t.Parallel()

		runner := &stubPassRunner{err: errors.New("connection refused to db host 10.0.0.7")}
		handler := NewGenerationHandler(runner, generation.NewMockRunStore(), nil)

		w := httptest.NewRecorder()
		handler.Trigger(w, authedRequest(http.MethodPost, "/recurrences/generate", uuid.New(), nil, nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.7")
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		t.Parallel()

		runner := &stubPassRunner{}
		handler := NewGenerationHandler(runner, generation.NewMockRunStore(), nil)

		w := httptest.NewRecorder()
		handler.Trigger(w, httptest.NewRequest(http.MethodPost, "/recurrences/generate", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, runner.calls)
	})
}

func TestGenerationHandler_LatestRun(t *testing.T) {
	t.Parallel()

	t.Run("returns most recent run", func(t *testing.T) {
		t.Parallel()

		runs := generation.NewMockRunStore()
		run := domain.NewGenerationRun(time.Now().UTC().Add(-time.Minute), 4, 1, 0)
		require.NoError(t, runs.Create(context.Background(), run))

		handler := NewGenerationHandler(&stubPassRunner{}, runs, nil)

		w := httptest.NewRecorder()
		handler.LatestRun(w, authedRequest(http.MethodGet, "/recurrences/runs/latest", uuid.New(), nil, nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp RunResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, run.ID, resp.ID)
		assert.Equal(t, 4, resp.Generated)
	})

	t.Run("404 when no run recorded", func(t *testing.T) {
		t.Parallel()

		handler := NewGenerationHandler(&stubPassRunner{}, generation.NewMockRunStore(), nil)

		w := httptest.NewRecorder()
		handler.LatestRun(w, authedRequest(http.MethodGet, "/recurrences/runs/latest", uuid.New(), nil, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
