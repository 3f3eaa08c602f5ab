package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func TestErrorToProblem_APIError(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/abc/metrics", nil)

	problem := h.ErrorToProblem(ErrMetricsNotFound, r)

	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, TypeMetricsNotFound, problem.Type)
	assert.Equal(t, "/api/v1/datasets/abc/metrics", problem.Instance)
	assert.Equal(t, "METRICS_NOT_FOUND", problem.Extensions["error_code"])
}

func TestErrorToProblem_ContextDeadline(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/upload", nil)

	problem := h.ErrorToProblem(context.DeadlineExceeded, r)

	assert.Equal(t, http.StatusGatewayTimeout, problem.Status)
	assert.Equal(t, TypeTimeout, problem.Type)
}

func TestErrorToProblem_WrappedAPIError(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)

	wrapped := fmt.Errorf("listing datasets: %w", ErrDatasetNotFound)
	problem := h.ErrorToProblem(wrapped, r)

	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, TypeDatasetNotFound, problem.Type)
}

func TestErrorToProblem_GenericError(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)

	problem := h.ErrorToProblem(fmt.Errorf("boom"), r)

	assert.Equal(t, http.StatusInternalServerError, problem.Status)
	assert.Equal(t, TypeInternal, problem.Type)
	// Internal details are never leaked to the client.
	assert.NotContains(t, problem.Detail, "boom")
}

func TestHandleError_WritesProblemJSON(t *testing.T) {
	h := newTestHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/missing", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, ErrDatasetNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeDatasetNotFound, body["type"])
	assert.Contains(t, body, "trace_id")
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	h := newTestHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	w := httptest.NewRecorder()

	h.Middleware(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProblemDetails_MarshalIncludesExtensions(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeConflict, "Conflict", "detail", "/x").
		WithExtension("retry_after", 60)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(60), body["retry_after"])
	assert.Equal(t, "Conflict", body["title"])
}
