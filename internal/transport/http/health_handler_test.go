package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/services"
)

type mockHealthService struct {
	status *services.HealthStatus
}

func (m *mockHealthService) Check(context.Context) *services.HealthStatus {
	return m.status
}

func TestHealthCheck_Healthy(t *testing.T) {
	h := NewHealthHandler(&mockHealthService{status: &services.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Services:  map[string]string{"database": "up"},
	}}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "up", status.Services["database"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	h := NewHealthHandler(&mockHealthService{status: &services.HealthStatus{
		Status:   "degraded",
		Services: map[string]string{"database": "down"},
	}}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Degraded is still a 200; the body carries the detail.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
