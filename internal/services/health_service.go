package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"retailpulse/internal/config"
)

// HealthStatus is the health endpoint response.
type HealthStatus struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	GoVersion     string            `json:"go_version"`
	Services      map[string]string `json:"services"`
}

// HealthService reports service and dependency health.
type HealthService struct {
	store     Store
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates the health service.
func NewHealthService(st Store, logger *slog.Logger) *HealthService {
	return &HealthService{
		store:     st,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Check pings the database and assembles the status report. A failing
// dependency degrades the status instead of failing the endpoint.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       config.AppVersion,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		Services:      map[string]string{"database": "up"},
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "database ping failed", slog.String("error", err.Error()))
		status.Status = "degraded"
		status.Services["database"] = "down"
	}

	return status
}
