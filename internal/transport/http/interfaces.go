package http

import (
	"context"
	"io"

	"retailpulse/internal/services"
	"retailpulse/pkg/contracts/domain"
)

// DatasetServiceInterface is the dataset surface the handlers depend on.
type DatasetServiceInterface interface {
	Upload(ctx context.Context, content []byte, filename string) (*services.UploadResult, error)
	UploadSample(ctx context.Context) (*services.UploadResult, error)
	List(ctx context.Context, skip, limit int) ([]domain.DatasetSummary, int, error)
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	Delete(ctx context.Context, id string) error
	Metrics(ctx context.Context, id string) (*domain.Metrics, error)
}

// InsightServiceInterface serves narrative reports.
type InsightServiceInterface interface {
	Insights(ctx context.Context, datasetID string, refresh bool) (*domain.InsightReport, error)
}

// HealthServiceInterface reports service health.
type HealthServiceInterface interface {
	Check(ctx context.Context) *services.HealthStatus
}

// MetricsExporter renders metrics for download.
type MetricsExporter interface {
	WriteCSV(w io.Writer, d *domain.Dataset, m *domain.Metrics) error
	WriteXLSX(w io.Writer, d *domain.Dataset, m *domain.Metrics) error
}
