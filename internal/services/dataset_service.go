package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"retailpulse/internal/cleaning"
	"retailpulse/internal/config"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/ingestion"
	"retailpulse/internal/kpi"
	"retailpulse/internal/store"
	"retailpulse/pkg/contracts/domain"
)

// Store is the persistence surface the services need. *store.Store
// implements it; tests may substitute their own.
type Store interface {
	SaveDataset(ctx context.Context, d *domain.Dataset) error
	GetDataset(ctx context.Context, id string) (*domain.Dataset, error)
	ListDatasets(ctx context.Context, skip, limit int) ([]domain.DatasetSummary, int, error)
	DeleteDataset(ctx context.Context, id string) error
	SaveMetrics(ctx context.Context, datasetID string, m *domain.Metrics) error
	LatestMetrics(ctx context.Context, datasetID string) (*domain.Metrics, error)
	SaveInsights(ctx context.Context, datasetID string, r *domain.InsightReport) error
	LatestInsights(ctx context.Context, datasetID string) (*domain.InsightReport, error)
	Ping(ctx context.Context) error
}

// UploadResult summarizes one completed upload for the API response.
type UploadResult struct {
	DatasetID    string                 `json:"dataset_id"`
	Filename     string                 `json:"filename"`
	FileType     string                 `json:"file_type"`
	OriginalRows int                    `json:"original_rows"`
	CleanedRows  int                    `json:"cleaned_rows"`
	RowsRemoved  int                    `json:"rows_removed"`
	RemovalRate  float64                `json:"removal_rate"`
	Steps        []domain.CleaningStep  `json:"cleaning_steps"`
	Metrics      *domain.SummaryMetrics `json:"summary,omitempty"`
}

// DatasetService orchestrates the upload pipeline and dataset access.
type DatasetService struct {
	loader     *ingestion.Loader
	pipeline   *cleaning.Pipeline
	calculator *kpi.Calculator
	store      Store
	metrics    *infrastructure.Metrics
	sampleRows int
	logger     *slog.Logger
}

// NewDatasetService creates the dataset service with its collaborators.
func NewDatasetService(
	loader *ingestion.Loader,
	pipeline *cleaning.Pipeline,
	calculator *kpi.Calculator,
	st Store,
	metrics *infrastructure.Metrics,
	sampleRows int,
	logger *slog.Logger,
) *DatasetService {
	return &DatasetService{
		loader:     loader,
		pipeline:   pipeline,
		calculator: calculator,
		store:      st,
		metrics:    metrics,
		sampleRows: sampleRows,
		logger:     logger.With(slog.String("service", "dataset")),
	}
}

// Upload runs the full pipeline on an uploaded file: load, validate, clean,
// persist the dataset and its metrics.
func (s *DatasetService) Upload(ctx context.Context, content []byte, filename string) (*UploadResult, error) {
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}

	table, meta, err := s.loader.Load(content, filename)
	if errors.Is(err, ingestion.ErrUnsupportedFileType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	if table == nil {
		return nil, &FileValidationError{Meta: meta}
	}

	return s.process(ctx, table, filename, meta.FileType)
}

// UploadSample generates the deterministic demo dataset and runs it through
// the same pipeline as a real upload.
func (s *DatasetService) UploadSample(ctx context.Context) (*UploadResult, error) {
	table := ingestion.GenerateSample(config.SampleSeed, s.sampleRows)
	return s.process(ctx, table, config.SampleFilename, domain.FileTypeSample)
}

func (s *DatasetService) process(ctx context.Context, table *domain.RawTable, filename, fileType string) (*UploadResult, error) {
	s.metrics.RowsIngested.Add(float64(len(table.Rows)))

	cleanStart := time.Now()
	records, report := s.pipeline.Clean(table)
	s.metrics.CleaningDuration.Observe(time.Since(cleanStart).Seconds())
	s.metrics.RowsRemoved.Add(float64(report.RowsRemoved))

	dataset := &domain.Dataset{
		ID:             uuid.NewString(),
		Filename:       filename,
		FileType:       fileType,
		OriginalRows:   report.OriginalRows,
		CleanedRows:    report.FinalRows,
		UploadedAt:     time.Now().UTC(),
		CleaningReport: report,
	}
	if err := s.store.SaveDataset(ctx, dataset); err != nil {
		return nil, fmt.Errorf("persist dataset: %w", err)
	}

	kpiStart := time.Now()
	metrics := s.calculator.Calculate(records)
	s.metrics.KPIDuration.Observe(time.Since(kpiStart).Seconds())

	if err := s.store.SaveMetrics(ctx, dataset.ID, metrics); err != nil {
		return nil, fmt.Errorf("persist metrics: %w", err)
	}

	s.metrics.DatasetsProcessed.Inc()
	s.logger.InfoContext(ctx, "dataset processed",
		slog.String("dataset_id", dataset.ID),
		slog.String("filename", filename),
		slog.Int("original_rows", report.OriginalRows),
		slog.Int("cleaned_rows", report.FinalRows),
	)

	return &UploadResult{
		DatasetID:    dataset.ID,
		Filename:     filename,
		FileType:     fileType,
		OriginalRows: report.OriginalRows,
		CleanedRows:  report.FinalRows,
		RowsRemoved:  report.RowsRemoved,
		RemovalRate:  report.RowsRemovedPercentage,
		Steps:        report.Steps(),
		Metrics:      &metrics.Summary,
	}, nil
}

// List returns a page of dataset summaries plus the total count.
func (s *DatasetService) List(ctx context.Context, skip, limit int) ([]domain.DatasetSummary, int, error) {
	return s.store.ListDatasets(ctx, skip, limit)
}

// Get returns one dataset including its cleaning report.
func (s *DatasetService) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	d, err := s.store.GetDataset(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return d, err
}

// Delete removes a dataset and everything derived from it.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteDataset(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return err
}

// Metrics returns the latest metrics tree for a dataset.
func (s *DatasetService) Metrics(ctx context.Context, id string) (*domain.Metrics, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	m, err := s.store.LatestMetrics(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: dataset %s", ErrMetricsNotFound, id)
	}
	return m, err
}
