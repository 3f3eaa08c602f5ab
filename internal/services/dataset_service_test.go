package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/cleaning"
	"retailpulse/internal/config"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/ingestion"
	"retailpulse/internal/insights"
	"retailpulse/internal/kpi"
	"retailpulse/internal/store"
	"retailpulse/pkg/contracts/domain"
)

const uploadCSV = `InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country
536365,85123A,WHITE HANGING HEART T-LIGHT HOLDER,6,01/12/2023 08:26,2.55,17850,United Kingdom
536365,71053,WHITE METAL LANTERN,6,01/12/2023 08:26,3.39,17850,United Kingdom
536366,22633,HAND WARMER UNION JACK,3,02/12/2023 09:01,1.85,13047,France
536367,22633,HAND WARMER UNION JACK,0,03/12/2023 10:00,1.85,13047,France
`

func newTestEnv(t *testing.T) (*DatasetService, *InsightService, *store.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pipelineCfg := config.Default().Pipeline
	datasets := NewDatasetService(
		ingestion.NewLoader(logger),
		cleaning.NewPipeline(pipelineCfg, logger),
		kpi.NewCalculator(logger),
		st,
		infrastructure.NewMetrics(),
		200,
		logger,
	)
	insightSvc := NewInsightService(insights.NewGenerator(logger), st, logger)
	return datasets, insightSvc, st
}

func TestUpload_EndToEnd(t *testing.T) {
	datasets, _, _ := newTestEnv(t)
	ctx := context.Background()

	result, err := datasets.Upload(ctx, []byte(uploadCSV), "orders.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, result.DatasetID)
	assert.Equal(t, "orders.csv", result.Filename)
	assert.Equal(t, domain.FileTypeCSV, result.FileType)
	assert.Equal(t, 4, result.OriginalRows)
	// The zero-quantity row is removed.
	assert.Equal(t, 3, result.CleanedRows)
	assert.Equal(t, 1, result.RowsRemoved)
	assert.Len(t, result.Steps, 6)
	require.NotNil(t, result.Metrics)
	// Invoices 536365 and 536366 survive cleaning.
	assert.Equal(t, 2, result.Metrics.TotalTransactions)

	got, err := datasets.Get(ctx, result.DatasetID)
	require.NoError(t, err)
	require.NotNil(t, got.CleaningReport)
	assert.True(t, got.CleaningReport.CleaningCompleted)

	metrics, err := datasets.Metrics(ctx, result.DatasetID)
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.Metadata.TotalRowsProcessed)
	assert.InDelta(t, float64(6*2.55+6*3.39+3*1.85), metrics.Summary.TotalRevenue, 0.01)

	page, total, err := datasets.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.True(t, page[0].HasMetrics)
	assert.False(t, page[0].HasInsights)
}

func TestUpload_EmptyContent(t *testing.T) {
	datasets, _, _ := newTestEnv(t)

	_, err := datasets.Upload(context.Background(), nil, "orders.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestUpload_UnsupportedFileType(t *testing.T) {
	datasets, _, _ := newTestEnv(t)

	_, err := datasets.Upload(context.Background(), []byte("{}"), "orders.json")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUpload_ValidationFailure(t *testing.T) {
	datasets, _, _ := newTestEnv(t)

	_, err := datasets.Upload(context.Background(), []byte("InvoiceNo,StockCode\n1,A\n"), "orders.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileValidation)

	var validationErr *FileValidationError
	require.ErrorAs(t, err, &validationErr)
	require.NotNil(t, validationErr.Meta)
	assert.NotEmpty(t, validationErr.Meta.Validation.MissingColumns)
}

func TestUploadSample(t *testing.T) {
	datasets, _, _ := newTestEnv(t)

	result, err := datasets.UploadSample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeSample, result.FileType)
	assert.Equal(t, config.SampleFilename, result.Filename)
	assert.Equal(t, 200, result.OriginalRows)
	assert.Greater(t, result.CleanedRows, 0)
}

func TestGet_NotFound(t *testing.T) {
	datasets, _, _ := newTestEnv(t)

	_, err := datasets.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDelete_RemovesDataset(t *testing.T) {
	datasets, _, _ := newTestEnv(t)
	ctx := context.Background()

	result, err := datasets.Upload(ctx, []byte(uploadCSV), "orders.csv")
	require.NoError(t, err)

	require.NoError(t, datasets.Delete(ctx, result.DatasetID))
	_, err = datasets.Get(ctx, result.DatasetID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	assert.ErrorIs(t, datasets.Delete(ctx, result.DatasetID), ErrDatasetNotFound)
}

func TestMetrics_NotFoundWithoutCalculation(t *testing.T) {
	datasets, _, st := newTestEnv(t)
	ctx := context.Background()

	// A dataset persisted without a metrics run.
	d := &domain.Dataset{
		ID:             uuid.NewString(),
		Filename:       "orders.csv",
		FileType:       domain.FileTypeCSV,
		UploadedAt:     time.Now().UTC(),
		CleaningReport: &domain.CleaningReport{},
	}
	require.NoError(t, st.SaveDataset(ctx, d))

	_, err := datasets.Metrics(ctx, d.ID)
	assert.ErrorIs(t, err, ErrMetricsNotFound)
}

func TestInsights_GenerateCacheRefresh(t *testing.T) {
	datasets, insightSvc, _ := newTestEnv(t)
	ctx := context.Background()

	result, err := datasets.Upload(ctx, []byte(uploadCSV), "orders.csv")
	require.NoError(t, err)

	first, err := insightSvc.Insights(ctx, result.DatasetID, false)
	require.NoError(t, err)
	assert.Equal(t, result.DatasetID, first.DatasetID)
	assert.NotEmpty(t, first.ExecutiveSummary)
	assert.NotEmpty(t, first.HealthStatus)

	cached, err := insightSvc.Insights(ctx, result.DatasetID, false)
	require.NoError(t, err)
	assert.True(t, cached.GeneratedAt.Equal(first.GeneratedAt), "expected the cached report")

	refreshed, err := insightSvc.Insights(ctx, result.DatasetID, true)
	require.NoError(t, err)
	assert.Equal(t, first.ExecutiveSummary, refreshed.ExecutiveSummary)
}

func TestInsights_DatasetNotFound(t *testing.T) {
	_, insightSvc, _ := newTestEnv(t)

	_, err := insightSvc.Insights(context.Background(), uuid.NewString(), false)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestHealthCheck(t *testing.T) {
	_, _, st := newTestEnv(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	health := NewHealthService(st, logger)

	status := health.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "up", status.Services["database"])
	assert.Equal(t, config.AppVersion, status.Version)
}
