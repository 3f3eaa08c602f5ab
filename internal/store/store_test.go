package store

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

	"retailpulse/pkg/contracts/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		ID:           uuid.NewString(),
		Filename:     "orders.csv",
		FileType:     domain.FileTypeCSV,
		OriginalRows: 100,
		CleanedRows:  95,
		UploadedAt:   time.Now().UTC().Truncate(time.Millisecond),
		CleaningReport: &domain.CleaningReport{
			OriginalRows:      100,
			FinalRows:         95,
			RowsRemoved:       5,
			CleaningCompleted: true,
		},
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := testDataset()
	require.NoError(t, s.SaveDataset(ctx, d))

	got, err := s.GetDataset(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.Filename, got.Filename)
	assert.Equal(t, d.OriginalRows, got.OriginalRows)
	require.NotNil(t, got.CleaningReport)
	assert.Equal(t, 5, got.CleaningReport.RowsRemoved)
	assert.True(t, got.UploadedAt.Equal(d.UploadedAt))
}

func TestGetDataset_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetDataset(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDatasets_PaginationAndFlags(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var withMetrics string
	for i := 0; i < 3; i++ {
		d := testDataset()
		d.UploadedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveDataset(ctx, d))
		if i == 2 {
			withMetrics = d.ID
			require.NoError(t, s.SaveMetrics(ctx, d.ID, &domain.Metrics{CalculatedAt: time.Now().UTC()}))
		}
	}

	page, total, err := s.ListDatasets(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)

	// Newest first; only the newest has metrics.
	assert.Equal(t, withMetrics, page[0].ID)
	assert.True(t, page[0].HasMetrics)
	assert.False(t, page[0].HasInsights)
	assert.False(t, page[1].HasMetrics)

	rest, _, err := s.ListDatasets(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestDeleteDataset_Cascades(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := testDataset()
	require.NoError(t, s.SaveDataset(ctx, d))
	require.NoError(t, s.SaveMetrics(ctx, d.ID, &domain.Metrics{CalculatedAt: time.Now().UTC()}))
	require.NoError(t, s.SaveInsights(ctx, d.ID, &domain.InsightReport{
		DatasetID:   d.ID,
		Model:       "retailpulse-rules-v1",
		GeneratedAt: time.Now().UTC(),
	}))

	require.NoError(t, s.DeleteDataset(ctx, d.ID))

	_, err := s.GetDataset(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LatestMetrics(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LatestInsights(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDataset_NotFound(t *testing.T) {
	s := testStore(t)
	assert.ErrorIs(t, s.DeleteDataset(context.Background(), uuid.NewString()), ErrNotFound)
}

func TestLatestMetrics_PicksNewest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := testDataset()
	require.NoError(t, s.SaveDataset(ctx, d))

	old := &domain.Metrics{
		Summary:      domain.SummaryMetrics{TotalRevenue: 100},
		CalculatedAt: time.Now().UTC().Add(-time.Hour),
	}
	latest := &domain.Metrics{
		Summary:      domain.SummaryMetrics{TotalRevenue: 200},
		CalculatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveMetrics(ctx, d.ID, old))
	require.NoError(t, s.SaveMetrics(ctx, d.ID, latest))

	got, err := s.LatestMetrics(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.Summary.TotalRevenue)
}

func TestInsightsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := testDataset()
	require.NoError(t, s.SaveDataset(ctx, d))

	report := &domain.InsightReport{
		DatasetID:        d.ID,
		ExecutiveSummary: "Steady growth across all markets.",
		KeyInsights: []domain.KeyInsight{
			{Title: "Revenue increasing month-over-month", Impact: domain.ImpactHigh, Category: domain.CategoryRevenue, Confidence: 0.9},
		},
		HealthStatus: domain.HealthStatusHealthy,
		Model:        "retailpulse-rules-v1",
		Confidence:   0.88,
		GeneratedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, s.SaveInsights(ctx, d.ID, report))

	got, err := s.LatestInsights(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ExecutiveSummary, got.ExecutiveSummary)
	require.Len(t, got.KeyInsights, 1)
	assert.Equal(t, domain.ImpactHigh, got.KeyInsights[0].Impact)
	assert.Equal(t, 0.88, got.Confidence)
}
