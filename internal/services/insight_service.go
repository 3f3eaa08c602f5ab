package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"retailpulse/internal/insights"
	"retailpulse/internal/store"
	"retailpulse/pkg/contracts/domain"
)

// InsightService serves narrative reports, generating them lazily from the
// stored metrics and caching the result.
type InsightService struct {
	generator *insights.Generator
	store     Store
	logger    *slog.Logger
}

// NewInsightService creates the insight service.
func NewInsightService(generator *insights.Generator, st Store, logger *slog.Logger) *InsightService {
	return &InsightService{
		generator: generator,
		store:     st,
		logger:    logger.With(slog.String("service", "insights")),
	}
}

// Insights returns the cached report for a dataset, generating and storing
// a fresh one when none exists or when refresh is set.
func (s *InsightService) Insights(ctx context.Context, datasetID string, refresh bool) (*domain.InsightReport, error) {
	if _, err := s.store.GetDataset(ctx, datasetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, datasetID)
		}
		return nil, err
	}

	if !refresh {
		cached, err := s.store.LatestInsights(ctx, datasetID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	metrics, err := s.store.LatestMetrics(ctx, datasetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: dataset %s", ErrMetricsNotFound, datasetID)
	}
	if err != nil {
		return nil, err
	}

	report := s.generator.Generate(datasetID, metrics)
	if err := s.store.SaveInsights(ctx, datasetID, report); err != nil {
		return nil, fmt.Errorf("persist insights: %w", err)
	}

	s.logger.InfoContext(ctx, "insights regenerated",
		slog.String("dataset_id", datasetID),
		slog.Bool("refresh", refresh),
	)
	return report, nil
}
