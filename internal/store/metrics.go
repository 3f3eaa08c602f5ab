package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// SaveMetrics stores a calculated metrics tree for a dataset. Each save is
// a new row; readers always take the latest.
func (s *Store) SaveMetrics(ctx context.Context, datasetID string, m *domain.Metrics) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metrics (dataset_id, calculated_at, payload) VALUES (?, ?, ?)`,
		datasetID, m.CalculatedAt.UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert metrics: %w", err)
	}
	return nil
}

// LatestMetrics returns the most recently calculated metrics for a dataset.
func (s *Store) LatestMetrics(ctx context.Context, datasetID string) (*domain.Metrics, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM metrics WHERE dataset_id = ? ORDER BY calculated_at DESC, id DESC LIMIT 1`,
		datasetID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}

	var m domain.Metrics
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return &m, nil
}

// SaveInsights stores a generated insight report for a dataset.
func (s *Store) SaveInsights(ctx context.Context, datasetID string, r *domain.InsightReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO insights (dataset_id, generated_at, payload, model, confidence)
		 VALUES (?, ?, ?, ?, ?)`,
		datasetID, r.GeneratedAt.UTC().Format(time.RFC3339Nano), string(payload), r.Model, r.Confidence,
	)
	if err != nil {
		return fmt.Errorf("insert insights: %w", err)
	}
	return nil
}

// LatestInsights returns the most recently generated insight report.
func (s *Store) LatestInsights(ctx context.Context, datasetID string) (*domain.InsightReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM insights WHERE dataset_id = ? ORDER BY generated_at DESC, id DESC LIMIT 1`,
		datasetID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}

	var r domain.InsightReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}
	return &r, nil
}
