package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// SaveDataset inserts a dataset with its cleaning report serialized as JSON.
func (s *Store) SaveDataset(ctx context.Context, d *domain.Dataset) error {
	report, err := json.Marshal(d.CleaningReport)
	if err != nil {
		return fmt.Errorf("marshal cleaning report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO datasets (id, filename, file_type, original_rows, cleaned_rows, uploaded_at, cleaning_report)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Filename, d.FileType, d.OriginalRows, d.CleanedRows,
		d.UploadedAt.UTC().Format(time.RFC3339Nano), string(report),
	)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	return nil
}

// GetDataset loads one dataset including its cleaning report.
func (s *Store) GetDataset(ctx context.Context, id string) (*domain.Dataset, error) {
	var (
		d          domain.Dataset
		uploadedAt string
		report     string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, file_type, original_rows, cleaned_rows, uploaded_at, cleaning_report
		 FROM datasets WHERE id = ?`, id,
	).Scan(&d.ID, &d.Filename, &d.FileType, &d.OriginalRows, &d.CleanedRows, &uploadedAt, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}

	if d.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
		return nil, fmt.Errorf("parse uploaded_at: %w", err)
	}
	if err := json.Unmarshal([]byte(report), &d.CleaningReport); err != nil {
		return nil, fmt.Errorf("unmarshal cleaning report: %w", err)
	}

	return &d, nil
}

// ListDatasets returns a page of dataset summaries, newest first, plus the
// total dataset count for pagination.
func (s *Store) ListDatasets(ctx context.Context, skip, limit int) ([]domain.DatasetSummary, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.filename, d.file_type, d.original_rows, d.cleaned_rows, d.uploaded_at,
		        EXISTS (SELECT 1 FROM metrics m WHERE m.dataset_id = d.id),
		        EXISTS (SELECT 1 FROM insights i WHERE i.dataset_id = d.id)
		 FROM datasets d
		 ORDER BY d.uploaded_at DESC
		 LIMIT ? OFFSET ?`, limit, skip,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	summaries := []domain.DatasetSummary{}
	for rows.Next() {
		var (
			d          domain.DatasetSummary
			uploadedAt string
		)
		if err := rows.Scan(&d.ID, &d.Filename, &d.FileType, &d.OriginalRows,
			&d.CleanedRows, &uploadedAt, &d.HasMetrics, &d.HasInsights); err != nil {
			return nil, 0, fmt.Errorf("scan dataset: %w", err)
		}
		if d.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
			return nil, 0, fmt.Errorf("parse uploaded_at: %w", err)
		}
		summaries = append(summaries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate datasets: %w", err)
	}

	return summaries, total, nil
}

// DeleteDataset removes a dataset; metrics and insights cascade.
func (s *Store) DeleteDataset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("dataset deleted", slog.String("dataset_id", id))
	return nil
}
