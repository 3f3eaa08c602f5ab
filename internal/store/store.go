package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist. Services
// translate it into their own sentinels.
var ErrNotFound = errors.New("store: not found")

// Store wraps the SQLite database holding datasets, metrics and insights.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and creates if needed) the database at path and applies the
// schema. WAL mode keeps readers unblocked during uploads; foreign keys
// give us cascade deletes.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY churn under concurrent uploads.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: logger.With(slog.String("component", "store")),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("database opened", slog.String("path", path))
	return s, nil
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id              TEXT PRIMARY KEY,
			filename        TEXT NOT NULL,
			file_type       TEXT NOT NULL,
			original_rows   INTEGER NOT NULL,
			cleaned_rows    INTEGER NOT NULL,
			uploaded_at     TEXT NOT NULL,
			cleaning_report TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id    TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			calculated_at TEXT NOT NULL,
			payload       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_dataset ON metrics(dataset_id, calculated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS insights (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id   TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			generated_at TEXT NOT NULL,
			payload      TEXT NOT NULL,
			model        TEXT NOT NULL,
			confidence   REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_dataset ON insights(dataset_id, generated_at DESC)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Ping verifies database connectivity, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
