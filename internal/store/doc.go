// Package store persists datasets, metrics and insight reports in SQLite
// via the pure-Go modernc.org/sqlite driver. Structured payloads (cleaning
// reports, metrics trees, insight reports) are stored as JSON columns;
// metrics and insights cascade on dataset deletion.
package store
