package domain

import (
	"time"
)

// ValidationResult is the outcome of schema and sanity checks on a loaded
// table. Errors block cleaning; warnings never do.
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	DuplicateRows  int      `json:"duplicate_rows"`
}

// DateRange is the observed span of parseable invoice dates in a file.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// LoadMetadata describes a load attempt, successful or not. When validation
// fails the table is withheld and this is all the caller gets.
type LoadMetadata struct {
	Filename   string           `json:"filename"`
	FileType   string           `json:"file_type"`
	Rows       int              `json:"rows"`
	Columns    []string         `json:"columns"`
	DateRange  *DateRange       `json:"date_range,omitempty"`
	Validation ValidationResult `json:"validation"`
	LoadedAt   time.Time        `json:"loaded_at"`
	Error      string           `json:"error,omitempty"`
}
