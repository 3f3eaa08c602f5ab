package domain

import (
	"time"
)

// File types accepted by the upload endpoint.
const (
	FileTypeCSV    = "csv"
	FileTypeExcel  = "xlsx"
	FileTypeSample = "sample"
)

// Dataset is one uploaded and cleaned transaction file.
type Dataset struct {
	ID             string          `json:"id" db:"id" validate:"required,uuid"`
	Filename       string          `json:"filename" db:"filename" validate:"required,filename"`
	FileType       string          `json:"file_type" db:"file_type" validate:"required,oneof=csv xlsx sample"`
	OriginalRows   int             `json:"original_rows" db:"original_rows"`
	CleanedRows    int             `json:"cleaned_rows" db:"cleaned_rows"`
	UploadedAt     time.Time       `json:"uploaded_at" db:"uploaded_at"`
	CleaningReport *CleaningReport `json:"cleaning_report,omitempty" db:"cleaning_report"`
}

// DatasetSummary is the list-view projection of a dataset.
type DatasetSummary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	FileType     string    `json:"file_type"`
	OriginalRows int       `json:"original_rows"`
	CleanedRows  int       `json:"cleaned_rows"`
	UploadedAt   time.Time `json:"uploaded_at"`
	HasMetrics   bool      `json:"has_metrics"`
	HasInsights  bool      `json:"has_insights"`
}
