package exporter

import (
	"log/slog"
)

// Format identifiers accepted by the export endpoint.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Exporter renders a dataset's metrics for download.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// ContentType returns the MIME type for a format; the handler validates
// the format before calling.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}
