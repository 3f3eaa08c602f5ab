package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

// Loader errors. Validation failures are NOT errors; they travel in the
// returned metadata so clients can show what is wrong with the file.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrMalformedFile       = errors.New("malformed file")
)

// Loader reads CSV and Excel exports into a RawTable and validates the
// schema before anything downstream runs. It is stateless; one instance
// serves all requests.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		logger: logger.With(slog.String("component", "ingestion")),
	}
}

// Load parses content according to the filename extension, validates the
// result and reports load metadata. On validation failure the table is
// nil, the metadata carries the validation result and err is nil: the
// file was readable, just not acceptable.
func (l *Loader) Load(content []byte, filename string) (*domain.RawTable, *domain.LoadMetadata, error) {
	meta := &domain.LoadMetadata{
		Filename: filename,
		LoadedAt: time.Now().UTC(),
	}

	var (
		header []string
		rows   [][]string
		err    error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case config.ExtensionCSV:
		meta.FileType = domain.FileTypeCSV
		header, rows, err = readCSV(content)
	case config.ExtensionXLSX, config.ExtensionXLS:
		meta.FileType = domain.FileTypeExcel
		header, rows, err = readExcel(content)
	default:
		meta.Error = fmt.Sprintf("unsupported file type %q; expected .csv, .xlsx or .xls", ext)
		return nil, meta, ErrUnsupportedFileType
	}

	if err != nil {
		meta.Error = err.Error()
		return nil, meta, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	table := buildTable(header, rows)
	meta.Rows = len(table.Rows)
	meta.Columns = table.Columns
	meta.Validation = Validate(table)

	if !meta.Validation.IsValid {
		l.logger.Warn("file failed validation",
			slog.String("filename", filename),
			slog.Int("rows", meta.Rows),
			slog.Any("errors", meta.Validation.Errors),
		)
		return nil, meta, nil
	}

	meta.DateRange = dateRange(table)

	l.logger.Info("file loaded",
		slog.String("filename", filename),
		slog.String("file_type", meta.FileType),
		slog.Int("rows", meta.Rows),
		slog.Int("warnings", len(meta.Validation.Warnings)),
	)

	return table, meta, nil
}

// readCSV decodes and parses CSV content. Files that are not valid UTF-8
// are retried as Latin-1, which accepts any byte sequence.
func readCSV(content []byte) ([]string, [][]string, error) {
	if !utf8.Valid(content) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding latin-1: %w", err)
		}
		content = decoded
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	return records[0], records[1:], nil
}

// readExcel parses the first sheet of an Excel workbook.
func readExcel(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	return rows[0], rows[1:], nil
}

// buildTable maps positional rows into records by header name. Extra
// columns are ignored; missing cells read as empty.
func buildTable(header []string, rows [][]string) *domain.RawTable {
	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		columns[i] = name
		index[name] = i
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	table := &domain.RawTable{
		Columns: columns,
		Rows:    make([]domain.RawRecord, 0, len(rows)),
	}

	for _, row := range rows {
		table.Rows = append(table.Rows, domain.RawRecord{
			InvoiceNo:   cell(row, domain.ColInvoiceNo),
			StockCode:   cell(row, domain.ColStockCode),
			Description: cell(row, domain.ColDescription),
			Quantity:    cell(row, domain.ColQuantity),
			InvoiceDate: cell(row, domain.ColInvoiceDate),
			UnitPrice:   cell(row, domain.ColUnitPrice),
			CustomerID:  cell(row, domain.ColCustomerID),
			Country:     cell(row, domain.ColCountry),
		})
	}

	return table
}

// dateRange scans parseable invoice dates for the observed span.
// Unparseable dates are simply skipped here; the cleaning pipeline
// accounts for them.
func dateRange(t *domain.RawTable) *domain.DateRange {
	var start, end *time.Time

	for _, row := range t.Rows {
		d, ok := ParseDate(row.InvoiceDate)
		if !ok {
			continue
		}
		if start == nil || d.Before(*start) {
			v := d
			start = &v
		}
		if end == nil || d.After(*end) {
			v := d
			end = &v
		}
	}

	if start == nil {
		return nil
	}
	return &domain.DateRange{Start: start, End: end}
}
