package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"retailpulse/pkg/contracts/domain"
)

// WriteXLSX streams a dataset's metrics as a four-sheet workbook.
func (e *Exporter) WriteXLSX(w io.Writer, d *domain.Dataset, m *domain.Metrics) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]string
	}{
		{"Summary", summaryRows(d, m)},
		{"Monthly Revenue", monthlyRevenueRows(m)},
		{"Top Products", topProductRows(m)},
		{"Top Customers", topCustomerRows(m)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			// excelize always starts with one default sheet; rename it.
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet.name, err)
			}
		}

		for rowIdx, row := range sheet.rows {
			cells := make([]any, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetSheetRow(sheet.name, cell, &cells); err != nil {
				return fmt.Errorf("write sheet %s row %d: %w", sheet.name, rowIdx+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("metrics exported",
		slog.String("dataset_id", d.ID),
		slog.String("format", FormatXLSX),
	)
	return nil
}
