package ingestion

import (
	"fmt"
	"strings"

	"retailpulse/pkg/contracts/domain"
)

// Validate runs schema and sanity checks on a loaded table. Errors block
// the pipeline; warnings are informational and accumulate independently.
func Validate(t *domain.RawTable) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}

	for _, col := range domain.RequiredColumns {
		if !present[col] {
			result.MissingColumns = append(result.MissingColumns, col)
		}
	}
	if len(result.MissingColumns) > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Missing required columns: [%s]", strings.Join(result.MissingColumns, ", ")))
	}

	if len(t.Rows) == 0 {
		result.Errors = append(result.Errors, "File contains no data")
	}

	// Column-level checks only make sense on a complete, non-empty schema.
	if len(result.MissingColumns) == 0 && len(t.Rows) > 0 {
		checkNumericColumn(t, domain.ColQuantity, &result)
		checkNumericColumn(t, domain.ColUnitPrice, &result)
		checkDateColumn(t, &result)
		checkValues(t, &result)
		checkDuplicates(t, &result)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// checkNumericColumn flags a fully-empty numeric column as an error and a
// partially non-numeric one as a warning; coercion later turns those
// values into zeros.
func checkNumericColumn(t *domain.RawTable, col string, result *domain.ValidationResult) {
	allNull := true
	nonNumeric := 0

	for _, row := range t.Rows {
		v := rawField(row, col)
		if strings.TrimSpace(v) == "" {
			continue
		}
		allNull = false
		if _, ok := ParseNumber(v); !ok {
			nonNumeric++
		}
	}

	if allNull {
		result.Errors = append(result.Errors, fmt.Sprintf("Column '%s' is completely empty", col))
		return
	}
	if nonNumeric > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Column '%s' contains %d non-numeric values", col, nonNumeric))
	}
}

func checkDateColumn(t *domain.RawTable, result *domain.ValidationResult) {
	for _, row := range t.Rows {
		if strings.TrimSpace(row.InvoiceDate) != "" {
			return
		}
	}
	result.Errors = append(result.Errors,
		fmt.Sprintf("Column '%s' is completely empty", domain.ColInvoiceDate))
}

// checkValues enforces the sign rules: negative prices are data corruption
// and block the file, negative quantities are legitimate returns.
func checkValues(t *domain.RawTable, result *domain.ValidationResult) {
	negativePrices := 0
	negativeQuantities := 0

	for _, row := range t.Rows {
		if p, ok := ParseNumber(row.UnitPrice); ok && p < 0 {
			negativePrices++
		}
		if q, ok := ParseNumber(row.Quantity); ok && q < 0 {
			negativeQuantities++
		}
	}

	if negativePrices > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Found %d rows with negative unit prices", negativePrices))
	}
	if negativeQuantities > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d rows with negative quantities (product returns)", negativeQuantities))
	}
}

func checkDuplicates(t *domain.RawTable, result *domain.ValidationResult) {
	seen := make(map[string]bool, len(t.Rows))
	duplicates := 0

	for _, row := range t.Rows {
		key := rowKey(row)
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}

	if duplicates > 0 {
		result.DuplicateRows = duplicates
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d duplicate rows", duplicates))
	}
}

// rowKey joins all raw fields with a separator that cannot appear in the
// data, identifying exact duplicates.
func rowKey(r domain.RawRecord) string {
	return strings.Join([]string{
		r.InvoiceNo, r.StockCode, r.Description, r.Quantity,
		r.InvoiceDate, r.UnitPrice, r.CustomerID, r.Country,
	}, "\x1f")
}

func rawField(r domain.RawRecord, col string) string {
	switch col {
	case domain.ColInvoiceNo:
		return r.InvoiceNo
	case domain.ColStockCode:
		return r.StockCode
	case domain.ColDescription:
		return r.Description
	case domain.ColQuantity:
		return r.Quantity
	case domain.ColInvoiceDate:
		return r.InvoiceDate
	case domain.ColUnitPrice:
		return r.UnitPrice
	case domain.ColCustomerID:
		return r.CustomerID
	case domain.ColCountry:
		return r.Country
	}
	return ""
}
