package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"

	"retailpulse/pkg/contracts/domain"
)

// WriteCSV streams a dataset's metrics as sectioned CSV. A UTF-8 BOM is
// written first so Excel opens the file correctly.
func (e *Exporter) WriteCSV(w io.Writer, d *domain.Dataset, m *domain.Metrics) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)

	sections := [][][]string{
		summaryRows(d, m),
		monthlyRevenueRows(m),
		topProductRows(m),
		topCustomerRows(m),
	}
	for i, rows := range sections {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	e.logger.Info("metrics exported",
		slog.String("dataset_id", d.ID),
		slog.String("format", FormatCSV),
	)
	return nil
}

func summaryRows(d *domain.Dataset, m *domain.Metrics) [][]string {
	s := m.Summary
	return [][]string{
		{"Summary", ""},
		{"Dataset", d.Filename},
		{"Total Revenue", money(s.TotalRevenue)},
		{"Total Transactions", strconv.Itoa(s.TotalTransactions)},
		{"Total Products", strconv.Itoa(s.TotalProducts)},
		{"Total Customers", strconv.Itoa(s.TotalCustomers)},
		{"Total Items Sold", strconv.Itoa(s.TotalItemsSold)},
		{"Avg Transaction Value", money(s.AvgTransactionValue)},
		{"Date Range", s.DateRange.Start + " to " + s.DateRange.End},
		{"Overall Health", strconv.FormatFloat(m.HealthScores.Overall, 'f', 1, 64)},
	}
}

func monthlyRevenueRows(m *domain.Metrics) [][]string {
	months := make([]string, 0, len(m.Revenue.Monthly))
	for month := range m.Revenue.Monthly {
		months = append(months, month)
	}
	sort.Strings(months)

	rows := [][]string{{"Month", "Revenue"}}
	for _, month := range months {
		rows = append(rows, []string{month, money(m.Revenue.Monthly[month])})
	}
	return rows
}

func topProductRows(m *domain.Metrics) [][]string {
	rows := [][]string{{"Stock Code", "Description", "Revenue", "Quantity", "Transactions"}}
	for _, p := range m.Product.TopProducts {
		rows = append(rows, []string{
			p.StockCode,
			p.Description,
			money(p.TotalRevenue),
			strconv.FormatFloat(p.TotalQuantity, 'f', -1, 64),
			strconv.Itoa(p.Transactions),
		})
	}
	return rows
}

func topCustomerRows(m *domain.Metrics) [][]string {
	rows := [][]string{{"Customer ID", "Total Spent", "Transactions", "Avg Transaction"}}
	for _, c := range m.Customer.TopCustomers {
		rows = append(rows, []string{
			c.CustomerID,
			money(c.TotalSpent),
			strconv.Itoa(c.Transactions),
			money(c.AvgTransaction),
		})
	}
	return rows
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
