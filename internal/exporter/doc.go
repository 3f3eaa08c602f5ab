// Package exporter renders calculated metrics for download as sectioned
// CSV (with a UTF-8 BOM for Excel) or as a multi-sheet XLSX workbook:
// summary, monthly revenue, top products and top customers.
package exporter
