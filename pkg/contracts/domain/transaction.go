package domain

import (
	"time"
)

// Required input columns, exact and case-sensitive. Files missing any of
// these fail validation before cleaning starts.
const (
	ColInvoiceNo   = "InvoiceNo"
	ColStockCode   = "StockCode"
	ColDescription = "Description"
	ColQuantity    = "Quantity"
	ColInvoiceDate = "InvoiceDate"
	ColUnitPrice   = "UnitPrice"
	ColCustomerID  = "CustomerID"
	ColCountry     = "Country"
)

// RequiredColumns lists the schema every uploaded file must carry.
// Extra columns are ignored, never an error.
var RequiredColumns = []string{
	ColInvoiceNo,
	ColStockCode,
	ColDescription,
	ColQuantity,
	ColInvoiceDate,
	ColUnitPrice,
	ColCustomerID,
	ColCountry,
}

// Sentinel fill values used by the cleaning pipeline and understood by the
// KPI engine (UnknownCustomer is excluded from customer analytics but still
// counted in the summary).
const (
	UnknownCustomer = "Unknown"
	UnknownProduct  = "Unknown Product"
	UnknownCountry  = "Unknown"
)

// RawRecord is a single transaction row exactly as loaded from a file.
// Every field is raw text; the empty string marks a missing value.
// Parsing happens later, in the type-coercion stage of the pipeline.
type RawRecord struct {
	InvoiceNo   string `json:"invoice_no"`
	StockCode   string `json:"stock_code"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	InvoiceDate string `json:"invoice_date"`
	UnitPrice   string `json:"unit_price"`
	CustomerID  string `json:"customer_id"`
	Country     string `json:"country"`
}

// RawTable is a loaded, not yet cleaned, transaction table.
// Columns holds the header exactly as found in the file so validation can
// report what is actually missing.
type RawTable struct {
	Columns []string    `json:"columns"`
	Rows    []RawRecord `json:"rows"`
}

// CleanRecord is a fully cleaned transaction with all derived columns.
// NetRevenue is the canonical revenue figure for every downstream metric.
// TransactionRef is informational only and must never be used as a
// uniqueness key: one invoice legitimately repeats a stock code.
type CleanRecord struct {
	InvoiceNo   string    `json:"invoice_no"`
	StockCode   string    `json:"stock_code"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	InvoiceDate time.Time `json:"invoice_date"`
	UnitPrice   float64   `json:"unit_price"`
	CustomerID  string    `json:"customer_id"`
	Country     string    `json:"country"`

	TransactionValue float64 `json:"transaction_value"`
	IsReturn         bool    `json:"is_return"`
	SalesRevenue     float64 `json:"sales_revenue"`
	ReturnsValue     float64 `json:"returns_value"`
	NetRevenue       float64 `json:"net_revenue"`

	Year       int    `json:"year"`
	Month      int    `json:"month"`
	MonthName  string `json:"month_name"`
	Quarter    int    `json:"quarter"`
	Weekday    string `json:"weekday"`
	DayOfMonth int    `json:"day_of_month"`
	Hour       int    `json:"hour"`
	Date       string `json:"date"`

	TransactionRef   string  `json:"transaction_ref"`
	DataQualityScore float64 `json:"data_quality_score"`
	QualityFlag      string  `json:"quality_flag,omitempty"`
	NeedsReview      bool    `json:"needs_review"`
}

// CleanColumnCount is the column count of a CleanRecord, reported in the
// cleaning report as final_columns.
const CleanColumnCount = 25
