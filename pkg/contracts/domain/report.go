package domain

import (
	"time"
)

// Stage names as reported in the cleaning report, in pipeline order.
const (
	StageMissingValues       = "missing_values"
	StageTypeConversion      = "type_conversion"
	StageRowRemoval          = "row_removal"
	StageTextStandardization = "text_standardization"
	StageDerivedColumns      = "derived_columns"
	StageDuplicateResolution = "duplicate_resolution"
)

// MissingValueStats counts fills per column in the missing-value stage.
type MissingValueStats struct {
	CustomerIDFilled  int `json:"customer_id_filled"`
	DescriptionFilled int `json:"description_filled"`
	CountryFilled     int `json:"country_filled"`
	QuantityFilled    int `json:"quantity_filled"`
	UnitPriceFilled   int `json:"unit_price_filled"`
}

// TypeConversionStats reports coercion anomalies. Invalid dates become
// nulls here and are removed in the next stage.
type TypeConversionStats struct {
	InvalidDatesFound int `json:"invalid_dates_found"`
}

// RowRemovalStats counts rows dropped per category. A row is counted once
// under the first matching category even when several apply.
type RowRemovalStats struct {
	NullDatesRemoved     int `json:"null_dates_removed"`
	InvalidPricesRemoved int `json:"invalid_prices_removed"`
	ZeroQuantityRemoved  int `json:"zero_quantity_removed"`
	TotalRemoved         int `json:"total_removed"`
}

// TextStats reports the text-standardization stage. No rows are removed.
type TextStats struct {
	DistinctCountries    int `json:"distinct_countries"`
	DescriptionsTrimmed  int `json:"descriptions_trimmed"`
	CountriesRestyled    int `json:"countries_restyled"`
}

// DerivedStats summarizes the revenue decomposition computed in the
// derived-columns stage plus quality flagging counts.
type DerivedStats struct {
	GrossSales             float64 `json:"gross_sales"`
	TotalReturns           float64 `json:"total_returns"`
	NetRevenue             float64 `json:"net_revenue"`
	ReturnRate             float64 `json:"return_rate"`
	FlaggedExtremeQuantity int     `json:"flagged_extreme_quantity"`
	FlaggedExtremePrice    int     `json:"flagged_extreme_price"`
}

// DuplicateStats reports the three-tier duplicate policy: exact duplicates
// removed, invoice+stock multiples preserved, suspicious same-minute
// clusters flagged for review but kept.
type DuplicateStats struct {
	ExactDuplicatesRemoved          int     `json:"exact_duplicates_removed"`
	LegitimateMultipleEntries       int     `json:"legitimate_multiple_entries"`
	TotalMultipleEntryRows          int     `json:"total_multiple_entry_rows"`
	SuspiciousTransactionsForReview int     `json:"suspicious_transactions_for_review"`
	FinalRows                       int     `json:"final_rows"`
	RowsRemoved                     int     `json:"rows_removed"`
	RemovalRate                     float64 `json:"removal_rate"`
}

// CleaningStep pairs a stage name with its statistics for ordered
// presentation in API responses.
type CleaningStep struct {
	Step  string `json:"step"`
	Stats any    `json:"stats"`
}

// CleaningReport is the full record of one pipeline run.
type CleaningReport struct {
	OriginalRows    int `json:"original_rows"`
	OriginalColumns int `json:"original_columns"`

	MissingValues  MissingValueStats   `json:"missing_values"`
	TypeConversion TypeConversionStats `json:"type_conversion"`
	RowRemoval     RowRemovalStats     `json:"row_removal"`
	Text           TextStats           `json:"text_standardization"`
	Derived        DerivedStats        `json:"derived_columns"`
	Duplicates     DuplicateStats      `json:"duplicate_resolution"`

	FinalRows             int       `json:"final_rows"`
	FinalColumns          int       `json:"final_columns"`
	RowsRemoved           int       `json:"rows_removed"`
	RowsRemovedPercentage float64   `json:"rows_removed_percentage"`
	CleaningCompleted     bool      `json:"cleaning_completed"`
	Timestamp             time.Time `json:"timestamp"`
}

// Steps returns the per-stage statistics in pipeline order.
func (r *CleaningReport) Steps() []CleaningStep {
	return []CleaningStep{
		{Step: StageMissingValues, Stats: r.MissingValues},
		{Step: StageTypeConversion, Stats: r.TypeConversion},
		{Step: StageRowRemoval, Stats: r.RowRemoval},
		{Step: StageTextStandardization, Stats: r.Text},
		{Step: StageDerivedColumns, Stats: r.Derived},
		{Step: StageDuplicateResolution, Stats: r.Duplicates},
	}
}
