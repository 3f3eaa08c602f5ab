package domain

import (
	"time"
)

// Metrics is the full KPI tree for one dataset. Every category is always
// present, even for empty input; absence of a value is expressed with a
// typed nil pointer or a zero, never a missing key and never a NaN.
type Metrics struct {
	Summary       SummaryMetrics    `json:"summary"`
	Revenue       RevenueMetrics    `json:"revenue"`
	Customer      CustomerMetrics   `json:"customer"`
	Product       ProductMetrics    `json:"product"`
	TimeSeries    TimeSeriesMetrics `json:"time_series"`
	Geographic    GeographicMetrics `json:"geographic"`
	Growth        GrowthMetrics     `json:"growth"`
	TopPerformers TopPerformers     `json:"top_performers"`
	HealthScores  HealthScores      `json:"health_scores"`
	CalculatedAt  time.Time         `json:"calculated_at"`
	Metadata      MetricsMetadata   `json:"_metadata"`
}

// MetricsMetadata carries calculation bookkeeping. Error is set only for
// degenerate inputs (for example an empty table).
type MetricsMetadata struct {
	TotalRowsProcessed    int     `json:"total_rows_processed"`
	CalculationDurationMS float64 `json:"calculation_duration_ms"`
	Error                 string  `json:"error,omitempty"`
}

// DateSpan is the inclusive invoice-date range of a dataset.
type DateSpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// SummaryMetrics are the headline figures. TotalCustomers counts the
// "Unknown" sentinel like any other customer; the customer category below
// excludes it.
type SummaryMetrics struct {
	TotalRevenue           float64  `json:"total_revenue"`
	TotalTransactions      int      `json:"total_transactions"`
	TotalProducts          int      `json:"total_products"`
	TotalCustomers         int      `json:"total_customers"`
	TotalItemsSold         int      `json:"total_items_sold"`
	AvgTransactionValue    float64  `json:"avg_transaction_value"`
	AvgItemsPerTransaction float64  `json:"avg_items_per_transaction"`
	DateRange              DateSpan `json:"date_range"`
}

// RevenueDistribution describes per-record net revenue. StdDev is the
// sample standard deviation; percentiles use linear interpolation.
type RevenueDistribution struct {
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	StdDev      float64            `json:"std"`
	Percentiles map[string]float64 `json:"percentiles"`
}

// RevenueMetrics breaks revenue down by period. Monthly keys are
// "YYYY-MM", quarterly keys "Qn YYYY", weekday keys full day names with
// every day of the week present (zero-filled).
type RevenueMetrics struct {
	Monthly      map[string]float64  `json:"monthly_revenue"`
	Quarterly    map[string]float64  `json:"quarterly_revenue"`
	ByWeekday    map[string]float64  `json:"revenue_by_weekday"`
	Distribution RevenueDistribution `json:"revenue_distribution"`
}

// RFMSummary holds dataset-wide recency/frequency/monetary averages.
// Recency is measured against the latest invoice date in the dataset,
// not the wall clock.
type RFMSummary struct {
	AvgRecencyDays float64 `json:"avg_recency_days"`
	AvgFrequency   float64 `json:"avg_frequency"`
	AvgMonetary    float64 `json:"avg_monetary"`
}

// CustomerRank is one entry of the top-customer ranking, ordered by spend.
type CustomerRank struct {
	CustomerID     string  `json:"customer_id"`
	TotalSpent     float64 `json:"total_spent"`
	Transactions   int     `json:"transactions"`
	AvgTransaction float64 `json:"avg_transaction_value"`
}

// Customer spend segments, assigned by quartile of total spend. When the
// quartile cut degenerates every customer lands in SegmentMedium.
const (
	SegmentLow    = "Low"
	SegmentMedium = "Medium"
	SegmentHigh   = "High"
	SegmentVIP    = "VIP"
)

// CustomerMetrics covers identified customers only; the "Unknown"
// sentinel is excluded from every figure here.
type CustomerMetrics struct {
	CustomerCount       int            `json:"customer_count"`
	ActiveCustomers     int            `json:"active_customers"`
	OneTimeCustomers    int            `json:"one_time_customers"`
	AvgCustomerValue    float64        `json:"avg_customer_value"`
	MedianCustomerValue float64        `json:"median_customer_value"`
	SegmentDistribution map[string]int `json:"segment_distribution"`
	RFMSummary          RFMSummary     `json:"rfm_summary"`
	TopCustomers        []CustomerRank `json:"top_customers"`
}

// ProductRank is one entry of the top-product ranking, ordered by revenue.
type ProductRank struct {
	StockCode     string  `json:"stock_code"`
	Description   string  `json:"description"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity float64 `json:"total_quantity"`
	Transactions  int     `json:"transactions"`
	AvgPrice      float64 `json:"avg_price"`
}

// PriceDistribution describes average product prices across the catalog.
type PriceDistribution struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ProductMetrics groups by stock code plus description so renamed
// listings of the same code stay distinguishable.
type ProductMetrics struct {
	TotalProducts      int               `json:"total_products"`
	UniqueProductsSold int               `json:"unique_products_sold"`
	AvgProductPrice    float64           `json:"avg_product_price"`
	TopProducts        []ProductRank     `json:"top_products"`
	PriceDistribution  PriceDistribution `json:"price_distribution"`
}

// DailyAggregate is one day of activity. Moving averages are trailing and
// zero until their window is complete.
type DailyAggregate struct {
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
	Customers    int     `json:"customers"`
	Items        float64 `json:"items"`
	Revenue7DMA  float64 `json:"revenue_7d_ma"`
	Revenue30DMA float64 `json:"revenue_30d_ma"`
}

// Seasonality captures the weekly revenue rhythm. WeeklyPattern always
// carries all seven day names, zero-filled for days never traded.
type Seasonality struct {
	WeeklyPattern   map[string]float64 `json:"weekly_pattern"`
	BestDay         string             `json:"best_day"`
	WorstDay        string             `json:"worst_day"`
	WeeklyVariation float64            `json:"weekly_variation"`
}

// TimeSeriesMetrics keys daily aggregates by "YYYY-MM-DD".
type TimeSeriesMetrics struct {
	Daily       map[string]DailyAggregate `json:"daily"`
	Seasonality Seasonality               `json:"seasonality"`
}

// CountryRank is one entry of the top-country ranking, ordered by revenue.
type CountryRank struct {
	Country      string  `json:"country"`
	TotalRevenue float64 `json:"total_revenue"`
	Transactions int     `json:"transactions"`
	Customers    int     `json:"customers"`
}

// GeographicMetrics covers per-country revenue concentration.
// InternationalPercentage is the revenue share outside the single largest
// market; it is 0 when only one country is present.
type GeographicMetrics struct {
	CountryCount            int           `json:"country_count"`
	TopCountries            []CountryRank `json:"top_countries"`
	InternationalPercentage float64       `json:"international_percentage"`
}

// Revenue trend labels for month-over-month growth.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// GrowthMetrics compares the two most recent months. RevenueMOM is nil
// when fewer than two months exist or the previous month had no positive
// revenue; in the latter case RevenueTrend is TrendStable.
type GrowthMetrics struct {
	RevenueMOM           *float64 `json:"revenue_mom"`
	RevenueTrend         string   `json:"revenue_trend,omitempty"`
	LatestMonth          string   `json:"latest_month,omitempty"`
	LatestMonthRevenue   float64  `json:"latest_month_revenue,omitempty"`
	PreviousMonth        string   `json:"previous_month,omitempty"`
	PreviousMonthRevenue float64  `json:"previous_month_revenue,omitempty"`
}

// TopPerformers extracts the leading identifiers from the category
// rankings, order preserved.
type TopPerformers struct {
	TopProducts  []string `json:"top_products"`
	TopCustomers []string `json:"top_customers"`
	TopCountries []string `json:"top_countries"`
}

// HealthScores are 0-100 composites. Overall is the weighted mean of the
// three components (50/30/20) rounded to one decimal.
type HealthScores struct {
	Revenue  float64 `json:"revenue_health"`
	Customer float64 `json:"customer_health"`
	Product  float64 `json:"product_health"`
	Overall  float64 `json:"overall_health"`
}
