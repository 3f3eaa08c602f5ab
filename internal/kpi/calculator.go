package kpi

import (
	"log/slog"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// Calculator computes the full KPI tree from cleaned records. It is
// stateless and safe for concurrent use.
type Calculator struct {
	logger *slog.Logger
}

// NewCalculator creates a KPI calculator.
func NewCalculator(logger *slog.Logger) *Calculator {
	return &Calculator{
		logger: logger.With(slog.String("component", "kpi")),
	}
}

// Calculate produces every metric category in one pass over the records.
// It never fails: an empty input yields a fully-populated zero tree with
// the error noted in the metadata, so API clients always see the same
// shape.
func (c *Calculator) Calculate(records []domain.CleanRecord) *domain.Metrics {
	start := time.Now()

	if len(records) == 0 {
		m := emptyMetrics()
		m.CalculatedAt = start.UTC()
		m.Metadata = domain.MetricsMetadata{
			TotalRowsProcessed: 0,
			Error:              "No data available",
		}
		return m
	}

	m := &domain.Metrics{
		Summary:      summaryMetrics(records),
		Revenue:      revenueMetrics(records),
		Customer:     customerMetrics(records),
		Product:      productMetrics(records),
		TimeSeries:   timeSeriesMetrics(records),
		Geographic:   geographicMetrics(records),
		CalculatedAt: start.UTC(),
	}
	m.Growth = growthMetrics(m.Revenue.Monthly)
	m.TopPerformers = topPerformers(m)
	m.HealthScores = healthScores(m)

	m.Metadata = domain.MetricsMetadata{
		TotalRowsProcessed:    len(records),
		CalculationDurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}

	c.logger.Info("metrics calculated",
		slog.Int("rows", len(records)),
		slog.Float64("total_revenue", m.Summary.TotalRevenue),
		slog.Duration("duration", time.Since(start)),
	)

	return m
}

// emptyMetrics builds the zero tree: every category present, every map
// initialized, weekday maps carrying all seven days.
func emptyMetrics() *domain.Metrics {
	return &domain.Metrics{
		Revenue: domain.RevenueMetrics{
			Monthly:   map[string]float64{},
			Quarterly: map[string]float64{},
			ByWeekday: zeroWeekdays(),
			Distribution: domain.RevenueDistribution{
				Percentiles: map[string]float64{},
			},
		},
		Customer: domain.CustomerMetrics{
			SegmentDistribution: map[string]int{},
			TopCustomers:        []domain.CustomerRank{},
		},
		Product: domain.ProductMetrics{
			TopProducts: []domain.ProductRank{},
		},
		TimeSeries: domain.TimeSeriesMetrics{
			Daily: map[string]domain.DailyAggregate{},
			Seasonality: domain.Seasonality{
				WeeklyPattern: zeroWeekdays(),
			},
		},
		Geographic: domain.GeographicMetrics{
			TopCountries: []domain.CountryRank{},
		},
		TopPerformers: domain.TopPerformers{
			TopProducts:  []string{},
			TopCustomers: []string{},
			TopCountries: []string{},
		},
	}
}

func zeroWeekdays() map[string]float64 {
	pattern := make(map[string]float64, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		pattern[d.String()] = 0
	}
	return pattern
}

// summaryMetrics computes the headline figures. The "Unknown" customer
// sentinel counts here; the customer category excludes it.
func summaryMetrics(records []domain.CleanRecord) domain.SummaryMetrics {
	invoices := make(map[string]bool)
	products := make(map[string]bool)
	customers := make(map[string]bool)

	var revenue, items float64
	var minDate, maxDate time.Time

	for i, r := range records {
		invoices[r.InvoiceNo] = true
		products[r.StockCode] = true
		customers[r.CustomerID] = true
		revenue += r.NetRevenue
		items += r.Quantity

		if i == 0 || r.InvoiceDate.Before(minDate) {
			minDate = r.InvoiceDate
		}
		if i == 0 || r.InvoiceDate.After(maxDate) {
			maxDate = r.InvoiceDate
		}
	}

	s := domain.SummaryMetrics{
		TotalRevenue:      round2(revenue),
		TotalTransactions: len(invoices),
		TotalProducts:     len(products),
		TotalCustomers:    len(customers),
		TotalItemsSold:    int(items),
		DateRange: domain.DateSpan{
			Start: minDate.Format("2006-01-02"),
			End:   maxDate.Format("2006-01-02"),
			Days:  int(maxDate.Sub(minDate).Hours() / 24),
		},
	}

	if n := len(invoices); n > 0 {
		s.AvgTransactionValue = round2(revenue / float64(n))
		s.AvgItemsPerTransaction = round1(items / float64(n))
	}

	return s
}
