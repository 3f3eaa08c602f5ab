package kpi

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func testCalculator() *Calculator {
	return NewCalculator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// tx builds a cleaned record the way the pipeline would, deriving the
// revenue decomposition and calendar fields from its arguments.
func tx(invoice, stock, customer, country string, qty, price float64, date time.Time) domain.CleanRecord {
	value := qty * price
	var sales, returns float64
	if qty > 0 {
		sales = value
	} else {
		returns = -value
	}

	return domain.CleanRecord{
		InvoiceNo:   invoice,
		StockCode:   stock,
		Description: "PRODUCT " + stock,
		Quantity:    qty,
		InvoiceDate: date,
		UnitPrice:   price,
		CustomerID:  customer,
		Country:     country,

		TransactionValue: value,
		IsReturn:         qty < 0,
		SalesRevenue:     sales,
		ReturnsValue:     returns,
		NetRevenue:       sales - returns,

		Year:      date.Year(),
		Month:     int(date.Month()),
		MonthName: date.Month().String(),
		Quarter:   (int(date.Month())-1)/3 + 1,
		Weekday:   date.Weekday().String(),
		Hour:      date.Hour(),
		Date:      date.Format("2006-01-02"),

		DataQualityScore: 1.0,
	}
}

func day(d int) time.Time {
	return time.Date(2023, time.November, d, 10, 0, 0, 0, time.UTC)
}

func TestCalculate_Summary(t *testing.T) {
	// Five line items across four invoices, net revenues
	// 50, 60, 100, 100 and 20.
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1001", "B", "C1", "United Kingdom", 6, 10, day(1)),
		tx("1002", "A", "C2", "France", 10, 10, day(2)),
		tx("1003", "C", "C3", "United Kingdom", 10, 10, day(3)),
		tx("1004", "B", "C1", "Germany", 2, 10, day(4)),
	}

	m := testCalculator().Calculate(records)

	s := m.Summary
	assert.InDelta(t, 330.0, s.TotalRevenue, 0.001)
	assert.Equal(t, 4, s.TotalTransactions)
	assert.Equal(t, 3, s.TotalProducts)
	assert.Equal(t, 3, s.TotalCustomers)
	assert.Equal(t, 33, s.TotalItemsSold)
	assert.InDelta(t, 82.5, s.AvgTransactionValue, 0.001)
	assert.InDelta(t, 8.3, s.AvgItemsPerTransaction, 0.001)
	assert.Equal(t, "2023-11-01", s.DateRange.Start)
	assert.Equal(t, "2023-11-04", s.DateRange.End)
	assert.Equal(t, 3, s.DateRange.Days)

	assert.InDelta(t, 66.0, m.Revenue.Distribution.Mean, 0.001)
	assert.InDelta(t, 20.0, m.Revenue.Distribution.Min, 0.001)
	assert.InDelta(t, 100.0, m.Revenue.Distribution.Max, 0.001)

	assert.Equal(t, 5, m.Metadata.TotalRowsProcessed)
	assert.Empty(t, m.Metadata.Error)
}

func TestCalculate_ReturnsReduceRevenue(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1002", "A", "C1", "United Kingdom", -2, 10, day(2)),
		tx("1003", "B", "C2", "United Kingdom", 20, 10, day(3)),
	}

	m := testCalculator().Calculate(records)
	assert.InDelta(t, 230.0, m.Summary.TotalRevenue, 0.001)
}

func TestCalculate_EmptyInput(t *testing.T) {
	m := testCalculator().Calculate(nil)

	assert.Equal(t, 0, m.Metadata.TotalRowsProcessed)
	assert.Equal(t, "No data available", m.Metadata.Error)

	assert.Zero(t, m.Summary.TotalRevenue)
	assert.NotNil(t, m.Revenue.Monthly)
	assert.Len(t, m.Revenue.ByWeekday, 7)
	assert.NotNil(t, m.Customer.SegmentDistribution)
	assert.NotNil(t, m.TimeSeries.Daily)
	assert.Len(t, m.TimeSeries.Seasonality.WeeklyPattern, 7)
	assert.Nil(t, m.Growth.RevenueMOM)
	assert.Zero(t, m.HealthScores.Overall)
}

func TestCalculate_WeekdayRevenueZeroFilled(t *testing.T) {
	// A single Wednesday of trading still reports all seven days.
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
	}

	m := testCalculator().Calculate(records)

	require.Len(t, m.Revenue.ByWeekday, 7)
	assert.InDelta(t, 50.0, m.Revenue.ByWeekday["Wednesday"], 0.001)
	assert.Zero(t, m.Revenue.ByWeekday["Sunday"])
}

func TestCustomerMetrics_ExcludesUnknown(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1002", "A", "C1", "United Kingdom", 5, 10, day(2)),
		tx("1003", "A", domain.UnknownCustomer, "United Kingdom", 100, 10, day(3)),
	}

	m := testCalculator().Calculate(records)

	assert.Equal(t, 1, m.Customer.CustomerCount)
	assert.Equal(t, 1, m.Customer.ActiveCustomers)
	assert.Equal(t, 0, m.Customer.OneTimeCustomers)
	assert.InDelta(t, 100.0, m.Customer.AvgCustomerValue, 0.001)

	// The sentinel still counts in the headline figure.
	assert.Equal(t, 2, m.Summary.TotalCustomers)

	require.Len(t, m.Customer.TopCustomers, 1)
	top := m.Customer.TopCustomers[0]
	assert.Equal(t, "C1", top.CustomerID)
	assert.Equal(t, 2, top.Transactions)
	assert.InDelta(t, 50.0, top.AvgTransaction, 0.001)
}

func TestCustomerMetrics_DegenerateSegmentsAllMedium(t *testing.T) {
	// Three customers with identical spend: the quartile cut collapses.
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1002", "A", "C2", "United Kingdom", 5, 10, day(1)),
		tx("1003", "A", "C3", "United Kingdom", 5, 10, day(1)),
	}

	m := testCalculator().Calculate(records)
	assert.Equal(t, map[string]int{domain.SegmentMedium: 3}, m.Customer.SegmentDistribution)
}

func TestCustomerMetrics_SegmentQuartiles(t *testing.T) {
	records := make([]domain.CleanRecord, 0, 8)
	amounts := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	for i, a := range amounts {
		records = append(records, tx(
			"10"+string(rune('0'+i)), "A", "C"+string(rune('0'+i)),
			"United Kingdom", a, 10, day(1),
		))
	}

	m := testCalculator().Calculate(records)

	dist := m.Customer.SegmentDistribution
	assert.Equal(t, 2, dist[domain.SegmentLow])
	assert.Equal(t, 2, dist[domain.SegmentMedium])
	assert.Equal(t, 2, dist[domain.SegmentHigh])
	assert.Equal(t, 2, dist[domain.SegmentVIP])
}

func TestCustomerMetrics_RFMAgainstDatasetMaxDate(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1002", "A", "C2", "United Kingdom", 5, 10, day(11)),
	}

	m := testCalculator().Calculate(records)

	// C1 is 10 days old relative to the last invoice, C2 is current.
	assert.InDelta(t, 5.0, m.Customer.RFMSummary.AvgRecencyDays, 0.001)
	assert.InDelta(t, 1.0, m.Customer.RFMSummary.AvgFrequency, 0.001)
	assert.InDelta(t, 50.0, m.Customer.RFMSummary.AvgMonetary, 0.001)
}

func TestCustomerMetrics_RecencyIgnoresUnknownRows(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1002", "A", "C2", "United Kingdom", 5, 10, day(11)),
		// A later anonymous sale must not age the identified customers.
		tx("1003", "A", domain.UnknownCustomer, "United Kingdom", 5, 10, day(21)),
	}

	m := testCalculator().Calculate(records)

	assert.InDelta(t, 5.0, m.Customer.RFMSummary.AvgRecencyDays, 0.001)
}

func TestProductMetrics_GroupsByCodeAndDescription(t *testing.T) {
	a := tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1))
	relisted := tx("1002", "A", "C2", "United Kingdom", 5, 10, day(2))
	relisted.Description = "RENAMED PRODUCT A"

	m := testCalculator().Calculate([]domain.CleanRecord{a, relisted})

	assert.Equal(t, 2, m.Product.TotalProducts)
	assert.Equal(t, 1, m.Product.UniqueProductsSold)
}

func TestProductMetrics_AvgPriceGuarded(t *testing.T) {
	// Sale and return cancel out: zero quantity must not divide.
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
		tx("1002", "A", "C1", "United Kingdom", -5, 10, day(2)),
	}

	m := testCalculator().Calculate(records)
	require.Len(t, m.Product.TopProducts, 1)
	assert.Zero(t, m.Product.TopProducts[0].AvgPrice)
}

func TestTimeSeries_MovingAverages(t *testing.T) {
	records := make([]domain.CleanRecord, 0, 8)
	for d := 1; d <= 8; d++ {
		records = append(records, tx("10"+string(rune('0'+d)), "A", "C1", "United Kingdom", 1, 10, day(d)))
	}

	m := testCalculator().Calculate(records)
	require.Len(t, m.TimeSeries.Daily, 8)

	// Zero until the 7-day window is complete.
	assert.Zero(t, m.TimeSeries.Daily["2023-11-06"].Revenue7DMA)
	assert.InDelta(t, 10.0, m.TimeSeries.Daily["2023-11-07"].Revenue7DMA, 0.001)
	assert.InDelta(t, 10.0, m.TimeSeries.Daily["2023-11-08"].Revenue7DMA, 0.001)
	assert.Zero(t, m.TimeSeries.Daily["2023-11-08"].Revenue30DMA)
}

func TestTimeSeries_SeasonalityIsPerRecordMean(t *testing.T) {
	// Two Mondays, three records in total: the weekly pattern averages
	// records, not daily totals.
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 1, 10, day(6)),
		tx("1002", "B", "C2", "United Kingdom", 1, 20, day(6)),
		tx("1003", "C", "C3", "United Kingdom", 1, 30, day(13)),
	}

	m := testCalculator().Calculate(records)

	assert.InDelta(t, 20.0, m.TimeSeries.Seasonality.WeeklyPattern["Monday"], 0.001)
	assert.Equal(t, "Monday", m.TimeSeries.Seasonality.BestDay)
}

func TestGeographic_SingleCountryIsDomestic(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
	}

	m := testCalculator().Calculate(records)
	assert.Equal(t, 1, m.Geographic.CountryCount)
	assert.Zero(t, m.Geographic.InternationalPercentage)
}

func TestGeographic_InternationalShare(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 8, 10, day(1)),
		tx("1002", "A", "C2", "France", 2, 10, day(2)),
	}

	m := testCalculator().Calculate(records)
	assert.Equal(t, 2, m.Geographic.CountryCount)
	assert.InDelta(t, 20.0, m.Geographic.InternationalPercentage, 0.001)
	require.NotEmpty(t, m.Geographic.TopCountries)
	assert.Equal(t, "United Kingdom", m.Geographic.TopCountries[0].Country)
}

func TestGrowth_MonthOverMonth(t *testing.T) {
	nov := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)

	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 10, 10, nov),
		tx("1002", "A", "C1", "United Kingdom", 12, 10, dec),
	}

	m := testCalculator().Calculate(records)

	g := m.Growth
	require.NotNil(t, g.RevenueMOM)
	assert.InDelta(t, 20.0, *g.RevenueMOM, 0.001)
	assert.Equal(t, domain.TrendIncreasing, g.RevenueTrend)
	assert.Equal(t, "2023-12", g.LatestMonth)
	assert.Equal(t, "2023-11", g.PreviousMonth)
}

func TestGrowth_DecliningRevenue(t *testing.T) {
	nov := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)

	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 10, 10, nov),
		tx("1002", "A", "C1", "United Kingdom", 5, 10, dec),
	}

	g := testCalculator().Calculate(records).Growth
	require.NotNil(t, g.RevenueMOM)
	assert.InDelta(t, -50.0, *g.RevenueMOM, 0.001)
	assert.Equal(t, domain.TrendDecreasing, g.RevenueTrend)
}

func TestGrowth_NonPositivePreviousMonthIsStable(t *testing.T) {
	nov := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)

	// November is all returns: net revenue below zero.
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", -10, 10, nov),
		tx("1002", "A", "C1", "United Kingdom", 5, 10, dec),
	}

	g := testCalculator().Calculate(records).Growth
	assert.Nil(t, g.RevenueMOM)
	assert.Equal(t, domain.TrendStable, g.RevenueTrend)
}

func TestGrowth_SingleMonth(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 10, 10, day(1)),
	}

	g := testCalculator().Calculate(records).Growth
	assert.Nil(t, g.RevenueMOM)
	assert.Empty(t, g.RevenueTrend)
}

func TestHealthScores_Bounds(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 5, 10, day(1)),
	}

	h := testCalculator().Calculate(records).HealthScores

	for _, score := range []float64{h.Revenue, h.Customer, h.Product, h.Overall} {
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
	assert.InDelta(t, 0.5*h.Revenue+0.3*h.Customer+0.2*h.Product, h.Overall, 0.05)
}

func TestTopPerformers_OrderPreserved(t *testing.T) {
	records := []domain.CleanRecord{
		tx("1001", "A", "C1", "United Kingdom", 1, 10, day(1)),
		tx("1002", "B", "C2", "France", 5, 10, day(2)),
		tx("1003", "C", "C3", "Germany", 3, 10, day(3)),
	}

	tp := testCalculator().Calculate(records).TopPerformers
	// Product ids, ranked by revenue.
	assert.Equal(t, []string{"B", "C", "A"}, tp.TopProducts)
	assert.Equal(t, []string{"C2", "C3", "C1"}, tp.TopCustomers)
	assert.Equal(t, []string{"France", "Germany", "United Kingdom"}, tp.TopCountries)
}

func TestStatsHelpers(t *testing.T) {
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}))
	assert.Zero(t, sampleStd([]float64{5}))
	assert.InDelta(t, 1.0, sampleStd([]float64{1, 2, 3}), 0.001)
	assert.Equal(t, 0.0, percentile(nil, 0.9))
}
