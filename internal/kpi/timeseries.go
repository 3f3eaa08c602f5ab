package kpi

import (
	"sort"

	"retailpulse/pkg/contracts/domain"
)

type dailyAgg struct {
	revenue   float64
	invoices  map[string]bool
	customers map[string]bool
	items     float64
}

// timeSeriesMetrics aggregates activity per trading day and layers
// trailing moving averages over the revenue series. Averages stay zero
// until their window is complete, so early days never report a misleading
// partial-window figure.
func timeSeriesMetrics(records []domain.CleanRecord) domain.TimeSeriesMetrics {
	byDay := make(map[string]*dailyAgg)
	for _, r := range records {
		agg, ok := byDay[r.Date]
		if !ok {
			agg = &dailyAgg{
				invoices:  make(map[string]bool),
				customers: make(map[string]bool),
			}
			byDay[r.Date] = agg
		}
		agg.revenue += r.NetRevenue
		agg.invoices[r.InvoiceNo] = true
		agg.customers[r.CustomerID] = true
		agg.items += r.Quantity
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	daily := make(map[string]domain.DailyAggregate, len(byDay))
	revenues := make([]float64, len(days))
	for i, d := range days {
		agg := byDay[d]
		revenues[i] = agg.revenue
		daily[d] = domain.DailyAggregate{
			Revenue:      round2(agg.revenue),
			Transactions: len(agg.invoices),
			Customers:    len(agg.customers),
			Items:        agg.items,
			Revenue7DMA:  trailingAvg(revenues, i, 7),
			Revenue30DMA: trailingAvg(revenues, i, 30),
		}
	}

	return domain.TimeSeriesMetrics{
		Daily:       daily,
		Seasonality: seasonality(records),
	}
}

// trailingAvg averages the window ending at index i, or 0 while the series
// is still shorter than the window.
func trailingAvg(values []float64, i, window int) float64 {
	if i+1 < window {
		return 0
	}
	var sum float64
	for _, v := range values[i+1-window : i+1] {
		sum += v
	}
	return round2(sum / float64(window))
}

// seasonality reports the mean per-record revenue of each weekday across
// the dataset, zero-filled for days never traded.
func seasonality(records []domain.CleanRecord) domain.Seasonality {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.Weekday] += r.NetRevenue
		counts[r.Weekday]++
	}

	pattern := zeroWeekdays()
	best, worst := "", ""
	var bestVal, worstVal float64
	values := make([]float64, 0, len(sums))

	for weekday, total := range sums {
		avg := total / float64(counts[weekday])
		pattern[weekday] = round2(avg)
		values = append(values, avg)

		if best == "" || avg > bestVal || (avg == bestVal && weekday < best) {
			best, bestVal = weekday, avg
		}
		if worst == "" || avg < worstVal || (avg == worstVal && weekday < worst) {
			worst, worstVal = weekday, avg
		}
	}

	s := domain.Seasonality{
		WeeklyPattern: pattern,
		BestDay:       best,
		WorstDay:      worst,
	}
	if m := mean(values); m != 0 {
		s.WeeklyVariation = round2((bestVal - worstVal) / m * 100)
	}
	return s
}
