package kpi

import (
	"fmt"
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// revenueMetrics breaks net revenue down by month, quarter and weekday and
// describes the per-record distribution.
func revenueMetrics(records []domain.CleanRecord) domain.RevenueMetrics {
	monthly := make(map[string]float64)
	quarterly := make(map[string]float64)
	weekday := zeroWeekdays()

	values := make([]float64, len(records))
	for i, r := range records {
		monthly[r.InvoiceDate.Format("2006-01")] += r.NetRevenue
		quarterly[fmt.Sprintf("Q%d %d", r.Quarter, r.Year)] += r.NetRevenue
		weekday[r.Weekday] += r.NetRevenue
		values[i] = r.NetRevenue
	}

	for k, v := range monthly {
		monthly[k] = round2(v)
	}
	for k, v := range quarterly {
		quarterly[k] = round2(v)
	}
	for k, v := range weekday {
		weekday[k] = round2(v)
	}

	return domain.RevenueMetrics{
		Monthly:      monthly,
		Quarterly:    quarterly,
		ByWeekday:    weekday,
		Distribution: distribution(values),
	}
}

func distribution(values []float64) domain.RevenueDistribution {
	if len(values) == 0 {
		return domain.RevenueDistribution{Percentiles: map[string]float64{}}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return domain.RevenueDistribution{
		Min:    round2(sorted[0]),
		Max:    round2(sorted[len(sorted)-1]),
		Mean:   round2(mean(values)),
		Median: round2(median(values)),
		StdDev: round2(sampleStd(values)),
		Percentiles: map[string]float64{
			"25": round2(percentile(values, 0.25)),
			"50": round2(percentile(values, 0.50)),
			"75": round2(percentile(values, 0.75)),
			"90": round2(percentile(values, 0.90)),
		},
	}
}

// growthMetrics compares the two most recent calendar months. A previous
// month with no positive revenue makes month-over-month undefined; the
// trend is then reported as stable rather than inventing a percentage.
func growthMetrics(monthly map[string]float64) domain.GrowthMetrics {
	if len(monthly) < 2 {
		return domain.GrowthMetrics{}
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	latest := months[len(months)-1]
	previous := months[len(months)-2]

	g := domain.GrowthMetrics{
		LatestMonth:          latest,
		LatestMonthRevenue:   monthly[latest],
		PreviousMonth:        previous,
		PreviousMonthRevenue: monthly[previous],
	}

	if g.PreviousMonthRevenue <= 0 {
		g.RevenueTrend = domain.TrendStable
		return g
	}

	mom := round2((g.LatestMonthRevenue - g.PreviousMonthRevenue) / g.PreviousMonthRevenue * 100)
	g.RevenueMOM = &mom
	if mom > 0 {
		g.RevenueTrend = domain.TrendIncreasing
	} else {
		g.RevenueTrend = domain.TrendDecreasing
	}

	return g
}
