package insights

import (
	"fmt"
	"log/slog"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// modelName identifies the rule-based narrative engine in stored reports.
const modelName = "retailpulse-rules-v1"

// Risk thresholds. A one-time-buyer majority, a double-digit monthly
// decline, or a catalog carried by one product all warrant a warning.
const (
	oneTimeRiskRatio       = 0.5
	momDeclineThreshold    = -10.0
	concentrationThreshold = 40.0
)

// Generator produces narrative insight reports from a metrics tree. Output
// is deterministic given the metrics.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates an insight generator.
func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{
		logger: logger.With(slog.String("component", "insights")),
	}
}

// Generate builds the full narrative package for one dataset.
func (g *Generator) Generate(datasetID string, m *domain.Metrics) *domain.InsightReport {
	report := &domain.InsightReport{
		DatasetID:           datasetID,
		ExecutiveSummary:    executiveSummary(m),
		KeyInsights:         keyInsights(m),
		GrowthOpportunities: growthOpportunities(m),
		RiskWarnings:        riskWarnings(m),
		HealthStatus:        healthStatus(m.HealthScores.Overall),
		Model:               modelName,
		GeneratedAt:         time.Now().UTC(),
	}

	report.Recommendations = topRecommendations(report.KeyInsights)
	report.Confidence = overallConfidence(report.KeyInsights)

	g.logger.Info("insights generated",
		slog.String("dataset_id", datasetID),
		slog.Int("key_insights", len(report.KeyInsights)),
		slog.String("health_status", report.HealthStatus),
	)

	return report
}

func healthStatus(overall float64) string {
	switch {
	case overall >= 70:
		return domain.HealthStatusHealthy
	case overall >= 40:
		return domain.HealthStatusStable
	default:
		return domain.HealthStatusNeedsAttention
	}
}

func executiveSummary(m *domain.Metrics) string {
	s := m.Summary
	if s.TotalTransactions == 0 {
		return "No transaction activity was found in this dataset."
	}

	summary := fmt.Sprintf(
		"The business processed %d transactions worth %.2f in net revenue across %d customers and %d products between %s and %s.",
		s.TotalTransactions, s.TotalRevenue, s.TotalCustomers, s.TotalProducts,
		s.DateRange.Start, s.DateRange.End,
	)

	if m.Growth.RevenueMOM != nil {
		summary += fmt.Sprintf(" Month-over-month revenue is %s at %.1f%%.",
			m.Growth.RevenueTrend, *m.Growth.RevenueMOM)
	}

	return summary
}

func keyInsights(m *domain.Metrics) []domain.KeyInsight {
	insights := []domain.KeyInsight{}

	if m.Growth.RevenueMOM != nil {
		mom := *m.Growth.RevenueMOM
		impact := domain.ImpactMedium
		if mom > 10 || mom < -10 {
			impact = domain.ImpactHigh
		}
		insights = append(insights, domain.KeyInsight{
			Title: fmt.Sprintf("Revenue %s month-over-month", m.Growth.RevenueTrend),
			Description: fmt.Sprintf("Net revenue moved from %.2f in %s to %.2f in %s (%.1f%%).",
				m.Growth.PreviousMonthRevenue, m.Growth.PreviousMonth,
				m.Growth.LatestMonthRevenue, m.Growth.LatestMonth, mom),
			Impact:         impact,
			Category:       domain.CategoryRevenue,
			Confidence:     0.9,
			Recommendation: growthRecommendation(mom),
		})
	}

	if c := m.Customer; c.CustomerCount > 0 {
		repeatShare := float64(c.ActiveCustomers) / float64(c.CustomerCount) * 100
		insights = append(insights, domain.KeyInsight{
			Title: "Customer retention profile",
			Description: fmt.Sprintf("%d of %d identified customers (%.1f%%) purchased more than once.",
				c.ActiveCustomers, c.CustomerCount, repeatShare),
			Impact:         retentionImpact(c),
			Category:       domain.CategoryCustomer,
			Confidence:     0.85,
			Recommendation: "Target one-time buyers with a follow-up campaign within 30 days of purchase.",
		})
	}

	if len(m.Product.TopProducts) > 0 {
		top := m.Product.TopProducts[0]
		share := revenueShare(top.TotalRevenue, m.Summary.TotalRevenue)
		insights = append(insights, domain.KeyInsight{
			Title: "Leading product",
			Description: fmt.Sprintf("%q generates %.2f in revenue (%.1f%% of the total).",
				top.Description, top.TotalRevenue, share),
			Impact:         concentrationImpact(share),
			Category:       domain.CategoryProduct,
			Confidence:     0.9,
			Recommendation: "Protect stock levels of the top seller and cross-promote adjacent products.",
		})
	}

	if s := m.TimeSeries.Seasonality; s.BestDay != "" && s.BestDay != s.WorstDay {
		insights = append(insights, domain.KeyInsight{
			Title: "Weekly trading rhythm",
			Description: fmt.Sprintf("%s is the strongest trading day and %s the weakest, a %.1f%% swing against the weekly average.",
				s.BestDay, s.WorstDay, s.WeeklyVariation),
			Impact:         domain.ImpactLow,
			Category:       domain.CategoryOperations,
			Confidence:     0.8,
			Recommendation: fmt.Sprintf("Schedule promotions and staffing around the %s peak.", s.BestDay),
		})
	}

	return insights
}

func growthRecommendation(mom float64) string {
	if mom > 0 {
		return "Reinforce the channels behind the current growth before expanding into new ones."
	}
	return "Investigate the revenue decline: compare top-product and top-market performance against the prior month."
}

func retentionImpact(c domain.CustomerMetrics) string {
	if float64(c.OneTimeCustomers)/float64(c.CustomerCount) > oneTimeRiskRatio {
		return domain.ImpactHigh
	}
	return domain.ImpactMedium
}

func concentrationImpact(share float64) string {
	if share > concentrationThreshold {
		return domain.ImpactHigh
	}
	return domain.ImpactMedium
}

func revenueShare(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

func growthOpportunities(m *domain.Metrics) []string {
	opportunities := []string{}

	if m.Geographic.CountryCount > 1 && m.Geographic.InternationalPercentage < 25 {
		opportunities = append(opportunities, fmt.Sprintf(
			"International sales are only %.1f%% of revenue across %d countries; the export channel has room to grow.",
			m.Geographic.InternationalPercentage, m.Geographic.CountryCount))
	}

	if c := m.Customer; c.CustomerCount > 0 && c.OneTimeCustomers > c.ActiveCustomers {
		opportunities = append(opportunities, fmt.Sprintf(
			"Converting even a fraction of %d one-time buyers into repeat customers would lift revenue materially.",
			c.OneTimeCustomers))
	}

	if vip := m.Customer.SegmentDistribution[domain.SegmentVIP]; vip > 0 {
		opportunities = append(opportunities, fmt.Sprintf(
			"A VIP tier of %d customers exists; a loyalty program would deepen their spend.", vip))
	}

	return opportunities
}

func riskWarnings(m *domain.Metrics) []string {
	warnings := []string{}

	if c := m.Customer; c.CustomerCount > 0 {
		ratio := float64(c.OneTimeCustomers) / float64(c.CustomerCount)
		if ratio > oneTimeRiskRatio {
			warnings = append(warnings, fmt.Sprintf(
				"%.0f%% of customers bought only once; revenue depends on continuous new-customer acquisition.",
				ratio*100))
		}
	}

	if m.Growth.RevenueMOM != nil && *m.Growth.RevenueMOM < momDeclineThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"Revenue fell %.1f%% month-over-month, beyond normal fluctuation.", *m.Growth.RevenueMOM))
	}

	if len(m.Product.TopProducts) > 0 {
		share := revenueShare(m.Product.TopProducts[0].TotalRevenue, m.Summary.TotalRevenue)
		if share > concentrationThreshold {
			warnings = append(warnings, fmt.Sprintf(
				"%.1f%% of revenue comes from a single product; a supply disruption would be severe.", share))
		}
	}

	return warnings
}

// topRecommendations lifts the three highest-impact recommendations out of
// the key insights, preserving insight order within the same impact level.
func topRecommendations(insights []domain.KeyInsight) []string {
	recommendations := []string{}
	for _, impact := range []string{domain.ImpactHigh, domain.ImpactMedium, domain.ImpactLow} {
		for _, in := range insights {
			if len(recommendations) == 3 {
				return recommendations
			}
			if in.Impact == impact && in.Recommendation != "" {
				recommendations = append(recommendations, in.Recommendation)
			}
		}
	}
	return recommendations
}

func overallConfidence(insights []domain.KeyInsight) float64 {
	if len(insights) == 0 {
		return 0
	}
	var sum float64
	for _, in := range insights {
		sum += in.Confidence
	}
	// Two decimals is plenty for a heuristic figure.
	return float64(int(sum/float64(len(insights))*100)) / 100
}
