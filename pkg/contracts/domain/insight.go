package domain

import (
	"time"
)

// Impact and category labels for key insights.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"

	CategoryRevenue    = "revenue"
	CategoryCustomer   = "customer"
	CategoryProduct    = "product"
	CategoryOperations = "operations"
)

// Health status labels derived from the overall health score.
const (
	HealthStatusHealthy        = "healthy"
	HealthStatusStable         = "stable"
	HealthStatusNeedsAttention = "needs_attention"
)

// KeyInsight is one narrative finding generated from the metrics tree.
type KeyInsight struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Impact         string  `json:"impact"`
	Category       string  `json:"category"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

// InsightReport is the full narrative package for a dataset. It is
// deterministic given the metrics it was generated from.
type InsightReport struct {
	DatasetID           string       `json:"dataset_id"`
	ExecutiveSummary    string       `json:"executive_summary"`
	KeyInsights         []KeyInsight `json:"key_insights"`
	GrowthOpportunities []string     `json:"growth_opportunities"`
	RiskWarnings        []string     `json:"risk_warnings"`
	Recommendations     []string     `json:"top_recommendations"`
	HealthStatus        string       `json:"health_status"`
	Model               string       `json:"model"`
	Confidence          float64      `json:"confidence"`
	GeneratedAt         time.Time    `json:"generated_at"`
}
