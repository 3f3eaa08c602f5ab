// Package insights renders narrative business findings from a calculated
// metrics tree: an executive summary, categorized key insights, growth
// opportunities, risk warnings and the top recommendations.
//
// Generation is rule-based and deterministic, so regenerating insights for
// unchanged metrics yields an identical report.
package insights
