// Package kpi turns cleaned transaction records into the nine-category
// metrics tree served by the API: summary, revenue, customer, product,
// time series, geographic, growth, top performers and health scores.
//
// Net revenue is the single revenue figure used everywhere. Calculation
// never fails; degenerate inputs produce a zero tree with an explanation
// in the metadata.
package kpi
