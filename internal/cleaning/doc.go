// Package cleaning transforms raw transaction tables into analysis-ready
// records through a fixed six-stage pipeline: missing-value fills, type
// coercion, invalid-row removal, text standardization, derived columns,
// and duplicate resolution.
//
// The pipeline never fails; every anomaly is either repaired, removed, or
// flagged, and fully accounted for in the returned CleaningReport. Running
// it twice over the same data produces identical output.
package cleaning
