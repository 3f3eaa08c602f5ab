// Package ingestion loads retail transaction exports (CSV and Excel)
// into raw tables and validates them before cleaning.
//
// The loader never throws schema problems as Go errors: a readable file
// that fails validation yields a nil table plus metadata carrying the
// full validation result, so API clients see exactly which columns or
// values are wrong. Real errors (unreadable bytes, unsupported
// extensions) are returned as errors.
//
// Dates are parsed day-first throughout, matching the point-of-sale
// systems these exports come from.
package ingestion
