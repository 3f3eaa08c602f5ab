// Package services owns the orchestration between ingestion, cleaning,
// KPI calculation, insight generation and persistence. Handlers stay thin:
// services return domain values and sentinel errors, never HTTP concerns.
package services
