package cleaning

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"retailpulse/internal/config"
	"retailpulse/internal/ingestion"
	"retailpulse/pkg/contracts/domain"
)

// Pipeline runs the six-stage cleaning sequence. It is stateless across
// calls; all tuning lives in the config snapshot taken at construction.
type Pipeline struct {
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewPipeline creates a cleaning pipeline.
func NewPipeline(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "cleaning")),
	}
}

// workRecord is the typed intermediate between raw text and a finished
// CleanRecord. A nil InvoiceDate marks an unparseable date awaiting
// removal.
type workRecord struct {
	InvoiceNo   string
	StockCode   string
	Description string
	CustomerID  string
	Country     string
	Quantity    float64
	UnitPrice   float64
	InvoiceDate *time.Time
}

// Clean runs all six stages in order and returns the cleaned records with
// a full report. Never returns an error: anomalies are recorded in the
// per-stage statistics instead. Safe to call on already-clean data; the
// second pass is a no-op.
func (p *Pipeline) Clean(t *domain.RawTable) ([]domain.CleanRecord, *domain.CleaningReport) {
	start := time.Now()

	report := &domain.CleaningReport{
		OriginalRows:    len(t.Rows),
		OriginalColumns: len(t.Columns),
		FinalColumns:    domain.CleanColumnCount,
		Timestamp:       start.UTC(),
	}

	if len(t.Rows) == 0 {
		report.CleaningCompleted = true
		return []domain.CleanRecord{}, report
	}

	filled, missingStats := fillMissing(t.Rows)
	report.MissingValues = missingStats

	work, coerceStats := coerce(filled)
	report.TypeConversion = coerceStats

	work, removalStats := removeInvalid(work)
	report.RowRemoval = removalStats

	work, textStats := standardizeText(work)
	report.Text = textStats

	records, derivedStats := p.derive(work)
	report.Derived = derivedStats

	records, duplicateStats := p.dedupe(records)
	report.Duplicates = duplicateStats

	report.FinalRows = len(records)
	report.RowsRemoved = report.OriginalRows - report.FinalRows
	if report.OriginalRows > 0 {
		report.RowsRemovedPercentage = round2(float64(report.RowsRemoved) / float64(report.OriginalRows) * 100)
	}
	report.CleaningCompleted = true

	p.logger.Info("cleaning completed",
		slog.Int("original_rows", report.OriginalRows),
		slog.Int("final_rows", report.FinalRows),
		slog.Float64("removal_pct", report.RowsRemovedPercentage),
		slog.Duration("duration", time.Since(start)),
	)

	return records, report
}

// fillMissing is stage 1: sentinel fills for identity and text columns,
// zero fills for numeric ones. The country fill uses the column mode so a
// predominantly single-market file stays that way.
func fillMissing(rows []domain.RawRecord) ([]domain.RawRecord, domain.MissingValueStats) {
	var stats domain.MissingValueStats

	countryMode := modeCountry(rows)

	out := make([]domain.RawRecord, len(rows))
	for i, r := range rows {
		if strings.TrimSpace(r.CustomerID) == "" {
			r.CustomerID = domain.UnknownCustomer
			stats.CustomerIDFilled++
		}
		if strings.TrimSpace(r.Description) == "" {
			r.Description = domain.UnknownProduct
			stats.DescriptionFilled++
		}
		if strings.TrimSpace(r.Country) == "" {
			r.Country = countryMode
			stats.CountryFilled++
		}
		if strings.TrimSpace(r.Quantity) == "" {
			r.Quantity = "0"
			stats.QuantityFilled++
		}
		if strings.TrimSpace(r.UnitPrice) == "" {
			r.UnitPrice = "0"
			stats.UnitPriceFilled++
		}
		out[i] = r
	}

	return out, stats
}

// modeCountry returns the most frequent non-empty country, ties broken
// lexicographically. Falls back to the Unknown sentinel when every value
// is missing.
func modeCountry(rows []domain.RawRecord) string {
	counts := make(map[string]int)
	for _, r := range rows {
		if c := strings.TrimSpace(r.Country); c != "" {
			counts[c]++
		}
	}
	if len(counts) == 0 {
		return domain.UnknownCountry
	}

	mode := ""
	best := 0
	for c, n := range counts {
		if n > best || (n == best && c < mode) {
			mode = c
			best = n
		}
	}
	return mode
}

// coerce is stage 2: id columns become trimmed text, numerics become
// float64 with zero for the unparseable, dates become time values with
// nil for the unparseable.
func coerce(rows []domain.RawRecord) ([]workRecord, domain.TypeConversionStats) {
	var stats domain.TypeConversionStats

	out := make([]workRecord, 0, len(rows))
	for _, r := range rows {
		w := workRecord{
			InvoiceNo:   strings.TrimSpace(r.InvoiceNo),
			StockCode:   strings.TrimSpace(r.StockCode),
			Description: r.Description,
			CustomerID:  strings.TrimSpace(r.CustomerID),
			Country:     r.Country,
		}

		if q, ok := ingestion.ParseNumber(r.Quantity); ok {
			w.Quantity = q
		}
		if p, ok := ingestion.ParseNumber(r.UnitPrice); ok {
			w.UnitPrice = p
		}

		if d, ok := ingestion.ParseDate(r.InvoiceDate); ok {
			w.InvoiceDate = &d
		} else {
			stats.InvalidDatesFound++
		}

		out = append(out, w)
	}

	return out, stats
}

// removeInvalid is stage 3: rows that cannot carry revenue are dropped.
// Each row is counted once, under the first matching category.
func removeInvalid(rows []workRecord) ([]workRecord, domain.RowRemovalStats) {
	var stats domain.RowRemovalStats

	out := make([]workRecord, 0, len(rows))
	for _, r := range rows {
		switch {
		case r.InvoiceDate == nil:
			stats.NullDatesRemoved++
		case r.UnitPrice <= 0:
			stats.InvalidPricesRemoved++
		case r.Quantity == 0:
			stats.ZeroQuantityRemoved++
		default:
			out = append(out, r)
			continue
		}
	}

	stats.TotalRemoved = stats.NullDatesRemoved + stats.InvalidPricesRemoved + stats.ZeroQuantityRemoved
	return out, stats
}

// standardizeText is stage 4: whitespace trimming and country casing.
// Never removes rows.
func standardizeText(rows []workRecord) ([]workRecord, domain.TextStats) {
	var stats domain.TextStats

	caser := cases.Title(language.English)
	countries := make(map[string]bool)

	out := make([]workRecord, len(rows))
	for i, r := range rows {
		if trimmed := strings.TrimSpace(r.Description); trimmed != r.Description {
			r.Description = trimmed
			stats.DescriptionsTrimmed++
		}

		styled := caser.String(strings.TrimSpace(r.Country))
		if styled != r.Country {
			r.Country = styled
			stats.CountriesRestyled++
		}
		countries[r.Country] = true

		out[i] = r
	}

	stats.DistinctCountries = len(countries)
	return out, stats
}

// derive is stage 5: revenue decomposition, calendar breakdown and data
// quality scoring.
func (p *Pipeline) derive(rows []workRecord) ([]domain.CleanRecord, domain.DerivedStats) {
	var stats domain.DerivedStats

	quantities := make([]float64, len(rows))
	prices := make([]float64, len(rows))
	for i, r := range rows {
		quantities[i] = r.Quantity
		prices[i] = r.UnitPrice
	}

	// Extreme-value thresholds: multiples of the high percentile of the
	// observed distribution, per dimension.
	qtyThreshold := percentile(quantities, p.cfg.ExtremePercentile) * p.cfg.ExtremeMultiplier
	priceThreshold := percentile(prices, p.cfg.ExtremePercentile) * p.cfg.ExtremeMultiplier

	out := make([]domain.CleanRecord, 0, len(rows))
	for _, r := range rows {
		d := *r.InvoiceDate

		value := r.Quantity * r.UnitPrice
		isReturn := r.Quantity < 0

		var sales, returns float64
		if r.Quantity > 0 {
			sales = value
		} else {
			returns = -value
		}
		net := sales - returns

		rec := domain.CleanRecord{
			InvoiceNo:   r.InvoiceNo,
			StockCode:   r.StockCode,
			Description: r.Description,
			Quantity:    r.Quantity,
			InvoiceDate: d,
			UnitPrice:   r.UnitPrice,
			CustomerID:  r.CustomerID,
			Country:     r.Country,

			TransactionValue: value,
			IsReturn:         isReturn,
			SalesRevenue:     sales,
			ReturnsValue:     returns,
			NetRevenue:       net,

			Year:       d.Year(),
			Month:      int(d.Month()),
			MonthName:  d.Month().String(),
			Quarter:    (int(d.Month())-1)/3 + 1,
			Weekday:    d.Weekday().String(),
			DayOfMonth: d.Day(),
			Hour:       d.Hour(),
			Date:       d.Format("2006-01-02"),

			TransactionRef:   fmt.Sprintf("%s_%s", r.InvoiceNo, r.StockCode),
			DataQualityScore: 1.0,
		}

		if qtyThreshold > 0 && r.Quantity > qtyThreshold {
			rec.DataQualityScore *= p.cfg.QualityPenalty
			rec.QualityFlag = "Extreme quantity"
			stats.FlaggedExtremeQuantity++
		}
		if priceThreshold > 0 && r.UnitPrice > priceThreshold {
			rec.DataQualityScore *= p.cfg.QualityPenalty
			rec.QualityFlag = "Extreme price"
			stats.FlaggedExtremePrice++
		}

		stats.GrossSales += sales
		stats.TotalReturns += returns
		stats.NetRevenue += net

		out = append(out, rec)
	}

	stats.GrossSales = round2(stats.GrossSales)
	stats.TotalReturns = round2(stats.TotalReturns)
	stats.NetRevenue = round2(stats.NetRevenue)
	if stats.GrossSales > 0 {
		stats.ReturnRate = round2(stats.TotalReturns / stats.GrossSales * 100)
	}

	return out, stats
}

// dedupe is stage 6, the three-tier duplicate policy:
//
//  1. rows identical in every base column are exact duplicates and the
//     copies are removed;
//  2. the same stock code appearing on one invoice more than once is a
//     legitimate multi-line entry and is preserved;
//  3. an invoice with more than SuspiciousClusterSize lines inside one
//     minute is flagged for review, never removed.
func (p *Pipeline) dedupe(records []domain.CleanRecord) ([]domain.CleanRecord, domain.DuplicateStats) {
	var stats domain.DuplicateStats

	// Stage stats are measured against the rows entering this stage, not
	// the pipeline's original row count.
	entering := len(records)

	seen := make(map[string]bool, len(records))
	out := make([]domain.CleanRecord, 0, len(records))
	for _, rec := range records {
		key := strings.Join([]string{
			rec.InvoiceNo, rec.StockCode, rec.Description,
			fmt.Sprintf("%v", rec.Quantity),
			rec.InvoiceDate.Format(time.RFC3339Nano),
			fmt.Sprintf("%v", rec.UnitPrice),
			rec.CustomerID, rec.Country,
		}, "\x1f")
		if seen[key] {
			stats.ExactDuplicatesRemoved++
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}

	// Legitimate invoice+stock multiples, counted but preserved.
	combos := make(map[string]int, len(out))
	for _, rec := range out {
		combos[rec.InvoiceNo+"\x1f"+rec.StockCode]++
	}
	for _, n := range combos {
		if n > 1 {
			stats.LegitimateMultipleEntries++
			stats.TotalMultipleEntryRows += n
		}
	}

	// Suspicious bursts: many lines on one invoice in the same minute.
	clusters := make(map[string][]int, len(out))
	for i, rec := range out {
		key := rec.InvoiceNo + "\x1f" + rec.InvoiceDate.Truncate(time.Minute).Format(time.RFC3339)
		clusters[key] = append(clusters[key], i)
	}
	for _, indexes := range clusters {
		if len(indexes) > p.cfg.SuspiciousClusterSize {
			for _, i := range indexes {
				out[i].NeedsReview = true
			}
			stats.SuspiciousTransactionsForReview += len(indexes)
		}
	}

	stats.FinalRows = len(out)
	stats.RowsRemoved = entering - len(out)
	if entering > 0 {
		stats.RemovalRate = round2(float64(stats.RowsRemoved) / float64(entering) * 100)
	}

	return out, stats
}
