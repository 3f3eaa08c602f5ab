package kpi

import (
	"sort"
	"time"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

type customerAgg struct {
	id          string
	spent       float64
	invoices    map[string]bool
	lastInvoice time.Time
}

// customerMetrics covers identified customers only. Records whose
// CustomerID carries the Unknown sentinel are revenue without an owner and
// are excluded from every figure here.
func customerMetrics(records []domain.CleanRecord) domain.CustomerMetrics {
	byCustomer := make(map[string]*customerAgg)
	var maxDate time.Time

	for _, r := range records {
		if r.CustomerID == domain.UnknownCustomer {
			continue
		}
		// Recency is measured against the latest identified transaction;
		// Unknown rows do not move the baseline.
		if r.InvoiceDate.After(maxDate) {
			maxDate = r.InvoiceDate
		}

		agg, ok := byCustomer[r.CustomerID]
		if !ok {
			agg = &customerAgg{id: r.CustomerID, invoices: make(map[string]bool)}
			byCustomer[r.CustomerID] = agg
		}
		agg.spent += r.NetRevenue
		agg.invoices[r.InvoiceNo] = true
		if r.InvoiceDate.After(agg.lastInvoice) {
			agg.lastInvoice = r.InvoiceDate
		}
	}

	m := domain.CustomerMetrics{
		SegmentDistribution: map[string]int{},
		TopCustomers:        []domain.CustomerRank{},
	}
	if len(byCustomer) == 0 {
		return m
	}

	customers := make([]*customerAgg, 0, len(byCustomer))
	spends := make([]float64, 0, len(byCustomer))
	var totalRecency, totalFrequency, totalSpend float64

	for _, agg := range byCustomer {
		customers = append(customers, agg)
		spends = append(spends, agg.spent)

		if len(agg.invoices) > 1 {
			m.ActiveCustomers++
		} else {
			m.OneTimeCustomers++
		}

		totalRecency += maxDate.Sub(agg.lastInvoice).Hours() / 24
		totalFrequency += float64(len(agg.invoices))
		totalSpend += agg.spent
	}

	n := float64(len(customers))
	m.CustomerCount = len(customers)
	m.AvgCustomerValue = round2(totalSpend / n)
	m.MedianCustomerValue = round2(median(spends))
	m.SegmentDistribution = segmentBySpend(customers)
	m.RFMSummary = domain.RFMSummary{
		AvgRecencyDays: round1(totalRecency / n),
		AvgFrequency:   round1(totalFrequency / n),
		AvgMonetary:    round2(totalSpend / n),
	}

	sort.Slice(customers, func(i, j int) bool {
		if customers[i].spent != customers[j].spent {
			return customers[i].spent > customers[j].spent
		}
		return customers[i].id < customers[j].id
	})
	for _, agg := range customers {
		if len(m.TopCustomers) == config.TopCustomersCount {
			break
		}
		tx := len(agg.invoices)
		m.TopCustomers = append(m.TopCustomers, domain.CustomerRank{
			CustomerID:     agg.id,
			TotalSpent:     round2(agg.spent),
			Transactions:   tx,
			AvgTransaction: round2(agg.spent / float64(tx)),
		})
	}

	return m
}

// segmentBySpend assigns spend quartiles. When the quartile boundaries are
// not strictly increasing (few customers, tied spends) the cut is
// meaningless and every customer is reported as Medium.
func segmentBySpend(customers []*customerAgg) map[string]int {
	spends := make([]float64, len(customers))
	for i, c := range customers {
		spends[i] = c.spent
	}

	b25 := percentile(spends, 0.25)
	b50 := percentile(spends, 0.50)
	b75 := percentile(spends, 0.75)

	segments := map[string]int{}
	if !(b25 < b50 && b50 < b75) {
		segments[domain.SegmentMedium] = len(customers)
		return segments
	}

	for _, c := range customers {
		switch {
		case c.spent <= b25:
			segments[domain.SegmentLow]++
		case c.spent <= b50:
			segments[domain.SegmentMedium]++
		case c.spent <= b75:
			segments[domain.SegmentHigh]++
		default:
			segments[domain.SegmentVIP]++
		}
	}
	return segments
}
