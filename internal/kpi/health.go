package kpi

import (
	"math"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

// topPerformers lifts the leading identifiers out of the category rankings,
// order preserved.
func topPerformers(m *domain.Metrics) domain.TopPerformers {
	tp := domain.TopPerformers{
		TopProducts:  []string{},
		TopCustomers: []string{},
		TopCountries: []string{},
	}

	for _, p := range m.Product.TopProducts {
		if len(tp.TopProducts) == config.TopPerformerProducts {
			break
		}
		tp.TopProducts = append(tp.TopProducts, p.StockCode)
	}
	for _, c := range m.Customer.TopCustomers {
		if len(tp.TopCustomers) == config.TopPerformerCustomers {
			break
		}
		tp.TopCustomers = append(tp.TopCustomers, c.CustomerID)
	}
	for _, c := range m.Geographic.TopCountries {
		if len(tp.TopCountries) == config.TopPerformerCountries {
			break
		}
		tp.TopCountries = append(tp.TopCountries, c.Country)
	}

	return tp
}

// healthScores composes the 0-100 business health figures. Each component
// starts at a neutral 50 and moves on simple evidence thresholds; the
// overall score weights revenue 50%, customer 30%, product 20%.
func healthScores(m *domain.Metrics) domain.HealthScores {
	revenue := 50.0
	if m.Summary.TotalRevenue > 10000 {
		revenue += 10
	}
	if m.Summary.TotalTransactions > 100 {
		revenue += 10
	}
	if m.Growth.RevenueMOM != nil {
		mom := *m.Growth.RevenueMOM
		if mom > 0 {
			revenue += math.Min(20, mom)
		} else {
			revenue -= math.Min(10, -mom)
		}
	}

	customer := 50.0
	switch {
	case m.Customer.CustomerCount > 50:
		customer += 20
	case m.Customer.CustomerCount > 10:
		customer += 10
	}
	if m.Customer.CustomerCount > 0 &&
		float64(m.Customer.OneTimeCustomers)/float64(m.Customer.CustomerCount) < 0.5 {
		customer += 10
	}

	product := 50.0
	switch {
	case m.Product.TotalProducts > 20:
		product += 20
	case m.Product.TotalProducts > 5:
		product += 10
	}

	revenue = clamp(revenue)
	customer = clamp(customer)
	product = clamp(product)

	return domain.HealthScores{
		Revenue:  round1(revenue),
		Customer: round1(customer),
		Product:  round1(product),
		Overall:  round1(0.5*revenue + 0.3*customer + 0.2*product),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
