package kpi

import (
	"sort"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

type countryAgg struct {
	country   string
	revenue   float64
	invoices  map[string]bool
	customers map[string]bool
}

// geographicMetrics measures revenue concentration per country.
// InternationalPercentage is the revenue share outside the single largest
// market and is 0 for single-country datasets.
func geographicMetrics(records []domain.CleanRecord) domain.GeographicMetrics {
	byCountry := make(map[string]*countryAgg)
	var total float64

	for _, r := range records {
		agg, ok := byCountry[r.Country]
		if !ok {
			agg = &countryAgg{
				country:   r.Country,
				invoices:  make(map[string]bool),
				customers: make(map[string]bool),
			}
			byCountry[r.Country] = agg
		}
		agg.revenue += r.NetRevenue
		agg.invoices[r.InvoiceNo] = true
		agg.customers[r.CustomerID] = true
		total += r.NetRevenue
	}

	m := domain.GeographicMetrics{
		CountryCount: len(byCountry),
		TopCountries: []domain.CountryRank{},
	}
	if len(byCountry) == 0 {
		return m
	}

	countries := make([]*countryAgg, 0, len(byCountry))
	for _, agg := range byCountry {
		countries = append(countries, agg)
	}
	sort.Slice(countries, func(i, j int) bool {
		if countries[i].revenue != countries[j].revenue {
			return countries[i].revenue > countries[j].revenue
		}
		return countries[i].country < countries[j].country
	})

	for _, agg := range countries {
		if len(m.TopCountries) == config.TopCountriesCount {
			break
		}
		m.TopCountries = append(m.TopCountries, domain.CountryRank{
			Country:      agg.country,
			TotalRevenue: round2(agg.revenue),
			Transactions: len(agg.invoices),
			Customers:    len(agg.customers),
		})
	}

	if len(countries) > 1 && total > 0 {
		m.InternationalPercentage = round2((1 - countries[0].revenue/total) * 100)
	}

	return m
}
