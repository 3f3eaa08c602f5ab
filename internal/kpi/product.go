package kpi

import (
	"sort"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

type productAgg struct {
	stockCode   string
	description string
	revenue     float64
	quantity    float64
	invoices    map[string]bool
}

// productMetrics groups by stock code plus description, so a code relisted
// under a new description ranks separately.
func productMetrics(records []domain.CleanRecord) domain.ProductMetrics {
	byProduct := make(map[string]*productAgg)
	stockCodes := make(map[string]bool)

	for _, r := range records {
		stockCodes[r.StockCode] = true

		key := r.StockCode + "\x1f" + r.Description
		agg, ok := byProduct[key]
		if !ok {
			agg = &productAgg{
				stockCode:   r.StockCode,
				description: r.Description,
				invoices:    make(map[string]bool),
			}
			byProduct[key] = agg
		}
		agg.revenue += r.NetRevenue
		agg.quantity += r.Quantity
		agg.invoices[r.InvoiceNo] = true
	}

	m := domain.ProductMetrics{
		TotalProducts:      len(byProduct),
		UniqueProductsSold: len(stockCodes),
		TopProducts:        []domain.ProductRank{},
	}
	if len(byProduct) == 0 {
		return m
	}

	products := make([]*productAgg, 0, len(byProduct))
	avgPrices := make([]float64, 0, len(byProduct))
	for _, agg := range byProduct {
		products = append(products, agg)
		avgPrices = append(avgPrices, avgPrice(agg))
	}

	m.AvgProductPrice = round2(mean(avgPrices))

	sort.Float64s(avgPrices)
	m.PriceDistribution = domain.PriceDistribution{
		Min:    round2(avgPrices[0]),
		Max:    round2(avgPrices[len(avgPrices)-1]),
		Mean:   m.AvgProductPrice,
		Median: round2(median(avgPrices)),
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].revenue != products[j].revenue {
			return products[i].revenue > products[j].revenue
		}
		return products[i].stockCode < products[j].stockCode
	})
	for _, agg := range products {
		if len(m.TopProducts) == config.TopProductsCount {
			break
		}
		m.TopProducts = append(m.TopProducts, domain.ProductRank{
			StockCode:     agg.stockCode,
			Description:   agg.description,
			TotalRevenue:  round2(agg.revenue),
			TotalQuantity: agg.quantity,
			Transactions:  len(agg.invoices),
			AvgPrice:      round2(avgPrice(agg)),
		})
	}

	return m
}

// avgPrice is the revenue-weighted unit price; zero quantity (a group of
// offsetting sales and returns) yields zero rather than a division error.
func avgPrice(agg *productAgg) float64 {
	if agg.quantity <= 0 {
		return 0
	}
	return agg.revenue / agg.quantity
}
