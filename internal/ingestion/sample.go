package ingestion

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// The fixed demo catalog. Codes follow the retail convention of numeric
// stock codes with an optional variant suffix.
var sampleProducts = []struct {
	Code  string
	Desc  string
	Price float64
}{
	{"85123A", "WHITE HANGING HEART T-LIGHT HOLDER", 2.55},
	{"71053", "WHITE METAL LANTERN", 3.39},
	{"84406B", "CREAM CUPID HEARTS COAT HANGER", 2.75},
	{"84029G", "KNITTED UNION FLAG HOT WATER BOTTLE", 3.39},
	{"84029E", "RED WOOLLY HOTTIE WHITE HEART", 3.39},
	{"22752", "SET 7 BABUSHKA NESTING BOXES", 7.65},
	{"21730", "GLASS STAR FROSTED T-LIGHT HOLDER", 4.25},
	{"22633", "HAND WARMER UNION JACK", 1.85},
	{"22632", "HAND WARMER RED POLKA DOT", 1.85},
	{"84879", "ASSORTED COLOUR BIRD ORNAMENT", 1.69},
	{"22745", "POPPY'S PLAYHOUSE BEDROOM", 2.10},
	{"22748", "POPPY'S PLAYHOUSE KITCHEN", 2.10},
}

var sampleCountries = []string{
	"United Kingdom", "France", "Germany", "Spain",
	"Netherlands", "Belgium", "Australia",
}

const (
	sampleCustomers      = 500
	sampleReturnRate     = 0.02
	sampleMissingIDRate  = 0.05
	sampleFirstInvoiceNo = 536365
)

// GenerateSample produces a deterministic demo dataset: a pure function
// of (seed, rows). The data covers calendar 2023, includes occasional
// returns and missing customer IDs, and round-trips through the loader
// and cleaning pipeline without errors.
func GenerateSample(seed int64, rows int) *domain.RawTable {
	rng := rand.New(rand.NewSource(seed))

	yearStart := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearSeconds := int64(365 * 24 * 3600)

	table := &domain.RawTable{
		Columns: append([]string(nil), domain.RequiredColumns...),
		Rows:    make([]domain.RawRecord, 0, rows),
	}

	invoiceNo := sampleFirstInvoiceNo
	for i := 0; i < rows; i++ {
		// Roughly a third of rows open a new invoice, so invoices
		// average a few line items each.
		if i > 0 && rng.Float64() < 0.35 {
			invoiceNo++
		}

		product := sampleProducts[rng.Intn(len(sampleProducts))]
		date := yearStart.Add(time.Duration(rng.Int63n(yearSeconds)) * time.Second)

		quantity := rng.Intn(20) + 1
		if rng.Float64() < sampleReturnRate {
			quantity = -(rng.Intn(5) + 1)
		}

		customer := fmt.Sprintf("CUST%05d", rng.Intn(sampleCustomers)+1)
		if rng.Float64() < sampleMissingIDRate {
			customer = ""
		}

		country := "United Kingdom"
		if rng.Float64() >= 0.6 {
			country = sampleCountries[rng.Intn(len(sampleCountries))]
		}

		table.Rows = append(table.Rows, domain.RawRecord{
			InvoiceNo:   strconv.Itoa(invoiceNo),
			StockCode:   product.Code,
			Description: product.Desc,
			Quantity:    strconv.Itoa(quantity),
			InvoiceDate: date.Format("2/1/2006 15:04"),
			UnitPrice:   strconv.FormatFloat(product.Price, 'f', 2, 64),
			CustomerID:  customer,
			Country:     country,
		})
	}

	return table
}
