package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Expense is one booked purchase. By the time a row reaches this service it
// has already been validated by the capture flow and converted to MXN, and
// its owner has been collapsed to a single opaque identity.
type Expense struct {
	ID           string
	Owner        string
	CardName     string // free-text card label, joined case-sensitively against CardRule names
	PurchaseDate civil.Date
	Amount       decimal.Decimal // MXN, > 0
	Category     string
	Merchant     string
	Description  string

	IsMSI         bool
	MSIMonths     int        // meaningful only when IsMSI; 0 means unknown
	MSIStartMonth civil.Date // zero value: start at the purchase month
}

// StartMonth returns the first calendar month an MSI expense amortizes into.
func (e Expense) StartMonth() civil.Date {
	if e.MSIStartMonth.IsValid() {
		return civil.Date{Year: e.MSIStartMonth.Year, Month: e.MSIStartMonth.Month, Day: 1}
	}
	return civil.Date{Year: e.PurchaseDate.Year, Month: e.PurchaseDate.Month, Day: 1}
}

// Bucket is one attributed (card, billing month, amount) contribution.
// Buckets for the same card and month are summed during aggregation.
type Bucket struct {
	CardName     string
	BillingMonth civil.Date // always a month start
	Amount       decimal.Decimal
}
