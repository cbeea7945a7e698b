package cashflow

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/billing"
	"github.com/finclaro/cashflow/internal/domain"
	"github.com/finclaro/cashflow/internal/msi"
)

// Input is everything one table build needs. The identity collaborator has
// already collapsed user/chat duality into the opaque Owner; the data-store
// collaborator has supplied Rules and Expenses for that owner.
type Input struct {
	Owner string
	From  civil.Date // month start, inclusive
	To    civil.Date // month start, inclusive

	Rules    []billing.Rule
	Expenses []domain.Expense

	// MSIFallback decides what happens to MSI expenses missing a month
	// count. The zero value behaves like single-bucket attribution.
	MSIFallback msi.FallbackPolicy

	// FallbackToPurchaseMonth reproduces the dashboard's no-rule view:
	// when attribution yields no buckets, non-MSI spend is grouped by its
	// own purchase month and payment method instead of disappearing.
	FallbackToPurchaseMonth bool
}

// Row is one card's monthly totals. Every month in the table's range is
// present, zero where the card had no activity.
type Row struct {
	CardName string
	Totals   map[string]decimal.Decimal
}

// Table is the cashflow table the dashboard renders: ordered YYYY-MM month
// labels, one row per card, and grand totals per month.
type Table struct {
	Months []string
	Rows   []Row
	Totals map[string]decimal.Decimal
}

// RenderedTable is the wire shape of a Table, with amounts as JSON numbers.
type RenderedTable struct {
	Months []string           `json:"months"`
	Rows   []RenderedRow      `json:"rows"`
	Totals map[string]float64 `json:"totals"`
}

// RenderedRow is the wire shape of one card row.
type RenderedRow struct {
	CardName string             `json:"card_name"`
	Totals   map[string]float64 `json:"totals"`
}

// Render converts the table to its wire shape.
func (t *Table) Render() *RenderedTable {
	out := &RenderedTable{
		Months: append([]string(nil), t.Months...),
		Rows:   make([]RenderedRow, 0, len(t.Rows)),
		Totals: renderTotals(t.Totals),
	}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, RenderedRow{
			CardName: row.CardName,
			Totals:   renderTotals(row.Totals),
		})
	}
	return out
}

func renderTotals(in map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v.InexactFloat64()
	}
	return out
}
