// Package cashflow turns raw expense and card-rule data into the monthly
// per-card cashflow table the dashboard renders.
package cashflow

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/billing"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/domain"
	"github.com/finclaro/cashflow/internal/msi"
)

// fallbackCardName labels spend with an empty payment method in the
// no-rule purchase-month view.
const fallbackCardName = "Sin método"

// BuildTable computes the cashflow table for one owner and month range.
// It is pure: identical inputs produce identical tables, and concurrent
// calls never interfere.
//
// Attribution: each non-MSI expense whose card matches an active rule
// resolves to exactly one billing month per that rule's strategy; MSI
// expenses amortize into calendar-month slices instead and never enter the
// non-MSI path. Buckets landing outside the requested range are dropped.
// An expense matching no active rule is silently excluded.
//
// The returned table always has one entry per month in every totals map,
// and Totals[m] equals the sum of Rows[i].Totals[m] for every month m.
func BuildTable(in Input) (*Table, error) {
	monthStarts, err := calendar.MonthRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	active := make(map[string]billing.Rule, len(in.Rules))
	for _, r := range in.Rules {
		if !r.Active || r.Owner != in.Owner {
			continue
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		active[r.CardName] = r
	}

	var buckets []domain.Bucket
	for _, e := range in.Expenses {
		if e.Owner != in.Owner {
			continue
		}
		rule, ok := active[e.CardName]
		if !ok {
			continue
		}

		if e.IsMSI {
			if msi.Amortizable(e) {
				buckets = append(buckets, msi.Amortize(e)...)
				continue
			}
			if in.MSIFallback == msi.FallbackSkip {
				continue
			}
			// Single-bucket fallback: attribute the full amount like a
			// regular purchase.
		}

		b, ok, err := resolveSingle(e, rule, monthStarts)
		if err != nil {
			return nil, err
		}
		if ok {
			buckets = append(buckets, b)
		}
	}

	if len(buckets) == 0 && in.FallbackToPurchaseMonth {
		buckets = purchaseMonthBuckets(in)
	}

	return assemble(monthStarts, active, buckets), nil
}

// resolveSingle attributes one non-amortized expense to at most one billing
// month. The shift-window strategy tests the expense against each statement
// month's window, mirroring the warehouse query's cross join of months and
// rules; windows tile the calendar so at most one can match.
func resolveSingle(e domain.Expense, rule billing.Rule, monthStarts []civil.Date) (domain.Bucket, bool, error) {
	switch rule.Kind {
	case billing.KindShiftWindow:
		for _, m := range monthStarts {
			if billing.WindowFor(m, rule).Contains(e.PurchaseDate) {
				return domain.Bucket{CardName: e.CardName, BillingMonth: m, Amount: e.Amount}, true, nil
			}
		}
		return domain.Bucket{}, false, nil

	case billing.KindCutDayOffset:
		bm, err := billing.BillingMonthFor(e.PurchaseDate, rule)
		if err != nil {
			return domain.Bucket{}, false, err
		}
		if bm.Before(monthStarts[0]) || monthStarts[len(monthStarts)-1].Before(bm) {
			return domain.Bucket{}, false, nil
		}
		return domain.Bucket{CardName: e.CardName, BillingMonth: bm, Amount: e.Amount}, true, nil

	default:
		return domain.Bucket{}, false, &billing.InvalidRuleError{CardName: rule.CardName, Reason: "unknown strategy"}
	}
}

// purchaseMonthBuckets groups the owner's non-MSI spend by its own purchase
// month and payment method, the view the dashboard shows when no billing
// rules produced any attribution.
func purchaseMonthBuckets(in Input) []domain.Bucket {
	var buckets []domain.Bucket
	for _, e := range in.Expenses {
		if e.Owner != in.Owner || e.IsMSI {
			continue
		}
		card := e.CardName
		if card == "" {
			card = fallbackCardName
		}
		buckets = append(buckets, domain.Bucket{
			CardName:     card,
			BillingMonth: calendar.MonthStart(e.PurchaseDate),
			Amount:       e.Amount,
		})
	}
	return buckets
}

// assemble groups buckets by card and month, zero-fills every month for
// every row, and sums the grand totals. Rows exist for every card with an
// active rule or at least one resolved bucket, sorted by card name for a
// deterministic table.
func assemble(monthStarts []civil.Date, active map[string]billing.Rule, buckets []domain.Bucket) *Table {
	months := make([]string, 0, len(monthStarts))
	inRange := make(map[string]bool, len(monthStarts))
	for _, m := range monthStarts {
		key := calendar.Key(m)
		months = append(months, key)
		inRange[key] = true
	}

	sums := make(map[string]map[string]decimal.Decimal)
	for _, b := range buckets {
		key := calendar.Key(b.BillingMonth)
		if !inRange[key] {
			continue
		}
		if sums[b.CardName] == nil {
			sums[b.CardName] = make(map[string]decimal.Decimal)
		}
		sums[b.CardName][key] = sums[b.CardName][key].Add(b.Amount)
	}

	cards := make([]string, 0, len(active)+len(sums))
	seen := make(map[string]bool)
	for name := range active {
		cards = append(cards, name)
		seen[name] = true
	}
	for name := range sums {
		if !seen[name] {
			cards = append(cards, name)
		}
	}
	sort.Strings(cards)

	table := &Table{
		Months: months,
		Rows:   make([]Row, 0, len(cards)),
		Totals: make(map[string]decimal.Decimal, len(months)),
	}
	for _, key := range months {
		table.Totals[key] = decimal.Zero
	}

	for _, name := range cards {
		row := Row{CardName: name, Totals: make(map[string]decimal.Decimal, len(months))}
		for _, key := range months {
			v := sums[name][key]
			row.Totals[key] = v
			table.Totals[key] = table.Totals[key].Add(v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
