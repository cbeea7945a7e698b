package bigquery

import (
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/billing"
	"github.com/finclaro/cashflow/internal/domain"
)

// NUMERIC columns carry up to 9 fractional digits; amounts are converted
// at that precision and trimmed by decimal itself.
const numericScale = 9

// expenseFromRow converts a warehouse row to the domain expense the engine
// consumes, collapsing user/chat identity to the single opaque owner.
func expenseFromRow(r *ExpenseRow, owner string) domain.Expense {
	e := domain.Expense{
		ID:           r.ID,
		Owner:        owner,
		CardName:     r.PaymentMethod,
		PurchaseDate: r.PurchaseDate,
		Category:     r.Category.StringVal,
		Merchant:     r.Merchant.StringVal,
		Description:  r.Description.StringVal,
		IsMSI:        r.IsMSI.Valid && r.IsMSI.Bool,
	}
	if r.AmountMXN != nil {
		e.Amount = decimal.NewFromBigRat(r.AmountMXN, numericScale)
	}
	if r.MSIMonths.Valid && r.MSIMonths.Int64 > 0 {
		e.MSIMonths = int(r.MSIMonths.Int64)
	}
	if r.MSIStartMonth.Valid {
		e.MSIStartMonth = r.MSIStartMonth.Date
	}
	return e
}

// ruleFromRow converts a warehouse row to a billing rule. Rows without a
// strategy column value predate the cut-day-offset strategy and are
// shift-window rules.
func ruleFromRow(r *CardRuleRow, owner string) billing.Rule {
	rule := billing.Rule{
		Owner:    owner,
		CardName: r.CardName,
		Active:   r.Active,
		Kind:     billing.KindShiftWindow,
		CutDay:   int(r.CutDay),
	}
	if r.Strategy.Valid && billing.Kind(r.Strategy.StringVal) == billing.KindCutDayOffset {
		rule.Kind = billing.KindCutDayOffset
		rule.PayOffsetDays = int(r.PayOffsetDays.Int64)
		rule.RollWeekendToMonday = r.RollWeekendToMonday.Valid && r.RollWeekendToMonday.Bool
		return rule
	}
	// Rows created before the shift column existed behave as shift 1.
	rule.BillingShiftMonths = 1
	if r.BillingShiftMonths.Valid {
		rule.BillingShiftMonths = int(r.BillingShiftMonths.Int64)
	}
	return rule
}
