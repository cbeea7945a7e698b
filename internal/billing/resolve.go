package billing

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/finclaro/cashflow/internal/calendar"
)

// Window is one cut-to-cut purchase window. Membership is start-exclusive
// and end-inclusive: a purchase exactly on the cut date closes the cycle it
// belongs to, the next day opens the following one.
type Window struct {
	Start civil.Date
	End   civil.Date
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d civil.Date) bool {
	return w.Start.Before(d) && !w.End.Before(d)
}

// WindowFor computes the purchase window whose spend is attributed to
// statementMonth under a shift-window rule. The window closes
// billing_shift_months-1 months before the statement month, on the rule's
// cut day clamped to each month's length. With a shift of 1 the statement
// month is the month the cycle closes in: a January 20 purchase under a
// cut day of 15 lands in the window ending February 15 and is reported in
// February.
func WindowFor(statementMonth civil.Date, r Rule) Window {
	endMonth := calendar.AddMonths(statementMonth, 1-r.BillingShiftMonths)
	startMonth := calendar.AddMonths(endMonth, -1)
	return Window{
		Start: calendar.ClampDay(startMonth.Year, startMonth.Month, r.CutDay),
		End:   calendar.ClampDay(endMonth.Year, endMonth.Month, r.CutDay),
	}
}

// StatementMonthFor is the inverse of WindowFor: the unique statement month
// whose window contains the purchase date. Consecutive windows tile the
// calendar, so every date maps to exactly one statement month per rule.
func StatementMonthFor(purchase civil.Date, r Rule) (civil.Date, error) {
	if err := r.Validate(); err != nil {
		return civil.Date{}, err
	}

	// Month whose cut date closes the cycle containing the purchase.
	closeMonth := calendar.MonthStart(purchase)
	cut := calendar.ClampDay(purchase.Year, purchase.Month, r.CutDay)
	if cut.Before(purchase) {
		closeMonth = calendar.AddMonths(closeMonth, 1)
	}
	return calendar.AddMonths(closeMonth, r.BillingShiftMonths-1), nil
}

// BillingMonthFor resolves a purchase under a cut-day-offset rule: the
// purchase's cut-day test picks the cycle, the cycle's closing date plus
// the pay offset gives the payment date, and the billing month is the month
// containing that payment date. When RollWeekendToMonday is set a payment
// landing on Saturday or Sunday moves forward to the following Monday
// before the month is taken.
func BillingMonthFor(purchase civil.Date, r Rule) (civil.Date, error) {
	if err := r.Validate(); err != nil {
		return civil.Date{}, err
	}

	cycleMonth := calendar.MonthStart(purchase)
	if purchase.Day > r.CutDay {
		cycleMonth = calendar.AddMonths(cycleMonth, 1)
	}
	cycleEnd := calendar.ClampDay(cycleMonth.Year, cycleMonth.Month, r.CutDay)

	payment := cycleEnd.AddDays(r.PayOffsetDays)
	if r.RollWeekendToMonday {
		switch payment.In(time.UTC).Weekday() {
		case time.Saturday:
			payment = payment.AddDays(2)
		case time.Sunday:
			payment = payment.AddDays(1)
		}
	}
	return calendar.MonthStart(payment), nil
}
