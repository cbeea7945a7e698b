// Package billing resolves which statement month a purchase belongs to.
//
// Two attribution strategies coexist, selected per card rule. The
// shift-window strategy maps every statement month to a cut-to-cut purchase
// window; the cut-day-offset strategy derives the cycle from the purchase's
// own month and then applies a payment offset in days.
package billing

import (
	"fmt"
)

// Kind selects the attribution strategy for one card rule.
type Kind string

const (
	KindShiftWindow  Kind = "shift_window"
	KindCutDayOffset Kind = "cut_day_offset"
)

// Rule is one card's billing-cycle configuration. Only the fields belonging
// to its Kind are meaningful; rules are created and edited outside this
// service and are read-only here.
type Rule struct {
	Owner    string
	CardName string
	Active   bool
	Kind     Kind

	// CutDay is the day-of-month the cycle closes, 1..31. Months shorter
	// than CutDay clamp to their last day.
	CutDay int

	// Shift-window strategy.
	BillingShiftMonths int

	// Cut-day-offset strategy.
	PayOffsetDays       int
	RollWeekendToMonday bool
}

// InvalidRuleError reports a rule whose cut day is outside [1,31] or whose
// strategy kind is unknown.
type InvalidRuleError struct {
	CardName string
	Reason   string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid card rule %q: %s", e.CardName, e.Reason)
}

// Validate checks the rule's cut day and kind.
func (r Rule) Validate() error {
	if r.CutDay < 1 || r.CutDay > 31 {
		return &InvalidRuleError{CardName: r.CardName, Reason: fmt.Sprintf("cut_day %d outside [1,31]", r.CutDay)}
	}
	switch r.Kind {
	case KindShiftWindow, KindCutDayOffset:
		return nil
	default:
		return &InvalidRuleError{CardName: r.CardName, Reason: fmt.Sprintf("unknown strategy %q", r.Kind)}
	}
}
