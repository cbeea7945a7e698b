// Package calendar provides month-range arithmetic for billing attribution.
// All functions work on civil.Date values; a "month start" is always the
// first day of a month.
package calendar

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// InvalidRangeError reports a from/to pair that cannot form a month range.
type InvalidRangeError struct {
	From civil.Date
	To   civil.Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid month range: from=%s to=%s", e.From, e.To)
}

// MonthStart returns the first day of d's month.
func MonthStart(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// IsMonthStart reports whether d is the first day of a month.
func IsMonthStart(d civil.Date) bool {
	return d.IsValid() && d.Day == 1
}

// AddMonths returns the month start n calendar months after d's month.
// n may be negative.
func AddMonths(d civil.Date, n int) civil.Date {
	t := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return civil.DateOf(t)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns the date at day within the given month, clamped to the
// month's last day when the month is shorter.
func ClampDay(year int, month time.Month, day int) civil.Date {
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

// MonthRange returns every month start between from and to, inclusive and
// ascending. Both endpoints must be month starts and from must not be after
// to, otherwise an InvalidRangeError is returned.
func MonthRange(from, to civil.Date) ([]civil.Date, error) {
	if !IsMonthStart(from) || !IsMonthStart(to) || to.Before(from) {
		return nil, &InvalidRangeError{From: from, To: to}
	}

	var months []civil.Date
	for m := from; !to.Before(m); m = AddMonths(m, 1) {
		months = append(months, m)
	}
	return months, nil
}

// NormalizeMonthStart parses an ISO date ("2024-01-20") or a year-month
// value ("2024-01") and returns the first day of that month. The second
// return value is false for unparseable input; callers treat that as a
// validation failure rather than an error.
func NormalizeMonthStart(value string) (civil.Date, bool) {
	if len(value) == 7 {
		value += "-01"
	}
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, false
	}
	return MonthStart(d), true
}

// Key renders a month start as the "YYYY-MM" label used in the table
// contract consumed by the dashboard.
func Key(monthStart civil.Date) string {
	return fmt.Sprintf("%04d-%02d", monthStart.Year, int(monthStart.Month))
}

// DefaultRange is the dashboard's default window: two months behind the
// current month through two months ahead.
func DefaultRange(now time.Time) (civil.Date, civil.Date) {
	anchor := MonthStart(civil.DateOf(now))
	return AddMonths(anchor, -2), AddMonths(anchor, 2)
}
