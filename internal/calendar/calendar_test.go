package calendar

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   civil.Date
		n    int
		want civil.Date
	}{
		{"forward within year", date(2024, time.March, 1), 2, date(2024, time.May, 1)},
		{"across year end", date(2024, time.November, 1), 3, date(2025, time.February, 1)},
		{"backward across year start", date(2024, time.January, 1), -2, date(2023, time.November, 1)},
		{"zero", date(2024, time.June, 1), 0, date(2024, time.June, 1)},
		{"mid-month input snaps to month start", date(2024, time.January, 20), 1, date(2024, time.February, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.in, tt.n); got != tt.want {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestClampDay(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  civil.Date
	}{
		{"regular day", 2024, time.January, 15, date(2024, time.January, 15)},
		{"day 31 in April clamps to 30", 2024, time.April, 31, date(2024, time.April, 30)},
		{"day 31 in leap February clamps to 29", 2024, time.February, 31, date(2024, time.February, 29)},
		{"day 31 in non-leap February clamps to 28", 2023, time.February, 31, date(2023, time.February, 28)},
		{"last day exact", 2024, time.January, 31, date(2024, time.January, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDay(tt.year, tt.month, tt.day); got != tt.want {
				t.Errorf("ClampDay(%d, %s, %d) = %s, want %s", tt.year, tt.month, tt.day, got, tt.want)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	t.Run("single month", func(t *testing.T) {
		months, err := MonthRange(date(2024, time.March, 1), date(2024, time.March, 1))
		if err != nil {
			t.Fatalf("MonthRange failed: %v", err)
		}
		if len(months) != 1 || months[0] != date(2024, time.March, 1) {
			t.Errorf("MonthRange = %v, want [2024-03-01]", months)
		}
	})

	t.Run("across year end", func(t *testing.T) {
		months, err := MonthRange(date(2024, time.November, 1), date(2025, time.February, 1))
		if err != nil {
			t.Fatalf("MonthRange failed: %v", err)
		}
		want := []civil.Date{
			date(2024, time.November, 1),
			date(2024, time.December, 1),
			date(2025, time.January, 1),
			date(2025, time.February, 1),
		}
		if len(months) != len(want) {
			t.Fatalf("MonthRange returned %d months, want %d", len(months), len(want))
		}
		for i := range want {
			if months[i] != want[i] {
				t.Errorf("months[%d] = %s, want %s", i, months[i], want[i])
			}
		}
	})

	invalid := []struct {
		name     string
		from, to civil.Date
	}{
		{"from after to", date(2024, time.May, 1), date(2024, time.March, 1)},
		{"from not a month start", date(2024, time.March, 2), date(2024, time.May, 1)},
		{"to not a month start", date(2024, time.March, 1), date(2024, time.May, 15)},
		{"zero values", civil.Date{}, civil.Date{}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MonthRange(tt.from, tt.to)
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("MonthRange(%s, %s) error = %v, want InvalidRangeError", tt.from, tt.to, err)
			}
		})
	}
}

func TestNormalizeMonthStart(t *testing.T) {
	tests := []struct {
		in     string
		want   civil.Date
		wantOK bool
	}{
		{"2024-01", date(2024, time.January, 1), true},
		{"2024-01-20", date(2024, time.January, 1), true},
		{"2024-02-29", date(2024, time.February, 1), true},
		{"2024-13", civil.Date{}, false},
		{"not-a-date", civil.Date{}, false},
		{"", civil.Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeMonthStart(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NormalizeMonthStart(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if got := Key(date(2024, time.January, 1)); got != "2024-01" {
		t.Errorf("Key = %q, want %q", got, "2024-01")
	}
	if got := Key(date(2024, time.December, 1)); got != "2024-12" {
		t.Errorf("Key = %q, want %q", got, "2024-12")
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, time.June, 17, 10, 0, 0, 0, time.UTC)
	from, to := DefaultRange(now)
	if from != date(2024, time.April, 1) {
		t.Errorf("from = %s, want 2024-04-01", from)
	}
	if to != date(2024, time.August, 1) {
		t.Errorf("to = %s, want 2024-08-01", to)
	}
}
