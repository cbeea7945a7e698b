package msi

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/domain"
)

func msiExpense(amount string, months int, purchase civil.Date) domain.Expense {
	return domain.Expense{
		ID:           "e1",
		Owner:        "u1",
		CardName:     "BBVA Oro",
		PurchaseDate: purchase,
		Amount:       decimal.RequireFromString(amount),
		IsMSI:        true,
		MSIMonths:    months,
	}
}

func TestAmortize_EvenSplit(t *testing.T) {
	e := msiExpense("300", 3, civil.Date{Year: 2024, Month: time.January, Day: 20})

	buckets := Amortize(e)
	if len(buckets) != 3 {
		t.Fatalf("Amortize returned %d buckets, want 3", len(buckets))
	}

	wantMonths := []civil.Date{
		{Year: 2024, Month: time.January, Day: 1},
		{Year: 2024, Month: time.February, Day: 1},
		{Year: 2024, Month: time.March, Day: 1},
	}
	for i, b := range buckets {
		if b.BillingMonth != wantMonths[i] {
			t.Errorf("bucket %d month = %s, want %s", i, b.BillingMonth, wantMonths[i])
		}
		if !b.Amount.Equal(decimal.RequireFromString("100")) {
			t.Errorf("bucket %d amount = %s, want 100", i, b.Amount)
		}
		if b.CardName != "BBVA Oro" {
			t.Errorf("bucket %d card = %q", i, b.CardName)
		}
	}
}

func TestAmortize_RemainderInLastSlice(t *testing.T) {
	e := msiExpense("100", 3, civil.Date{Year: 2024, Month: time.January, Day: 5})

	buckets := Amortize(e)
	if len(buckets) != 3 {
		t.Fatalf("Amortize returned %d buckets, want 3", len(buckets))
	}

	want := []string{"33.33", "33.33", "33.34"}
	sum := decimal.Zero
	for i, b := range buckets {
		if b.Amount.String() != want[i] {
			t.Errorf("bucket %d amount = %s, want %s", i, b.Amount, want[i])
		}
		sum = sum.Add(b.Amount)
	}
	if !sum.Equal(e.Amount) {
		t.Errorf("slices sum to %s, want %s", sum, e.Amount)
	}
}

// Slices must conserve the original amount exactly for any month count.
func TestAmortize_SumInvariant(t *testing.T) {
	amounts := []string{"999.99", "1234.56", "0.01", "10000", "7777.77"}
	for _, amount := range amounts {
		for n := 1; n <= 24; n++ {
			e := msiExpense(amount, n, civil.Date{Year: 2024, Month: time.March, Day: 15})
			buckets := Amortize(e)
			if len(buckets) != n {
				t.Fatalf("Amortize(%s, %d) returned %d buckets", amount, n, len(buckets))
			}
			sum := decimal.Zero
			for _, b := range buckets {
				sum = sum.Add(b.Amount)
			}
			if !sum.Equal(e.Amount) {
				t.Errorf("Amortize(%s, %d): slices sum to %s", amount, n, sum)
			}
		}
	}
}

func TestAmortize_ExplicitStartMonth(t *testing.T) {
	e := msiExpense("600", 2, civil.Date{Year: 2024, Month: time.January, Day: 20})
	e.MSIStartMonth = civil.Date{Year: 2024, Month: time.March, Day: 1}

	buckets := Amortize(e)
	if buckets[0].BillingMonth != (civil.Date{Year: 2024, Month: time.March, Day: 1}) {
		t.Errorf("first slice month = %s, want 2024-03-01", buckets[0].BillingMonth)
	}
	if buckets[1].BillingMonth != (civil.Date{Year: 2024, Month: time.April, Day: 1}) {
		t.Errorf("second slice month = %s, want 2024-04-01", buckets[1].BillingMonth)
	}
}

func TestAmortizable(t *testing.T) {
	tests := []struct {
		name string
		e    domain.Expense
		want bool
	}{
		{"msi with months", msiExpense("100", 3, civil.Date{Year: 2024, Month: 1, Day: 1}), true},
		{"msi without months", msiExpense("100", 0, civil.Date{Year: 2024, Month: 1, Day: 1}), false},
		{"single month plan", msiExpense("100", 1, civil.Date{Year: 2024, Month: 1, Day: 1}), true},
		{"not msi", domain.Expense{MSIMonths: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Amortizable(tt.e); got != tt.want {
				t.Errorf("Amortizable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want FallbackPolicy
	}{
		{"skip", FallbackSkip},
		{"single_bucket", FallbackSingleBucket},
		{"", FallbackSingleBucket},
		{"bogus", FallbackSingleBucket},
	}
	for _, tt := range tests {
		if got := ParsePolicy(tt.in); got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
