// Package msi amortizes installment (MSI) purchases into monthly slices.
//
// Installment slices use calendar months directly: no billing-cycle
// resolution is applied to them, only the start month and the month count
// matter.
package msi

import (
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/domain"
)

// FallbackPolicy controls what happens to an expense flagged MSI that
// carries no usable month count. The historically observed behavior is
// single-bucket attribution; Skip drops the expense from the table.
type FallbackPolicy string

const (
	FallbackSingleBucket FallbackPolicy = "single_bucket"
	FallbackSkip         FallbackPolicy = "skip"
)

// ParsePolicy maps a configuration string to a FallbackPolicy, defaulting
// to single-bucket attribution.
func ParsePolicy(s string) FallbackPolicy {
	if FallbackPolicy(s) == FallbackSkip {
		return FallbackSkip
	}
	return FallbackSingleBucket
}

// Amortizable reports whether the expense carries enough information to be
// split into installment slices.
func Amortizable(e domain.Expense) bool {
	return e.IsMSI && e.MSIMonths >= 1
}

// Amortize splits an installment expense into MSIMonths equal slices, one
// per consecutive calendar month starting at the expense's start month.
// Slices are the total divided to centavo precision; the final slice
// absorbs the division remainder so the slices always sum to exactly the
// original amount.
//
// The caller must check Amortizable first.
func Amortize(e domain.Expense) []domain.Bucket {
	n := e.MSIMonths
	months := decimal.NewFromInt(int64(n))
	slice := e.Amount.DivRound(months, 2)
	start := e.StartMonth()

	buckets := make([]domain.Bucket, 0, n)
	for i := 0; i < n; i++ {
		amount := slice
		if i == n-1 {
			amount = e.Amount.Sub(slice.Mul(decimal.NewFromInt(int64(n - 1))))
		}
		buckets = append(buckets, domain.Bucket{
			CardName:     e.CardName,
			BillingMonth: calendar.AddMonths(start, i),
			Amount:       amount,
		})
	}
	return buckets
}
