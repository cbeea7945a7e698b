package bigquery

import (
	"math/big"
	"testing"
	"time"

	bq "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/billing"
)

func nullString(s string) bq.NullString {
	return bq.NullString{StringVal: s, Valid: true}
}

func TestExpenseFromRow(t *testing.T) {
	row := &ExpenseRow{
		ID:            "e1",
		UserID:        nullString("u1"),
		PurchaseDate:  civil.Date{Year: 2024, Month: time.January, Day: 20},
		AmountMXN:     big.NewRat(123450, 100), // 1234.50
		Currency:      "MXN",
		PaymentMethod: "BBVA Oro",
		Category:      nullString("food"),
		Merchant:      nullString("Soriana"),
		IsMSI:         bq.NullBool{Bool: true, Valid: true},
		MSIMonths:     bq.NullInt64{Int64: 6, Valid: true},
		MSIStartMonth: bq.NullDate{Date: civil.Date{Year: 2024, Month: time.February, Day: 1}, Valid: true},
	}

	e := expenseFromRow(row, "owner-1")

	if e.Owner != "owner-1" {
		t.Errorf("Owner = %q, want the collapsed identity", e.Owner)
	}
	if e.CardName != "BBVA Oro" {
		t.Errorf("CardName = %q", e.CardName)
	}
	if !e.Amount.Equal(decimal.RequireFromString("1234.5")) {
		t.Errorf("Amount = %s, want 1234.5", e.Amount)
	}
	if !e.IsMSI || e.MSIMonths != 6 {
		t.Errorf("MSI fields = (%v, %d), want (true, 6)", e.IsMSI, e.MSIMonths)
	}
	if e.StartMonth() != (civil.Date{Year: 2024, Month: time.February, Day: 1}) {
		t.Errorf("StartMonth = %s, want 2024-02-01", e.StartMonth())
	}
}

func TestExpenseFromRow_Nullables(t *testing.T) {
	row := &ExpenseRow{
		ID:            "e2",
		ChatID:        nullString("chat-9"),
		PurchaseDate:  civil.Date{Year: 2024, Month: time.March, Day: 3},
		AmountMXN:     big.NewRat(50, 1),
		Currency:      "MXN",
		PaymentMethod: "Debito",
	}

	e := expenseFromRow(row, "owner-1")

	if e.IsMSI {
		t.Error("NULL is_msi must map to false")
	}
	if e.MSIMonths != 0 {
		t.Errorf("MSIMonths = %d, want 0", e.MSIMonths)
	}
	// Unset start month falls back to the purchase month.
	if e.StartMonth() != (civil.Date{Year: 2024, Month: time.March, Day: 1}) {
		t.Errorf("StartMonth = %s, want 2024-03-01", e.StartMonth())
	}
	if !e.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Amount = %s, want 50", e.Amount)
	}
}

func TestRuleFromRow(t *testing.T) {
	tests := []struct {
		name string
		row  *CardRuleRow
		want billing.Rule
	}{
		{
			name: "shift window",
			row: &CardRuleRow{
				CardName:           "BBVA Oro",
				Active:             true,
				Strategy:           nullString("shift_window"),
				CutDay:             15,
				BillingShiftMonths: bq.NullInt64{Int64: 1, Valid: true},
			},
			want: billing.Rule{
				Owner:              "owner-1",
				CardName:           "BBVA Oro",
				Active:             true,
				Kind:               billing.KindShiftWindow,
				CutDay:             15,
				BillingShiftMonths: 1,
			},
		},
		{
			name: "legacy row without strategy defaults to shift window",
			row: &CardRuleRow{
				CardName: "Santander",
				Active:   true,
				CutDay:   28,
			},
			want: billing.Rule{
				Owner:              "owner-1",
				CardName:           "Santander",
				Active:             true,
				Kind:               billing.KindShiftWindow,
				CutDay:             28,
				BillingShiftMonths: 1,
			},
		},
		{
			name: "cut day offset",
			row: &CardRuleRow{
				CardName:            "Nu",
				Active:              true,
				Strategy:            nullString("cut_day_offset"),
				CutDay:              11,
				PayOffsetDays:       bq.NullInt64{Int64: 20, Valid: true},
				RollWeekendToMonday: bq.NullBool{Bool: true, Valid: true},
			},
			want: billing.Rule{
				Owner:               "owner-1",
				CardName:            "Nu",
				Active:              true,
				Kind:                billing.KindCutDayOffset,
				CutDay:              11,
				PayOffsetDays:       20,
				RollWeekendToMonday: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ruleFromRow(tt.row, "owner-1")
			if got != tt.want {
				t.Errorf("ruleFromRow = %+v, want %+v", got, tt.want)
			}
		})
	}
}
