package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// ExpenseRow mirrors the expenses table. Legacy rows captured through the
// Telegram bot carry chat_id and a NULL user_id; rows captured through the
// dashboard carry user_id.
type ExpenseRow struct {
	ID string `bigquery:"id"` // REQUIRED

	UserID bigquery.NullString `bigquery:"user_id"` // NULLABLE
	ChatID bigquery.NullString `bigquery:"chat_id"` // NULLABLE, legacy identity

	PurchaseDate civil.Date `bigquery:"purchase_date"` // REQUIRED DATE
	AmountMXN    *big.Rat   `bigquery:"amount_mxn"`    // REQUIRED NUMERIC
	Currency     string     `bigquery:"currency"`      // REQUIRED STRING, original currency

	PaymentMethod string              `bigquery:"payment_method"` // REQUIRED STRING
	Category      bigquery.NullString `bigquery:"category"`       // NULLABLE
	Merchant      bigquery.NullString `bigquery:"merchant"`       // NULLABLE
	Description   bigquery.NullString `bigquery:"description"`    // NULLABLE

	IsMSI         bigquery.NullBool  `bigquery:"is_msi"`          // NULLABLE, NULL means false
	MSIMonths     bigquery.NullInt64 `bigquery:"msi_months"`      // NULLABLE
	MSIStartMonth bigquery.NullDate  `bigquery:"msi_start_month"` // NULLABLE, defaults to purchase month

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

// CardRuleRow mirrors the card_rules table. The strategy column tags the
// rule shape; legacy rows predate it and are shift-window rules.
type CardRuleRow struct {
	UserID bigquery.NullString `bigquery:"user_id"` // NULLABLE
	ChatID bigquery.NullString `bigquery:"chat_id"` // NULLABLE, legacy identity

	CardName string `bigquery:"card_name"` // REQUIRED, unique per owner
	Active   bool   `bigquery:"active"`    // REQUIRED

	Strategy bigquery.NullString `bigquery:"strategy"` // NULLABLE: shift_window | cut_day_offset
	CutDay   int64               `bigquery:"cut_day"`  // REQUIRED, 1..31

	BillingShiftMonths bigquery.NullInt64 `bigquery:"billing_shift_months"` // shift_window only

	PayOffsetDays       bigquery.NullInt64 `bigquery:"pay_offset_days"`        // cut_day_offset only
	RollWeekendToMonday bigquery.NullBool  `bigquery:"roll_weekend_to_monday"` // cut_day_offset only

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}
