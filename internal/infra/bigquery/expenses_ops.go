package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/finclaro/cashflow/internal/config"
)

func expensesTable(cfg config.BigQuery) string {
	return fmt.Sprintf("`%s.%s.%s`", cfg.ProjectID, cfg.Dataset, cfg.ExpensesTable)
}

// ListExpensesByUserWithClient queries an owner's expenses with a purchase
// date inside [from, to] using the provided BigQuery client.
func ListExpensesByUserWithClient(ctx context.Context, client *bigquery.Client, cfg config.BigQuery, userID string, from, to civil.Date) ([]*ExpenseRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			e.id,
			e.user_id,
			e.chat_id,
			e.purchase_date,
			e.amount_mxn,
			e.currency,
			e.payment_method,
			e.category,
			e.merchant,
			e.description,
			e.is_msi,
			e.msi_months,
			e.msi_start_month,
			e.created_ts
		FROM %s e
		WHERE e.user_id = @user_id
		  AND e.purchase_date BETWEEN @from_date AND @to_date
		ORDER BY e.purchase_date, e.created_ts
	`, expensesTable(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "from_date", Value: from},
		{Name: "to_date", Value: to},
	}

	return readExpenseRows(ctx, q, "ListExpensesByUser")
}

// ListExpensesByChatWithClient is the legacy variant keyed by a linked
// Telegram chat id. Rows that already carry a user_id are excluded so the
// same expense is never read through both identities.
func ListExpensesByChatWithClient(ctx context.Context, client *bigquery.Client, cfg config.BigQuery, chatID string, from, to civil.Date) ([]*ExpenseRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			e.id,
			e.user_id,
			e.chat_id,
			e.purchase_date,
			e.amount_mxn,
			e.currency,
			e.payment_method,
			e.category,
			e.merchant,
			e.description,
			e.is_msi,
			e.msi_months,
			e.msi_start_month,
			e.created_ts
		FROM %s e
		WHERE e.chat_id = @chat_id
		  AND e.user_id IS NULL
		  AND e.purchase_date BETWEEN @from_date AND @to_date
		ORDER BY e.purchase_date, e.created_ts
	`, expensesTable(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "chat_id", Value: chatID},
		{Name: "from_date", Value: from},
		{Name: "to_date", Value: to},
	}

	return readExpenseRows(ctx, q, "ListExpensesByChat")
}

// ExpenseFilter narrows the expense listing endpoint.
type ExpenseFilter struct {
	From          civil.Date
	To            civil.Date
	PaymentMethod string
	Category      string
	IsMSI         *bool
	Limit         int
}

// ListExpensesFilteredWithClient lists an owner's expenses for the explorer
// view, applying the optional filters.
func ListExpensesFilteredWithClient(ctx context.Context, client *bigquery.Client, cfg config.BigQuery, userID string, f ExpenseFilter) ([]*ExpenseRow, error) {
	conditions := "e.user_id = @user_id AND e.purchase_date BETWEEN @from_date AND @to_date"
	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "from_date", Value: f.From},
		{Name: "to_date", Value: f.To},
	}

	if f.PaymentMethod != "" {
		conditions += " AND e.payment_method = @payment_method"
		params = append(params, bigquery.QueryParameter{Name: "payment_method", Value: f.PaymentMethod})
	}
	if f.Category != "" {
		conditions += " AND e.category = @category"
		params = append(params, bigquery.QueryParameter{Name: "category", Value: f.Category})
	}
	if f.IsMSI != nil {
		conditions += " AND IFNULL(e.is_msi, FALSE) = @is_msi"
		params = append(params, bigquery.QueryParameter{Name: "is_msi", Value: *f.IsMSI})
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	params = append(params, bigquery.QueryParameter{Name: "row_limit", Value: limit})

	q := client.Query(fmt.Sprintf(`
		SELECT
			e.id,
			e.user_id,
			e.chat_id,
			e.purchase_date,
			e.amount_mxn,
			e.currency,
			e.payment_method,
			e.category,
			e.merchant,
			e.description,
			e.is_msi,
			e.msi_months,
			e.msi_start_month,
			e.created_ts
		FROM %s e
		WHERE %s
		ORDER BY e.purchase_date DESC, e.created_ts DESC
		LIMIT @row_limit
	`, expensesTable(cfg), conditions))
	q.Parameters = params

	return readExpenseRows(ctx, q, "ListExpensesFiltered")
}

func readExpenseRows(ctx context.Context, q *bigquery.Query, op string) ([]*ExpenseRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rows []*ExpenseRow
	for {
		var r ExpenseRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iter next: %w", op, err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
