package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finclaro/cashflow/internal/config"
)

func cardRulesTable(cfg config.BigQuery) string {
	return fmt.Sprintf("`%s.%s.%s`", cfg.ProjectID, cfg.Dataset, cfg.CardRulesTable)
}

// ListActiveCardRulesByUserWithClient queries an owner's active card rules
// using the provided BigQuery client.
func ListActiveCardRulesByUserWithClient(ctx context.Context, client *bigquery.Client, cfg config.BigQuery, userID string) ([]*CardRuleRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			r.user_id,
			r.chat_id,
			r.card_name,
			r.active,
			r.strategy,
			r.cut_day,
			r.billing_shift_months,
			r.pay_offset_days,
			r.roll_weekend_to_monday,
			r.created_ts
		FROM %s r
		WHERE r.user_id = @user_id
		  AND r.active = TRUE
		ORDER BY r.card_name
	`, cardRulesTable(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	return readCardRuleRows(ctx, q, "ListActiveCardRulesByUser")
}

// ListActiveCardRulesByChatWithClient is the legacy variant keyed by a
// linked Telegram chat id.
func ListActiveCardRulesByChatWithClient(ctx context.Context, client *bigquery.Client, cfg config.BigQuery, chatID string) ([]*CardRuleRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			r.user_id,
			r.chat_id,
			r.card_name,
			r.active,
			r.strategy,
			r.cut_day,
			r.billing_shift_months,
			r.pay_offset_days,
			r.roll_weekend_to_monday,
			r.created_ts
		FROM %s r
		WHERE r.chat_id = @chat_id
		  AND r.active = TRUE
		ORDER BY r.card_name
	`, cardRulesTable(cfg)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "chat_id", Value: chatID},
	}

	return readCardRuleRows(ctx, q, "ListActiveCardRulesByChat")
}

func readCardRuleRows(ctx context.Context, q *bigquery.Query, op string) ([]*CardRuleRow, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var rows []*CardRuleRow
	for {
		var r CardRuleRow
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
