package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/finclaro/cashflow/internal/config"
)

// LatestLinkedChatIDWithClient returns the most recently linked Telegram
// chat id for a dashboard user, or "" when the user never linked one.
func LatestLinkedChatIDWithClient(ctx context.Context, client *bigquery.Client, cfg config.BigQuery, userID string) (string, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT l.chat_id
		FROM `+"`%s.%s.%s`"+` l
		WHERE l.user_id = @user_id
		ORDER BY l.linked_ts DESC
		LIMIT 1
	`, cfg.ProjectID, cfg.Dataset, cfg.IdentityLinksTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("LatestLinkedChatID: query read: %w", err)
	}

	var row struct {
		ChatID string `bigquery:"chat_id"`
	}
	err = it.Next(&row)
	if err == iterator.Done {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("LatestLinkedChatID: iter next: %w", err)
	}
	return row.ChatID, nil
}
