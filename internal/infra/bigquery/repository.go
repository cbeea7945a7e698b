package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/finclaro/cashflow/internal/billing"
	"github.com/finclaro/cashflow/internal/config"
	"github.com/finclaro/cashflow/internal/domain"
)

// Repository reads expenses, card rules and identity links from BigQuery.
// It holds a shared client to avoid creating a new connection per
// operation and implements cashflow.Repository.
type Repository struct {
	client         *bigquery.Client
	cfg            config.BigQuery
	legacyFallback bool
}

// NewRepository creates a Repository with a shared BigQuery client. The
// table configuration comes in as a value; the repository never reads the
// environment. legacyFallback enables chat-keyed re-queries for owners
// whose user-keyed data is empty.
func NewRepository(ctx context.Context, cfg config.BigQuery, legacyFallback bool) (*Repository, error) {
	if cfg.ProjectID == "" {
		return nil, &config.MissingError{Key: "BQ_PROJECT_ID"}
	}
	if cfg.Dataset == "" {
		return nil, &config.MissingError{Key: "BQ_DATASET"}
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, cfg: cfg, legacyFallback: legacyFallback}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ListActiveCardRules returns the owner's active rules. With the legacy
// fallback enabled, an owner with no user-keyed rules is re-queried through
// their linked chat identity.
func (r *Repository) ListActiveCardRules(ctx context.Context, owner string) ([]billing.Rule, error) {
	rows, err := ListActiveCardRulesByUserWithClient(ctx, r.client, r.cfg, owner)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 && r.legacyFallback {
		chatID, err := LatestLinkedChatIDWithClient(ctx, r.client, r.cfg, owner)
		if err != nil {
			return nil, err
		}
		if chatID != "" {
			rows, err = ListActiveCardRulesByChatWithClient(ctx, r.client, r.cfg, chatID)
			if err != nil {
				return nil, err
			}
		}
	}

	rules := make([]billing.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, ruleFromRow(row, owner))
	}
	return rules, nil
}

// ListExpenses returns the owner's expenses purchased inside [from, to].
// The legacy fallback mirrors ListActiveCardRules.
func (r *Repository) ListExpenses(ctx context.Context, owner string, from, to civil.Date) ([]domain.Expense, error) {
	rows, err := ListExpensesByUserWithClient(ctx, r.client, r.cfg, owner, from, to)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 && r.legacyFallback {
		chatID, err := LatestLinkedChatIDWithClient(ctx, r.client, r.cfg, owner)
		if err != nil {
			return nil, err
		}
		if chatID != "" {
			rows, err = ListExpensesByChatWithClient(ctx, r.client, r.cfg, chatID, from, to)
			if err != nil {
				return nil, err
			}
		}
	}

	expenses := make([]domain.Expense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, expenseFromRow(row, owner))
	}
	return expenses, nil
}

// ListExpensesFiltered serves the expense explorer endpoint.
func (r *Repository) ListExpensesFiltered(ctx context.Context, owner string, f ExpenseFilter) ([]domain.Expense, error) {
	rows, err := ListExpensesFilteredWithClient(ctx, r.client, r.cfg, owner, f)
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, expenseFromRow(row, owner))
	}
	return expenses, nil
}
