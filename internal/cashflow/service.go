package cashflow

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/finclaro/cashflow/internal/billing"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/domain"
	"github.com/finclaro/cashflow/internal/msi"
)

// Expense purchases this many months before the range start are still
// fetched so that running installment plans keep contributing slices
// inside the range.
const msiLookbackMonths = 24

// Cut-to-cut windows and pay offsets can pull purchases from shortly after
// the range end into the last statement months.
const windowLookaheadMonths = 2

// Repository supplies one owner's card rules and booked expenses. The two
// reads are independent and may be issued concurrently.
type Repository interface {
	ListActiveCardRules(ctx context.Context, owner string) ([]billing.Rule, error)
	ListExpenses(ctx context.Context, owner string, from, to civil.Date) ([]domain.Expense, error)
}

// Service fetches an owner's data and builds cashflow tables from it.
type Service struct {
	repo        Repository
	msiFallback msi.FallbackPolicy
	noRuleView  bool
	log         zerolog.Logger
}

// NewService creates a cashflow service. msiFallback and noRuleView come
// from configuration, never from ambient process state.
func NewService(repo Repository, msiFallback msi.FallbackPolicy, noRuleView bool, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		msiFallback: msiFallback,
		noRuleView:  noRuleView,
		log:         log,
	}
}

// Table fetches rules and expenses for the owner concurrently, waits for
// both, and aggregates them into the cashflow table for [from, to]. The
// range is validated before any fetch is issued. Fetch failures are wrapped
// in UpstreamError and not retried here.
func (s *Service) Table(ctx context.Context, owner string, from, to civil.Date) (*Table, error) {
	if _, err := calendar.MonthRange(from, to); err != nil {
		return nil, err
	}

	var (
		rules    []billing.Rule
		expenses []domain.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.repo.ListActiveCardRules(gctx, owner)
		if err != nil {
			return &UpstreamError{Op: "list card rules", Err: err}
		}
		rules = r
		return nil
	})
	g.Go(func() error {
		fetchFrom := calendar.AddMonths(from, -msiLookbackMonths)
		fetchTo := calendar.AddMonths(to, windowLookaheadMonths)
		e, err := s.repo.ListExpenses(gctx, owner, fetchFrom, fetchTo)
		if err != nil {
			return &UpstreamError{Op: "list expenses", Err: err}
		}
		expenses = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("owner", owner).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("rules", len(rules)).
		Int("expenses", len(expenses)).
		Msg("Building cashflow table")

	return BuildTable(Input{
		Owner:                   owner,
		From:                    from,
		To:                      to,
		Rules:                   rules,
		Expenses:                expenses,
		MSIFallback:             s.msiFallback,
		FallbackToPurchaseMonth: s.noRuleView,
	})
}
