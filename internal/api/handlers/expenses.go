package handlers

import (
	"context"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/finclaro/cashflow/internal/api/middleware"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/domain"
	"github.com/finclaro/cashflow/internal/infra/bigquery"
)

// ExpenseLister lists an owner's expenses for the explorer view.
type ExpenseLister interface {
	ListExpensesFiltered(ctx context.Context, owner string, f bigquery.ExpenseFilter) ([]domain.Expense, error)
}

// ExpensesHandler handles expense explorer endpoints.
type ExpensesHandler struct {
	lister ExpenseLister
	log    zerolog.Logger
}

// NewExpensesHandler creates a new expenses handler.
func NewExpensesHandler(lister ExpenseLister, log zerolog.Logger) *ExpensesHandler {
	return &ExpensesHandler{
		lister: lister,
		log:    log,
	}
}

// expenseDTO is the wire shape of one expense.
type expenseDTO struct {
	ID           string  `json:"id"`
	CardName     string  `json:"card_name"`
	PurchaseDate string  `json:"purchase_date"`
	Amount       float64 `json:"amount_mxn"`
	Category     string  `json:"category,omitempty"`
	Merchant     string  `json:"merchant,omitempty"`
	Description  string  `json:"description,omitempty"`
	IsMSI        bool    `json:"is_msi"`
	MSIMonths    int     `json:"msi_months,omitempty"`
}

// ListExpenses handles GET /api/expenses
func (h *ExpensesHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := middleware.OwnerFromContext(ctx)

	query := r.URL.Query()

	from, to, ok := parseRange(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid from/to")
		return
	}
	// The explorer filters on purchase dates, so the range end covers the
	// whole last month, not just its first day.
	toEnd := civil.Date{Year: to.Year, Month: to.Month, Day: calendar.DaysInMonth(to.Year, to.Month)}

	filter := bigquery.ExpenseFilter{
		From:          from,
		To:            toEnd,
		PaymentMethod: query.Get("payment_method"),
		Category:      query.Get("category"),
	}

	if msiStr := query.Get("is_msi"); msiStr != "" {
		isMSI, err := strconv.ParseBool(msiStr)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid is_msi")
			return
		}
		filter.IsMSI = &isMSI
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	expenses, err := h.lister.ListExpensesFiltered(ctx, owner, filter)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(ctx)).
			Str("owner", owner).
			Msg("Failed to list expenses")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}

	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseDTO{
			ID:           e.ID,
			CardName:     e.CardName,
			PurchaseDate: e.PurchaseDate.String(),
			Amount:       e.Amount.InexactFloat64(),
			Category:     e.Category,
			Merchant:     e.Merchant,
			Description:  e.Description,
			IsMSI:        e.IsMSI,
			MSIMonths:    e.MSIMonths,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": out,
		"count":    len(out),
	})
}
