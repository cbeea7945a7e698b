package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/finclaro/cashflow/internal/api/middleware"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/cashflow"
)

// TableBuilder builds one owner's cashflow table for a month range.
type TableBuilder interface {
	Table(ctx context.Context, owner string, from, to civil.Date) (*cashflow.Table, error)
}

// CashflowHandler handles cashflow table endpoints.
type CashflowHandler struct {
	builder TableBuilder
	log     zerolog.Logger
}

// NewCashflowHandler creates a new cashflow handler.
func NewCashflowHandler(builder TableBuilder, log zerolog.Logger) *CashflowHandler {
	return &CashflowHandler{
		builder: builder,
		log:     log,
	}
}

// GetTable handles GET /api/cashflow
func (h *CashflowHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := middleware.OwnerFromContext(ctx)

	from, to, ok := parseRange(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid from/to")
		return
	}

	table, err := h.builder.Table(ctx, owner, from, to)
	if err != nil {
		var rangeErr *calendar.InvalidRangeError
		if errors.As(err, &rangeErr) {
			middleware.WriteError(w, http.StatusBadRequest, rangeErr.Error())
			return
		}

		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(ctx)).
			Str("owner", owner).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Failed to build cashflow table")
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": "Internal",
		})
		return
	}

	rendered := table.Render()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"months": rendered.Months,
		"rows":   rendered.Rows,
		"totals": rendered.Totals,
	})
}

// parseRange reads from/to query parameters, accepting YYYY-MM and
// YYYY-MM-DD month starts. Both absent means the dashboard's default window
// around the current month. A present but malformed value fails the parse.
func parseRange(r *http.Request) (from, to civil.Date, ok bool) {
	query := r.URL.Query()
	fromStr := query.Get("from")
	toStr := query.Get("to")

	if fromStr == "" && toStr == "" {
		from, to = calendar.DefaultRange(time.Now())
		return from, to, true
	}
	if fromStr == "" || toStr == "" {
		return civil.Date{}, civil.Date{}, false
	}

	from, ok = calendar.NormalizeMonthStart(fromStr)
	if !ok {
		return civil.Date{}, civil.Date{}, false
	}
	to, ok = calendar.NormalizeMonthStart(toStr)
	if !ok {
		return civil.Date{}, civil.Date{}, false
	}
	return from, to, true
}
