package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finclaro/cashflow/internal/api/middleware"
	"github.com/finclaro/cashflow/internal/billing"
)

// CardRuleLister lists an owner's active card billing rules.
type CardRuleLister interface {
	ListActiveCardRules(ctx context.Context, owner string) ([]billing.Rule, error)
}

// CardsHandler handles card rule endpoints.
type CardsHandler struct {
	lister CardRuleLister
	log    zerolog.Logger
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(lister CardRuleLister, log zerolog.Logger) *CardsHandler {
	return &CardsHandler{
		lister: lister,
		log:    log,
	}
}

// cardRuleDTO is the wire shape of one card billing rule.
type cardRuleDTO struct {
	CardName            string `json:"card_name"`
	Strategy            string `json:"strategy"`
	CutDay              int    `json:"cut_day"`
	BillingShiftMonths  int    `json:"billing_shift_months,omitempty"`
	PayOffsetDays       int    `json:"pay_offset_days,omitempty"`
	RollWeekendToMonday bool   `json:"roll_weekend_to_monday,omitempty"`
}

// ListCards handles GET /api/cards
func (h *CardsHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := middleware.OwnerFromContext(ctx)

	rules, err := h.lister.ListActiveCardRules(ctx, owner)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(ctx)).
			Str("owner", owner).
			Msg("Failed to list card rules")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list card rules")
		return
	}

	out := make([]cardRuleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, cardRuleDTO{
			CardName:            rule.CardName,
			Strategy:            string(rule.Kind),
			CutDay:              rule.CutDay,
			BillingShiftMonths:  rule.BillingShiftMonths,
			PayOffsetDays:       rule.PayOffsetDays,
			RollWeekendToMonday: rule.RollWeekendToMonday,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cards": out,
		"count": len(out),
	})
}
