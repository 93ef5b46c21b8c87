package handler

import (
	"log/slog"
	"net/http"

	"github.com/tandemhq/tandem/internal/domain"
)

// PricingHandler serves the public pricing matrix.
type PricingHandler struct {
	logger *slog.Logger
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(logger *slog.Logger) *PricingHandler {
	return &PricingHandler{logger: logger}
}

type pricingTier struct {
	ID                string   `json:"id"`
	DisplayName       string   `json:"displayName"`
	MonthlyPriceCents int64    `json:"monthlyPriceCents"`
	YearlyPriceCents  int64    `json:"yearlyPriceCents"`
	MaxEmployees      int      `json:"maxEmployees"` // -1 means unlimited
	Features          []string `json:"features"`
}

// publicTiers are the purchasable tiers shown on the pricing page.
// Internal and grandfathered tiers are never listed.
var publicTiers = []domain.SubscriptionTier{
	domain.TierFreeVIP,
	domain.Tier1,
	domain.Tier2,
	domain.Tier3,
	domain.Tier4,
	domain.Tier5,
}

// List handles GET /api/pricing.
func (h *PricingHandler) List(w http.ResponseWriter, r *http.Request) {
	tiers := make([]pricingTier, 0, len(publicTiers))
	for _, tier := range publicTiers {
		display, err := domain.TierDisplayInfo(tier)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		tiers = append(tiers, pricingTier{
			ID:                display.ID,
			DisplayName:       display.DisplayName,
			MonthlyPriceCents: display.MonthlyPriceCents,
			YearlyPriceCents:  display.YearlyPriceCents,
			MaxEmployees:      display.MaxEmployees,
			Features:          display.Features,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": tiers})
}
