package handler

import (
	"log/slog"
	"net/http"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/middleware"
)

// FeatureHandler lets clients ask whether a feature is available on
// their plan before rendering the UI for it. The answer is advisory;
// the real enforcement stays on the gated routes.
type FeatureHandler struct {
	guard  *middleware.FeatureGuard
	logger *slog.Logger
}

// NewFeatureHandler creates a new FeatureHandler.
func NewFeatureHandler(guard *middleware.FeatureGuard, logger *slog.Logger) *FeatureHandler {
	return &FeatureHandler{guard: guard, logger: logger}
}

// Check handles GET /api/features/{name}.
func (h *FeatureHandler) Check(w http.ResponseWriter, r *http.Request) {
	feature, err := domain.ParseFeature(r.PathValue("name"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	decision := h.guard.CheckFeatureAccess(r, feature)
	if decision.Err != nil {
		ErrorResponse(w, r, h.logger, domain.Internal(decision.Err, "feature.check", "feature validation failed"))
		return
	}

	out := map[string]any{
		"feature":     string(feature),
		"allowed":     decision.Allowed,
		"currentTier": string(decision.Tier),
	}
	if !decision.Allowed {
		out["reason"] = decision.Reason
	}
	writeJSON(w, http.StatusOK, out)
}
