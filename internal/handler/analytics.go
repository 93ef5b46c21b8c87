package handler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/middleware"
	"github.com/tandemhq/tandem/internal/service"
)

// AnalyticsHandler serves the analytics summary and the data export.
// Both routes are tier-gated by middleware; the export additionally
// branches on the export feature for its CSV format.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	reviews   service.ReviewService
	guard     *middleware.FeatureGuard
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics service.AnalyticsService, reviews service.ReviewService, guard *middleware.FeatureGuard, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		reviews:   reviews,
		guard:     guard,
		logger:    logger,
	}
}

// Summary handles GET /api/analytics.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	summary, err := h.analytics.Summary(r.Context(), tenantID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Tier enrichment is attached when AddTierInfo ran; its absence is
	// fine, the summary stands on its own.
	out := map[string]any{"summary": summary}
	if info := middleware.GetTierInfo(r.Context()); info != nil {
		out["tier"] = string(info.Tier)
	}
	writeJSON(w, http.StatusOK, out)
}

// ExportReviews handles GET /api/export/reviews, streaming the
// tenant's finalized reviews as CSV.
func (h *AnalyticsHandler) ExportReviews(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	reviews, err := h.reviews.List(r.Context(), tenantID, nil)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Summary text is part of the custom reports feature; lower tiers
	// still get the numeric export.
	includeSummaries := h.guard.CheckFeatureAccess(r, domain.FeatureCustomReports).Allowed

	filename := fmt.Sprintf("reviews-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	header := []string{"review_id", "employee_id", "period", "status", "rating", "finalized_at"}
	if includeSummaries {
		header = append(header, "summary")
	}
	_ = cw.Write(header)
	for _, rev := range reviews {
		if rev.Status != domain.ReviewStatusFinalized {
			continue
		}
		finalizedAt := ""
		if rev.FinalizedAt != nil {
			finalizedAt = rev.FinalizedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			rev.ID.String(),
			rev.EmployeeID.String(),
			rev.Period,
			string(rev.Status),
			strconv.Itoa(rev.Rating),
			finalizedAt,
		}
		if includeSummaries {
			row = append(row, rev.Summary)
		}
		_ = cw.Write(row)
	}
	cw.Flush()
}
