package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/metrics"
	"github.com/tandemhq/tandem/internal/service"
)

// ReviewHandler serves performance review endpoints.
type ReviewHandler struct {
	reviews service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type reviewResponse struct {
	ID          uuid.UUID  `json:"id"`
	EmployeeID  uuid.UUID  `json:"employeeId"`
	ReviewerID  uuid.UUID  `json:"reviewerId"`
	Period      string     `json:"period"`
	Summary     string     `json:"summary,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Status      string     `json:"status"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toReviewResponse(rev *domain.Review) reviewResponse {
	return reviewResponse{
		ID:          rev.ID,
		EmployeeID:  rev.EmployeeID,
		ReviewerID:  rev.ReviewerID,
		Period:      rev.Period,
		Summary:     rev.Summary,
		Rating:      rev.Rating,
		Status:      string(rev.Status),
		FinalizedAt: rev.FinalizedAt,
		CreatedAt:   rev.CreatedAt,
		UpdatedAt:   rev.UpdatedAt,
	}
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		EmployeeID uuid.UUID `json:"employeeId"`
		Period     string    `json:"period"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), domain.ReviewCreateParams{
		TenantID:   tenantID,
		EmployeeID: req.EmployeeID,
		ReviewerID: user.ID,
		Period:     req.Period,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewResponse(review))
}

// List handles GET /api/reviews with an optional employeeId filter.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	employeeID, err := optionalEmployeeFilter(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	reviews, err := h.reviews.List(r.Context(), tenantID, employeeID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		out = append(out, toReviewResponse(rev))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": out})
}

// Get handles GET /api/reviews/{id}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.Get(r.Context(), tenantID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

// Update handles PATCH /api/reviews/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		Summary *string              `json:"summary"`
		Rating  *int                 `json:"rating"`
		Status  *domain.ReviewStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), domain.ReviewUpdateParams{
		ID:       id,
		TenantID: tenantID,
		Summary:  req.Summary,
		Rating:   req.Rating,
		Status:   req.Status,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

// Finalize handles POST /api/reviews/{id}/finalize.
func (h *ReviewHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	review, err := h.reviews.Finalize(r.Context(), tenantID, id)
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ReviewsFinalized.Inc()
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}
