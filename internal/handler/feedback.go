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

// FeedbackHandler serves 360° feedback requests plus the public
// share-link endpoints under /f/{token}.
type FeedbackHandler struct {
	feedback service.FeedbackService
	logger   *slog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedback service.FeedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, logger: logger}
}

type feedbackRequestResponse struct {
	ID            uuid.UUID  `json:"id"`
	EmployeeID    uuid.UUID  `json:"employeeId"`
	Subject       string     `json:"subject"`
	Prompt        string     `json:"prompt"`
	Status        string     `json:"status"`
	ResponseCount int        `json:"responseCount"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}

func toFeedbackRequestResponse(fr *domain.FeedbackRequest) feedbackRequestResponse {
	return feedbackRequestResponse{
		ID:            fr.ID,
		EmployeeID:    fr.EmployeeID,
		Subject:       fr.Subject,
		Prompt:        fr.Prompt,
		Status:        string(fr.Status),
		ResponseCount: fr.ResponseCnt,
		ExpiresAt:     fr.ExpiresAt,
		CreatedAt:     fr.CreatedAt,
		ClosedAt:      fr.ClosedAt,
	}
}

// Create handles POST /api/feedback-requests.
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		EmployeeID uuid.UUID `json:"employeeId"`
		Subject    string    `json:"subject"`
		Prompt     string    `json:"prompt"`
		ExpiresIn  string    `json:"expiresIn"` // Go duration, e.g. "720h"
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var ttl time.Duration
	if req.ExpiresIn != "" {
		ttl, err = time.ParseDuration(req.ExpiresIn)
		if err != nil || ttl <= 0 {
			ErrorResponse(w, r, h.logger, domain.Invalid("feedback.create", "expiresIn must be a positive duration"))
			return
		}
	}

	link, err := h.feedback.CreateRequest(r.Context(), domain.FeedbackRequestCreateParams{
		TenantID:   tenantID,
		EmployeeID: req.EmployeeID,
		CreatedBy:  user.ID,
		Subject:    req.Subject,
		Prompt:     req.Prompt,
		ExpiresIn:  ttl,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.FeedbackRequestsCreated.Inc()

	// The raw token appears exactly once, in this response.
	writeJSON(w, http.StatusCreated, map[string]any{
		"request":   toFeedbackRequestResponse(link.Request),
		"sharePath": "/f/" + link.RawToken,
	})
}

// List handles GET /api/feedback-requests.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	requests, err := h.feedback.List(r.Context(), tenantID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]feedbackRequestResponse, 0, len(requests))
	for _, fr := range requests {
		out = append(out, toFeedbackRequestResponse(fr))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": out})
}

// Get handles GET /api/feedback-requests/{id}.
func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	request, err := h.feedback.Get(r.Context(), tenantID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeedbackRequestResponse(request))
}

// Close handles POST /api/feedback-requests/{id}/close.
func (h *FeedbackHandler) Close(w http.ResponseWriter, r *http.Request) {
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

	if err := h.feedback.Close(r.Context(), tenantID, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListResponses handles GET /api/feedback-requests/{id}/responses.
// Responses are returned without any respondent identity.
func (h *FeedbackHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
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

	responses, err := h.feedback.ListResponses(r.Context(), tenantID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	type responseOut struct {
		Rating      int       `json:"rating"`
		Strengths   string    `json:"strengths,omitempty"`
		Improvement string    `json:"improvement,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}
	out := make([]responseOut, 0, len(responses))
	for _, resp := range responses {
		out = append(out, responseOut{
			Rating:      resp.Rating,
			Strengths:   resp.Strengths,
			Improvement: resp.Improvement,
			CreatedAt:   resp.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": out})
}

// PublicGet handles GET /f/{token}, the anonymous response form data.
// Only the subject and prompt are exposed; no tenant or employee
// details leak through the public link.
func (h *FeedbackHandler) PublicGet(w http.ResponseWriter, r *http.Request) {
	request, err := h.feedback.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"subject":   request.Subject,
		"prompt":    request.Prompt,
		"expiresAt": request.ExpiresAt,
	})
}

// PublicSubmit handles POST /f/{token}.
func (h *FeedbackHandler) PublicSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating      int    `json:"rating"`
		Strengths   string `json:"strengths"`
		Improvement string `json:"improvement"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	err := h.feedback.SubmitResponse(r.Context(), r.PathValue("token"), &domain.FeedbackResponse{
		Rating:      req.Rating,
		Strengths:   req.Strengths,
		Improvement: req.Improvement,
	})
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.FeedbackResponsesSubmitted.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"submitted": true})
}
