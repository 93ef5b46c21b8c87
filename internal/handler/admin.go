package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/service"
)

// AdminHandler serves the platform-operator tenant surface. Routes are
// mounted behind the platform-admin middleware; tier changes here and
// the billing webhook are the only two ways a tenant's tier moves.
type AdminHandler struct {
	tenants service.TenantService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(tenants service.TenantService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{tenants: tenants, logger: logger}
}

type tenantResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	SubscriptionTier string    `json:"subscriptionTier"`
	IsActive         bool      `json:"isActive"`
	MaxEmployees     *int      `json:"maxEmployees"`
	// SeatLimit is the effective limit after the override is applied;
	// -1 means unlimited.
	SeatLimit      int       `json:"seatLimit"`
	HasBillingLink bool      `json:"hasBillingLink"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toTenantResponse(t *domain.Tenant) tenantResponse {
	return tenantResponse{
		ID:               t.ID,
		Name:             t.Name,
		SubscriptionTier: string(t.SubscriptionTier),
		IsActive:         t.IsActive,
		MaxEmployees:     t.MaxEmployees,
		SeatLimit:        t.SeatLimit(),
		HasBillingLink:   t.StripeCustomerID != "",
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// ListTenants handles GET /api/admin/tenants.
func (h *AdminHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": out})
}

// GetTenant handles GET /api/admin/tenants/{id}.
func (h *AdminHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	tenant, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantResponse(tenant))
}

// UpdateTenant handles PATCH /api/admin/tenants/{id}.
func (h *AdminHandler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		Name             *string `json:"name"`
		SubscriptionTier *string `json:"subscriptionTier"`
		IsActive         *bool   `json:"isActive"`
		MaxEmployees     *int    `json:"maxEmployees"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.TenantUpdateParams{
		ID:           id,
		Name:         req.Name,
		IsActive:     req.IsActive,
		MaxEmployees: req.MaxEmployees,
	}
	if req.SubscriptionTier != nil {
		tier := domain.SubscriptionTier(*req.SubscriptionTier)
		params.SubscriptionTier = &tier
	}

	tenant, err := h.tenants.Update(r.Context(), params)
	if err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantResponse(tenant))
}
