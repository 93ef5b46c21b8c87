package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/tandemhq/tandem/internal/billing"
	"github.com/tandemhq/tandem/internal/service"
)

// Stripe webhook payloads are small JSON documents.
const maxWebhookBytes = 64 << 10

// BillingHandler serves checkout, portal, and the Stripe webhook.
type BillingHandler struct {
	subscriptions service.SubscriptionService
	billing       billing.Service
	logger        *slog.Logger
}

// NewBillingHandler creates a new BillingHandler. Both dependencies may
// be nil when billing is not configured; the endpoints then respond
// without touching Stripe.
func NewBillingHandler(subscriptions service.SubscriptionService, b billing.Service, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		subscriptions: subscriptions,
		billing:       b,
		logger:        logger,
	}
}

func (h *BillingHandler) configured() bool {
	return h.subscriptions != nil && h.billing != nil
}

// Checkout handles POST /api/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Message:   "billing is not configured",
			ErrorCode: "BILLING_UNAVAILABLE",
		})
		return
	}

	user, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req struct {
		PriceID string `json:"priceId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	url, err := h.subscriptions.CheckoutURL(r.Context(), tenantID, user.Email, req.PriceID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Portal handles POST /api/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Message:   "billing is not configured",
			ErrorCode: "BILLING_UNAVAILABLE",
		})
		return
	}

	_, tenantID, err := requireTenant(r)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	url, err := h.subscriptions.PortalURL(r.Context(), tenantID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Webhook handles POST /webhooks/stripe. The endpoint is public;
// authenticity comes from the signature check, never from a session.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if !h.configured() {
		h.logger.Warn("stripe webhook received but billing is not configured")
		w.WriteHeader(http.StatusOK)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.logger.Error("failed to read webhook payload", "error", err)
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	event, err := h.billing.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if err := h.subscriptions.ProcessEvent(r.Context(), event); err != nil {
		// Non-2xx makes Stripe retry, which is what we want for
		// transient storage failures.
		h.logger.Error("failed to process billing event", "type", event.Type, "error", err)
		http.Error(w, "event processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
