package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/tandemhq/tandem/internal/billing"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// SubscriptionService connects tenants to Stripe. It is the only
// billing-driven path that changes a tenant's tier; the platform-admin
// tenant update is the only manual one.
type SubscriptionService interface {
	// CheckoutURL creates (if needed) the tenant's Stripe customer and
	// returns a Checkout URL for the given price.
	CheckoutURL(ctx context.Context, tenantID uuid.UUID, userEmail, priceID string) (string, error)

	// PortalURL returns a Customer Portal URL for an already-subscribed
	// tenant.
	PortalURL(ctx context.Context, tenantID uuid.UUID) (string, error)

	// ProcessEvent applies a verified Stripe webhook event. Unknown
	// event types and unknown prices are ignored, not errors; Stripe
	// retries on non-2xx and there is nothing to retry here.
	ProcessEvent(ctx context.Context, event stripe.Event) error
}

type subscriptionService struct {
	queries *repository.Queries
	billing billing.Service
	baseURL string
	logger  *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService. baseURL is
// the public origin used for checkout redirect URLs.
func NewSubscriptionService(queries *repository.Queries, b billing.Service, baseURL string, logger *slog.Logger) SubscriptionService {
	return &subscriptionService{
		queries: queries,
		billing: b,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (s *subscriptionService) CheckoutURL(ctx context.Context, tenantID uuid.UUID, userEmail, priceID string) (string, error) {
	const op = "subscription.checkout"

	if _, ok := s.billing.TierForPriceID(priceID); !ok {
		return "", domain.Invalid(op, "unknown price")
	}

	tenant, err := s.queries.GetTenantByID(ctx, tenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", domain.NotFound(op, "tenant", tenantID.String())
		}
		return "", domain.Internal(err, op, "failed to load tenant")
	}

	customerID := tenant.StripeCustomerID
	if customerID == "" {
		customerID, err = s.billing.CreateCustomer(userEmail, tenant.Name)
		if err != nil {
			return "", domain.Internal(err, op, "failed to create billing customer")
		}
		if err := s.queries.UpdateTenantStripeCustomer(ctx, tenant.ID, customerID); err != nil {
			return "", domain.Internal(err, op, "failed to record billing customer")
		}
		s.logger.Info("billing customer created", "tenant_id", tenant.ID)
	}

	url, err := s.billing.CreateCheckoutSession(customerID, priceID,
		s.baseURL+"/billing/success", s.baseURL+"/billing/cancel")
	if err != nil {
		return "", domain.Internal(err, op, "failed to create checkout session")
	}
	return url, nil
}

func (s *subscriptionService) PortalURL(ctx context.Context, tenantID uuid.UUID) (string, error) {
	const op = "subscription.portal"

	tenant, err := s.queries.GetTenantByID(ctx, tenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", domain.NotFound(op, "tenant", tenantID.String())
		}
		return "", domain.Internal(err, op, "failed to load tenant")
	}
	if tenant.StripeCustomerID == "" {
		return "", domain.Invalid(op, "tenant has no billing account yet")
	}

	url, err := s.billing.CreatePortalSession(tenant.StripeCustomerID, s.baseURL+"/billing")
	if err != nil {
		return "", domain.Internal(err, op, "failed to create portal session")
	}
	return url, nil
}

func (s *subscriptionService) ProcessEvent(ctx context.Context, event stripe.Event) error {
	const op = "subscription.webhook"

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return domain.Internal(err, op, "failed to parse subscription event")
		}
		return s.applySubscription(ctx, op, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return domain.Internal(err, op, "failed to parse subscription event")
		}
		return s.downgrade(ctx, op, &sub)

	default:
		s.logger.Debug("ignoring billing event", "type", event.Type)
		return nil
	}
}

func (s *subscriptionService) applySubscription(ctx context.Context, op string, sub *stripe.Subscription) error {
	if sub.Customer == nil || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		s.logger.Warn("billing event missing customer or price", "subscription_id", sub.ID)
		return nil
	}

	priceID := sub.Items.Data[0].Price.ID
	tier, ok := s.billing.TierForPriceID(priceID)
	if !ok {
		s.logger.Warn("billing event for unknown price", "price_id", priceID)
		return nil
	}

	tenant, err := s.queries.GetTenantByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("billing event for unknown customer", "customer_id", sub.Customer.ID)
			return nil
		}
		return domain.Internal(err, op, "failed to load tenant for billing event")
	}

	active := sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing
	if err := s.queries.UpdateTenantSubscription(ctx, tenant.ID, tier, active); err != nil {
		return domain.Internal(err, op, "failed to apply subscription change")
	}

	s.logger.Info("subscription updated",
		"tenant_id", tenant.ID,
		"tier", tier,
		"active", active,
	)
	return nil
}

func (s *subscriptionService) downgrade(ctx context.Context, op string, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return nil
	}

	tenant, err := s.queries.GetTenantByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("billing event for unknown customer", "customer_id", sub.Customer.ID)
			return nil
		}
		return domain.Internal(err, op, "failed to load tenant for billing event")
	}

	// Cancelled tenants keep access on the free tier rather than being
	// locked out.
	if err := s.queries.UpdateTenantSubscription(ctx, tenant.ID, domain.TierFreeVIP, true); err != nil {
		return domain.Internal(err, op, "failed to downgrade tenant")
	}

	s.logger.Info("subscription cancelled, tenant downgraded",
		"tenant_id", tenant.ID,
		"tier", domain.TierFreeVIP,
	)
	return nil
}
