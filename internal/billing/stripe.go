// Package billing provides Stripe integration for subscription
// management. Tiers map to Stripe price IDs via configuration; the
// webhook is the only billing-driven path that changes a tenant's
// tier.
package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	billingportalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/tandemhq/tandem/internal/domain"
)

// Service defines the billing operations used by the handlers.
type Service interface {
	// CreateCustomer creates a Stripe customer for a tenant.
	CreateCustomer(email, tenantName string) (string, error)

	// CreateCheckoutSession returns a Checkout URL for subscribing to
	// the given price.
	CreateCheckoutSession(customerID, priceID, successURL, cancelURL string) (string, error)

	// CreatePortalSession returns a Customer Portal URL.
	CreatePortalSession(customerID, returnURL string) (string, error)

	// CancelSubscription sets cancel_at_period_end on a subscription.
	CancelSubscription(subscriptionID string) error

	// VerifyWebhookSignature verifies and parses a webhook payload.
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)

	// TierForPriceID resolves the tier a Stripe price sells. Returns
	// false for unknown prices.
	TierForPriceID(priceID string) (domain.SubscriptionTier, bool)
}

type stripeService struct {
	webhookSecret string
	priceToTier   map[string]domain.SubscriptionTier
}

// NewStripeService creates a Stripe billing service. priceIDs maps
// Stripe price IDs to tier identifiers as configured in the
// environment; invalid tier names are dropped.
func NewStripeService(secretKey, webhookSecret string, priceIDs map[string]string) Service {
	stripe.Key = secretKey

	priceToTier := make(map[string]domain.SubscriptionTier, len(priceIDs))
	for priceID, tierName := range priceIDs {
		tier, err := domain.ParseTier(tierName)
		if err != nil {
			continue
		}
		priceToTier[priceID] = tier
	}

	return &stripeService{
		webhookSecret: webhookSecret,
		priceToTier:   priceToTier,
	}
}

func (s *stripeService) CreateCustomer(email, tenantName string) (string, error) {
	c, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(tenantName),
	})
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

func (s *stripeService) CreateCheckoutSession(customerID, priceID, successURL, cancelURL string) (string, error) {
	sess, err := checkoutsession.New(&stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	})
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) CreatePortalSession(customerID, returnURL string) (string, error) {
	sess, err := billingportalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return "", fmt.Errorf("stripe create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) CancelSubscription(subscriptionID string) error {
	_, err := subscription.Update(subscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("stripe cancel subscription: %w", err)
	}
	return nil
}

func (s *stripeService) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripe webhook signature verification failed: %w", err)
	}
	return event, nil
}

func (s *stripeService) TierForPriceID(priceID string) (domain.SubscriptionTier, bool) {
	tier, ok := s.priceToTier[priceID]
	return tier, ok
}
