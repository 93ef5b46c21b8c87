package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a customer organization. Each tenant has exactly one
// subscription tier; the tier changes only through the platform-admin
// tenant update operation or the billing webhook.
type Tenant struct {
	ID               uuid.UUID
	Name             string
	SubscriptionTier SubscriptionTier
	IsActive         bool
	// MaxEmployees overrides the tier seat limit when set. Nil means
	// "no override, use the tier limit". Negative values mean
	// unlimited (UnlimitedSeats is the canonical write value; legacy
	// NULLs from older rows read as nil here).
	MaxEmployees     *int
	StripeCustomerID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SeatLimit resolves the tenant's effective seat limit: the explicit
// override when present, otherwise the tier limit from the feature
// matrix. Returns UnlimitedSeats when there is no cap.
func (t *Tenant) SeatLimit() int {
	if t.MaxEmployees != nil {
		if SeatsUnlimited(*t.MaxEmployees) {
			return UnlimitedSeats
		}
		return *t.MaxEmployees
	}
	return TierSeatLimit(t.SubscriptionTier)
}

// TenantUpdateParams are the fields a platform operator may change on
// a tenant. Nil fields are left untouched.
type TenantUpdateParams struct {
	ID               uuid.UUID
	Name             *string
	SubscriptionTier *SubscriptionTier
	IsActive         *bool
	MaxEmployees     *int // UnlimitedSeats (-1) to remove the cap
}
