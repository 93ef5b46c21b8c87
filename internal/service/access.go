// Package service contains the business logic layer.
//
// This file implements the access guard: the request-time decision of
// whether a user's tenant tier includes a named feature. The guard is
// stateless and performs no caching; every check re-reads the current
// user and tenant so a tier downgrade takes effect on the very next
// request.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// Denial reasons. The user/tenant variants are deliberately identical
// so a caller cannot tell which lookup failed (prevents enumeration).
const (
	ReasonPrincipalNotFound = "user or tenant not found"
	ReasonTenantNotFound    = "tenant not found"
	ReasonValidationFailed  = "feature validation failed"
)

// AccessStore is the read-only storage surface the guard needs.
// Not-found is reported via repository.IsNotFound-classifiable errors;
// anything else is treated as an I/O failure and fails closed.
type AccessStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetTenantByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
}

// AccessService decides feature access for authenticated users.
type AccessService interface {
	// CheckAccess reports whether the user's tenant tier includes the
	// feature. It never returns an error: storage failures are folded
	// into a denial with Err set, so a careless caller can never
	// misread an exception as "allowed".
	CheckAccess(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision

	// TenantEntitlements resolves a user's tenant tier and effective
	// seat limit, for enrichment rather than enforcement.
	TenantEntitlements(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error)
}

type accessService struct {
	store  AccessStore
	logger *slog.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(store AccessStore, logger *slog.Logger) AccessService {
	return &accessService{store: store, logger: logger}
}

// CheckAccess implements the decision algorithm:
//
//  1. missing user -> denied, generic reason
//  2. platform admin -> allowed, unconditionally
//  3. no tenant reference -> denied, generic reason
//  4. missing tenant -> denied
//  5. otherwise consult the feature matrix for the tenant's tier
//
// Any storage failure along the way is logged and converted into a
// fail-closed denial carrying Err.
func (s *accessService) CheckAccess(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
	const op = "access.check"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.AccessDecision{Allowed: false, Reason: ReasonPrincipalNotFound}
		}
		return s.failClosed(ctx, op, userID, feature, err)
	}

	// Platform operators are never feature-gated. This bypass is
	// load-bearing: tier logic must not be able to lock out the
	// people who administer it.
	if user.IsPlatformAdmin() {
		return domain.AccessDecision{Allowed: true}
	}

	if user.TenantID == nil {
		return domain.AccessDecision{Allowed: false, Reason: ReasonPrincipalNotFound}
	}

	tenant, err := s.store.GetTenantByID(ctx, *user.TenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.AccessDecision{Allowed: false, Reason: ReasonTenantNotFound}
		}
		return s.failClosed(ctx, op, userID, feature, err)
	}

	if !tenant.IsActive {
		return domain.AccessDecision{
			Allowed: false,
			Reason:  "tenant is deactivated",
			Tier:    tenant.SubscriptionTier,
		}
	}

	if !domain.TierHasFeature(tenant.SubscriptionTier, feature) {
		return domain.AccessDecision{
			Allowed: false,
			Reason:  "feature '" + string(feature) + "' not available in '" + string(tenant.SubscriptionTier) + "' tier",
			Tier:    tenant.SubscriptionTier,
		}
	}

	return domain.AccessDecision{Allowed: true, Tier: tenant.SubscriptionTier}
}

// failClosed logs the underlying storage error and returns the generic
// denial. The error never escapes to the caller as an error value.
func (s *accessService) failClosed(ctx context.Context, op string, userID uuid.UUID, feature domain.Feature, err error) domain.AccessDecision {
	s.logger.ErrorContext(ctx, "feature access check failed",
		"op", op,
		"user_id", userID,
		"feature", feature,
		"error", err,
	)
	return domain.AccessDecision{
		Allowed: false,
		Reason:  ReasonValidationFailed,
		Err:     err,
	}
}

// TenantEntitlements returns the user's tenant tier and effective seat
// limit. Unlike CheckAccess this returns errors: it backs best-effort
// enrichment, and the caller decides whether a failure matters.
func (s *accessService) TenantEntitlements(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error) {
	const op = "access.entitlements"

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", 0, domain.Internal(err, op, "failed to load user")
	}
	if user.TenantID == nil {
		return "", 0, domain.NotFound(op, "tenant", "")
	}
	tenant, err := s.store.GetTenantByID(ctx, *user.TenantID)
	if err != nil {
		return "", 0, domain.Internal(err, op, "failed to load tenant")
	}
	return tenant.SubscriptionTier, tenant.SeatLimit(), nil
}
