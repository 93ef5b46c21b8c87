package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/repository"
)

// TenantService exposes the platform-operator tenant surface. Tier
// changes flow through here (or the billing webhook); nothing else in
// the system mutates a tenant's subscription.
type TenantService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)

	// Update applies a partial update. Tier values are validated
	// against the closed enumeration before touching storage.
	Update(ctx context.Context, params domain.TenantUpdateParams) (*domain.Tenant, error)
}

type tenantService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewTenantService creates a new TenantService.
func NewTenantService(queries *repository.Queries, logger *slog.Logger) TenantService {
	return &tenantService{queries: queries, logger: logger}
}

func (s *tenantService) Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	const op = "tenant.get"
	tenant, err := s.queries.GetTenantByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "tenant", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load tenant")
	}
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context) ([]*domain.Tenant, error) {
	const op = "tenant.list"
	tenants, err := s.queries.ListTenants(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list tenants")
	}
	return tenants, nil
}

func (s *tenantService) Update(ctx context.Context, params domain.TenantUpdateParams) (*domain.Tenant, error) {
	const op = "tenant.update"

	if params.SubscriptionTier != nil {
		if _, err := domain.ParseTier(string(*params.SubscriptionTier)); err != nil {
			return nil, err
		}
	}
	if params.MaxEmployees != nil && *params.MaxEmployees < 0 {
		// Normalize any negative input to the canonical sentinel.
		unlimited := domain.UnlimitedSeats
		params.MaxEmployees = &unlimited
	}

	tenant, err := s.queries.UpdateTenant(ctx, params)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, domain.NotFound(op, "tenant", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to update tenant")
	}

	s.logger.Info("tenant updated",
		"tenant_id", tenant.ID,
		"tier", tenant.SubscriptionTier,
		"active", tenant.IsActive,
	)
	return tenant, nil
}
