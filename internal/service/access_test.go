package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

// mockAccessStore implements AccessStore with pluggable behavior.
type mockAccessStore struct {
	GetUserByIDFunc   func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetTenantByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
}

func (m *mockAccessStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetUserByIDFunc(ctx, id)
}

func (m *mockAccessStore) GetTenantByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.GetTenantByIDFunc(ctx, id)
}

// notFoundErr is what the repository surfaces for a missing row.
var notFoundErr = sql.ErrNoRows

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func fixedStore(user *domain.User, tenant *domain.Tenant) *mockAccessStore {
	return &mockAccessStore{
		GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if user == nil {
				return nil, notFoundErr
			}
			return user, nil
		},
		GetTenantByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
			if tenant == nil {
				return nil, notFoundErr
			}
			return tenant, nil
		},
	}
}

func tenantUser(tenantID uuid.UUID, role domain.Role) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Email:    "admin@acme.test",
		Role:     role,
		TenantID: &tenantID,
	}
}

func TestCheckAccess_FeatureNotInTier(t *testing.T) {
	tenantID := uuid.New()
	user := tenantUser(tenantID, domain.RoleTenantAdmin)
	tenant := &domain.Tenant{ID: tenantID, SubscriptionTier: domain.Tier1, IsActive: true}

	svc := NewAccessService(fixedStore(user, tenant), newTestLogger())
	decision := svc.CheckAccess(context.Background(), user.ID, domain.FeatureAPIAccess)

	assert.False(t, decision.Allowed)
	assert.Equal(t, "feature 'apiAccess' not available in 'tier1' tier", decision.Reason)
	assert.Equal(t, domain.Tier1, decision.Tier)
	assert.NoError(t, decision.Err)
}

func TestCheckAccess_FeatureInTier(t *testing.T) {
	tenantID := uuid.New()
	user := tenantUser(tenantID, domain.RoleTenantAdmin)
	tenant := &domain.Tenant{ID: tenantID, SubscriptionTier: domain.Tier1, IsActive: true}

	svc := NewAccessService(fixedStore(user, tenant), newTestLogger())
	decision := svc.CheckAccess(context.Background(), user.ID, domain.FeatureBasicFeedback)

	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
	assert.Equal(t, domain.Tier1, decision.Tier)
}

func TestCheckAccess_PlatformAdminBypass(t *testing.T) {
	// Platform admins are allowed every feature regardless of tenant
	// tier, even with no tenant at all.
	admin := &domain.User{ID: uuid.New(), Role: domain.RolePlatformAdmin}
	store := fixedStore(admin, nil)
	svc := NewAccessService(store, newTestLogger())

	for _, feature := range domain.AllFeatures {
		decision := svc.CheckAccess(context.Background(), admin.ID, feature)
		assert.True(t, decision.Allowed, "feature %s", feature)
	}
}

func TestCheckAccess_UserNotFound(t *testing.T) {
	svc := NewAccessService(fixedStore(nil, nil), newTestLogger())
	decision := svc.CheckAccess(context.Background(), uuid.New(), domain.FeatureAPIAccess)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonPrincipalNotFound, decision.Reason)
}

func TestCheckAccess_UserWithoutTenant(t *testing.T) {
	// Same generic reason as a missing user, so callers can't probe
	// which lookup failed.
	user := &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin}
	svc := NewAccessService(fixedStore(user, nil), newTestLogger())

	decision := svc.CheckAccess(context.Background(), user.ID, domain.FeatureAPIAccess)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonPrincipalNotFound, decision.Reason)
}

func TestCheckAccess_TenantNotFound(t *testing.T) {
	tenantID := uuid.New()
	user := tenantUser(tenantID, domain.RoleTenantAdmin)
	svc := NewAccessService(fixedStore(user, nil), newTestLogger())

	decision := svc.CheckAccess(context.Background(), user.ID, domain.FeatureAPIAccess)

	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonTenantNotFound, decision.Reason)
}

func TestCheckAccess_InactiveTenant(t *testing.T) {
	tenantID := uuid.New()
	user := tenantUser(tenantID, domain.RoleTenantAdmin)
	tenant := &domain.Tenant{ID: tenantID, SubscriptionTier: domain.Tier4, IsActive: false}

	svc := NewAccessService(fixedStore(user, tenant), newTestLogger())
	decision := svc.CheckAccess(context.Background(), user.ID, domain.FeatureAPIAccess)

	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.Tier4, decision.Tier)
}

func TestCheckAccess_StorageErrorFailsClosed(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		store *mockAccessStore
	}{
		{
			name: "user lookup fails",
			store: &mockAccessStore{
				GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
					return nil, boom
				},
				GetTenantByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
					t.Fatal("tenant lookup should not be reached")
					return nil, nil
				},
			},
		},
		{
			name: "tenant lookup fails",
			store: &mockAccessStore{
				GetUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
					tenantID := uuid.New()
					return tenantUser(tenantID, domain.RoleTenantAdmin), nil
				},
				GetTenantByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
					return nil, boom
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAccessService(tt.store, newTestLogger())
			decision := svc.CheckAccess(context.Background(), uuid.New(), domain.FeatureAPIAccess)

			assert.False(t, decision.Allowed)
			assert.Equal(t, ReasonValidationFailed, decision.Reason)
			assert.Error(t, decision.Err)
		})
	}
}

func TestCheckAccess_NoCachingAcrossCalls(t *testing.T) {
	// A tier change between two calls must be reflected by the second
	// call: the guard re-resolves tenant state every time.
	tenantID := uuid.New()
	user := tenantUser(tenantID, domain.RoleTenantAdmin)
	tenant := &domain.Tenant{ID: tenantID, SubscriptionTier: domain.Tier4, IsActive: true}

	svc := NewAccessService(fixedStore(user, tenant), newTestLogger())

	first := svc.CheckAccess(context.Background(), user.ID, domain.FeatureAPIAccess)
	assert.True(t, first.Allowed)

	tenant.SubscriptionTier = domain.Tier1 // downgrade

	second := svc.CheckAccess(context.Background(), user.ID, domain.FeatureAPIAccess)
	assert.False(t, second.Allowed)
	assert.Equal(t, domain.Tier1, second.Tier)
}

func TestCheckAccess_Idempotent(t *testing.T) {
	tenantID := uuid.New()
	user := tenantUser(tenantID, domain.RoleManager)
	tenant := &domain.Tenant{ID: tenantID, SubscriptionTier: domain.Tier2, IsActive: true}

	svc := NewAccessService(fixedStore(user, tenant), newTestLogger())

	first := svc.CheckAccess(context.Background(), user.ID, domain.FeatureCustomReports)
	second := svc.CheckAccess(context.Background(), user.ID, domain.FeatureCustomReports)

	assert.Equal(t, first, second)
}

func TestTenantEntitlements(t *testing.T) {
	tenantID := uuid.New()
	override := 40
	user := tenantUser(tenantID, domain.RoleTenantAdmin)
	tenant := &domain.Tenant{
		ID:               tenantID,
		SubscriptionTier: domain.Tier1,
		IsActive:         true,
		MaxEmployees:     &override,
	}

	svc := NewAccessService(fixedStore(user, tenant), newTestLogger())
	tier, seats, err := svc.TenantEntitlements(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.Tier1, tier)
	assert.Equal(t, 40, seats)
}

func TestTenantEntitlements_NoTenant(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RolePlatformAdmin}
	svc := NewAccessService(fixedStore(user, nil), newTestLogger())

	_, _, err := svc.TenantEntitlements(context.Background(), user.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
