package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

type mockTenantService struct {
	GetFunc    func(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	ListFunc   func(ctx context.Context) ([]*domain.Tenant, error)
	UpdateFunc func(ctx context.Context, params domain.TenantUpdateParams) (*domain.Tenant, error)
}

func (m *mockTenantService) Get(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockTenantService) List(ctx context.Context) ([]*domain.Tenant, error) {
	return m.ListFunc(ctx)
}

func (m *mockTenantService) Update(ctx context.Context, params domain.TenantUpdateParams) (*domain.Tenant, error) {
	return m.UpdateFunc(ctx, params)
}

func testTenant(tier domain.SubscriptionTier) *domain.Tenant {
	return &domain.Tenant{
		ID:               uuid.New(),
		Name:             "Acme Corp",
		SubscriptionTier: tier,
		IsActive:         true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

func TestAdminListTenants(t *testing.T) {
	tenants := []*domain.Tenant{testTenant(domain.Tier1), testTenant(domain.Tier3)}
	h := NewAdminHandler(&mockTenantService{
		ListFunc: func(ctx context.Context) ([]*domain.Tenant, error) {
			return tenants, nil
		},
	}, testLogger())

	rec := httptest.NewRecorder()
	h.ListTenants(rec, httptest.NewRequest(http.MethodGet, "/api/admin/tenants", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tenants []tenantResponse `json:"tenants"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Tenants, 2)
	assert.Equal(t, "tier1", body.Tenants[0].SubscriptionTier)
	// No override: the effective seat limit comes from the tier.
	assert.Equal(t, 25, body.Tenants[0].SeatLimit)
	assert.Equal(t, 100, body.Tenants[1].SeatLimit)
}

func TestAdminUpdateTenantChangesTier(t *testing.T) {
	tenant := testTenant(domain.Tier1)
	var gotParams domain.TenantUpdateParams
	h := NewAdminHandler(&mockTenantService{
		UpdateFunc: func(ctx context.Context, params domain.TenantUpdateParams) (*domain.Tenant, error) {
			gotParams = params
			updated := *tenant
			updated.SubscriptionTier = *params.SubscriptionTier
			return &updated, nil
		},
	}, testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/tenants/"+tenant.ID.String(),
		strings.NewReader(`{"subscriptionTier":"tier4"}`))
	req.SetPathValue("id", tenant.ID.String())
	rec := httptest.NewRecorder()
	h.UpdateTenant(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotParams.SubscriptionTier)
	assert.Equal(t, domain.Tier4, *gotParams.SubscriptionTier)
	assert.Nil(t, gotParams.IsActive)

	var body tenantResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "tier4", body.SubscriptionTier)
}

func TestAdminUpdateTenantRejectsUnknownTier(t *testing.T) {
	id := uuid.New()
	h := NewAdminHandler(&mockTenantService{
		UpdateFunc: func(ctx context.Context, params domain.TenantUpdateParams) (*domain.Tenant, error) {
			if params.SubscriptionTier != nil {
				if _, err := domain.ParseTier(string(*params.SubscriptionTier)); err != nil {
					return nil, err
				}
			}
			t.Fatal("update must not proceed with an unknown tier")
			return nil, nil
		},
	}, testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/tenants/"+id.String(),
		strings.NewReader(`{"subscriptionTier":"diamond"}`))
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	h.UpdateTenant(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body["errorCode"])
}

func TestAdminGetTenantNotFound(t *testing.T) {
	id := uuid.New()
	h := NewAdminHandler(&mockTenantService{
		GetFunc: func(ctx context.Context, gotID uuid.UUID) (*domain.Tenant, error) {
			assert.Equal(t, id, gotID)
			return nil, domain.NotFound("tenant.get", "tenant", gotID.String())
		},
	}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/tenants/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	h.GetTenant(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
