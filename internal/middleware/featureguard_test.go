package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tandemhq/tandem/internal/domain"
)

type mockAccess struct {
	CheckAccessFunc        func(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision
	TenantEntitlementsFunc func(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error)
}

func (m *mockAccess) CheckAccess(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
	return m.CheckAccessFunc(ctx, userID, feature)
}

func (m *mockAccess) TenantEntitlements(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error) {
	return m.TenantEntitlementsFunc(ctx, userID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func authedRequest(user *domain.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	if user != nil {
		r = r.WithContext(setUser(r.Context(), user))
	}
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRequireFeature_Unauthenticated(t *testing.T) {
	guard := NewFeatureGuard(&mockAccess{
		CheckAccessFunc: func(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
			t.Fatal("access check should not run without a user")
			return domain.AccessDecision{}
		},
	}, testLogger())

	var called bool
	handler := guard.RequireFeature(domain.FeatureAdvancedAnalytics)(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	body := decodeBody(t, rec)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", body["errorCode"])
	assert.Equal(t, "authentication required", body["message"])
}

func TestRequireFeature_Denied(t *testing.T) {
	tenantID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin, TenantID: &tenantID}

	guard := NewFeatureGuard(&mockAccess{
		CheckAccessFunc: func(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
			return domain.AccessDecision{
				Allowed: false,
				Reason:  "feature 'advancedAnalytics' not available in 'tier1' tier",
				Tier:    domain.Tier1,
			}
		},
	}, testLogger())

	var called bool
	handler := guard.RequireFeature(domain.FeatureAdvancedAnalytics)(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(user))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	body := decodeBody(t, rec)
	assert.Equal(t, "FEATURE_NOT_AVAILABLE", body["errorCode"])
	assert.Equal(t, "advancedAnalytics", body["feature"])
	assert.Equal(t, "tier1", body["currentTier"])
	assert.Equal(t, true, body["upgradeRequired"])
	assert.Equal(t, "feature 'advancedAnalytics' not available in 'tier1' tier", body["message"])
}

func TestRequireFeature_Allowed(t *testing.T) {
	tenantID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleManager, TenantID: &tenantID}

	guard := NewFeatureGuard(&mockAccess{
		CheckAccessFunc: func(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
			return domain.AccessDecision{Allowed: true, Tier: domain.Tier3}
		},
	}, testLogger())

	var called bool
	handler := guard.RequireFeature(domain.FeatureAdvancedAnalytics)(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(user))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireFeature_ValidationFailure(t *testing.T) {
	// A broken access check must produce a 500 denial, not a pass.
	tenantID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin, TenantID: &tenantID}

	guard := NewFeatureGuard(&mockAccess{
		CheckAccessFunc: func(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
			return domain.AccessDecision{
				Allowed: false,
				Reason:  "feature validation failed",
				Err:     errors.New("connection refused"),
			}
		},
	}, testLogger())

	var called bool
	handler := guard.RequireFeature(domain.FeatureAPIAccess)(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(user))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)

	body := decodeBody(t, rec)
	assert.Equal(t, "FEATURE_VALIDATION_ERROR", body["errorCode"])
	// The underlying error must not leak to the client.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestAddTierInfo_Enriches(t *testing.T) {
	tenantID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin, TenantID: &tenantID}

	guard := NewFeatureGuard(&mockAccess{
		TenantEntitlementsFunc: func(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error) {
			return domain.Tier2, 50, nil
		},
	}, testLogger())

	var info *TierInfo
	handler := guard.AddTierInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = GetTierInfo(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(user))

	require.NotNil(t, info)
	assert.Equal(t, domain.Tier2, info.Tier)
	assert.Equal(t, 50, info.SeatLimit)
}

func TestAddTierInfo_FailureContinues(t *testing.T) {
	// Enrichment is best-effort: a storage failure logs and the request
	// proceeds without tier info.
	tenantID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin, TenantID: &tenantID}

	guard := NewFeatureGuard(&mockAccess{
		TenantEntitlementsFunc: func(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error) {
			return "", 0, errors.New("connection refused")
		},
	}, testLogger())

	var called bool
	var info *TierInfo
	handler := guard.AddTierInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		info = GetTierInfo(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(user))

	assert.True(t, called)
	assert.Nil(t, info)
}

func TestAddTierInfo_AnonymousContinues(t *testing.T) {
	guard := NewFeatureGuard(&mockAccess{
		TenantEntitlementsFunc: func(ctx context.Context, userID uuid.UUID) (domain.SubscriptionTier, int, error) {
			t.Fatal("entitlements should not be resolved without a user")
			return "", 0, nil
		},
	}, testLogger())

	var called bool
	handler := guard.AddTierInfo(okHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(nil))

	assert.True(t, called)
}

func TestCheckFeatureAccess(t *testing.T) {
	tenantID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleTenantAdmin, TenantID: &tenantID}

	guard := NewFeatureGuard(&mockAccess{
		CheckAccessFunc: func(ctx context.Context, userID uuid.UUID, feature domain.Feature) domain.AccessDecision {
			return domain.AccessDecision{Allowed: feature == domain.FeatureDataExport, Tier: domain.Tier2}
		},
	}, testLogger())

	allowed := guard.CheckFeatureAccess(authedRequest(user), domain.FeatureDataExport)
	assert.True(t, allowed.Allowed)

	denied := guard.CheckFeatureAccess(authedRequest(user), domain.FeatureCustomReports)
	assert.False(t, denied.Allowed)

	anon := guard.CheckFeatureAccess(authedRequest(nil), domain.FeatureDataExport)
	assert.False(t, anon.Allowed)
}
