package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/metrics"
	"github.com/tandemhq/tandem/internal/service"
)

// Wire error codes for feature gating responses. These are part of the
// API contract; clients key upgrade prompts off FEATURE_NOT_AVAILABLE.
const (
	CodeAuthRequired      = "AUTHENTICATION_REQUIRED"
	CodeFeatureGated      = "FEATURE_NOT_AVAILABLE"
	CodeValidationFailure = "FEATURE_VALIDATION_ERROR"
)

const tierInfoContextKey contextKey = "tierInfo"

// TierInfo is the context payload attached by AddTierInfo.
type TierInfo struct {
	Tier      domain.SubscriptionTier
	SeatLimit int // domain.UnlimitedSeats means uncapped
}

// GetTierInfo retrieves tier enrichment from the request context.
// Returns nil when AddTierInfo did not run or could not resolve the
// tenant; handlers must tolerate that.
func GetTierInfo(ctx context.Context) *TierInfo {
	info, ok := ctx.Value(tierInfoContextKey).(*TierInfo)
	if !ok {
		return nil
	}
	return info
}

// FeatureGuard adapts the access guard to HTTP. This is the only place
// that translates access decisions into wire responses, so status codes
// and body shapes cannot drift between routes.
type FeatureGuard struct {
	access service.AccessService
	logger *slog.Logger
}

// NewFeatureGuard creates a new FeatureGuard.
func NewFeatureGuard(access service.AccessService, logger *slog.Logger) *FeatureGuard {
	return &FeatureGuard{access: access, logger: logger}
}

// RequireFeature returns middleware that blocks the request unless the
// authenticated user's tenant tier includes the feature.
//
// Responses:
//   - 401 AUTHENTICATION_REQUIRED when no user is in context
//   - 403 FEATURE_NOT_AVAILABLE with feature, currentTier and
//     upgradeRequired when the tier lacks the feature
//   - 500 FEATURE_VALIDATION_ERROR when the check itself failed; the
//     request is denied, never waved through
//
// Must run after WithUser.
func (g *FeatureGuard) RequireFeature(feature domain.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				metrics.FeatureChecksTotal.WithLabelValues(string(feature), metrics.OutcomeDenied).Inc()
				writeAuthRequired(w)
				return
			}

			decision := g.access.CheckAccess(r.Context(), user.ID, feature)
			if decision.Allowed {
				metrics.FeatureChecksTotal.WithLabelValues(string(feature), metrics.OutcomeAllowed).Inc()
				next.ServeHTTP(w, r)
				return
			}

			g.writeDenial(w, r, feature, decision)
		})
	}
}

// CheckFeatureAccess is the programmatic variant for handlers whose
// behavior branches on a feature rather than being wholly gated, e.g.
// an export endpoint that offers extra formats on higher tiers.
func (g *FeatureGuard) CheckFeatureAccess(r *http.Request, feature domain.Feature) domain.AccessDecision {
	user := GetUser(r.Context())
	if user == nil {
		return domain.AccessDecision{Allowed: false, Reason: service.ReasonPrincipalNotFound}
	}
	decision := g.access.CheckAccess(r.Context(), user.ID, feature)
	outcome := metrics.OutcomeDenied
	if decision.Allowed {
		outcome = metrics.OutcomeAllowed
	} else if decision.Err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.FeatureChecksTotal.WithLabelValues(string(feature), outcome).Inc()
	return decision
}

// AddTierInfo enriches the request context with the tenant's tier and
// seat limit. Unlike RequireFeature it never blocks: any failure is
// logged and the request continues without enrichment. Gating and
// enrichment must not be confused; this middleware guards nothing.
func (g *FeatureGuard) AddTierInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user == nil || user.TenantID == nil {
			next.ServeHTTP(w, r)
			return
		}

		tier, seatLimit, err := g.access.TenantEntitlements(r.Context(), user.ID)
		if err != nil {
			g.logger.Warn("tier enrichment failed",
				"user_id", user.ID,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), tierInfoContextKey, &TierInfo{
			Tier:      tier,
			SeatLimit: seatLimit,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *FeatureGuard) writeDenial(w http.ResponseWriter, r *http.Request, feature domain.Feature, decision domain.AccessDecision) {
	if decision.Err != nil {
		metrics.FeatureChecksTotal.WithLabelValues(string(feature), metrics.OutcomeError).Inc()
		g.logger.Error("feature check failed",
			"feature", feature,
			"path", r.URL.Path,
			"error", decision.Err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message":   "feature validation failed",
			"errorCode": CodeValidationFailure,
		})
		return
	}

	metrics.FeatureChecksTotal.WithLabelValues(string(feature), metrics.OutcomeDenied).Inc()
	writeJSON(w, http.StatusForbidden, map[string]any{
		"message":         decision.Reason,
		"errorCode":       CodeFeatureGated,
		"feature":         string(feature),
		"currentTier":     string(decision.Tier),
		"upgradeRequired": true,
	})
}
