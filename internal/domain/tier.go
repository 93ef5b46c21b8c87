// Package domain contains core business types and interfaces.
//
// This file defines the subscription tier enumeration and the feature
// matrix: a total, immutable mapping from every tier to the set of
// features and limits it includes. The matrix is built once at load
// time and only ever read, so it is safe to consult from any number of
// concurrent request handlers without synchronization.
package domain

import "fmt"

// SubscriptionTier identifies a tenant's pricing tier. The set is
// closed; tiers are assigned to tenants by platform operators or by
// the billing webhook, never invented at runtime.
type SubscriptionTier string

const (
	TierFreeVIP          SubscriptionTier = "free_vip"
	Tier1                SubscriptionTier = "tier1"
	Tier2                SubscriptionTier = "tier2"
	Tier3                SubscriptionTier = "tier3"
	Tier4                SubscriptionTier = "tier4"
	Tier5                SubscriptionTier = "tier5"
	TierLifetimeDeal     SubscriptionTier = "lifetime_deal"
	TierPlatformInternal SubscriptionTier = "platform_internal"
	TierCustomEnterprise SubscriptionTier = "custom_enterprise"
)

// AllTiers lists every known tier. The load-time check below walks
// this slice, so adding a tier here without a matrix entry fails at
// startup rather than as a missing-feature bug in production.
var AllTiers = []SubscriptionTier{
	TierFreeVIP,
	Tier1,
	Tier2,
	Tier3,
	Tier4,
	Tier5,
	TierLifetimeDeal,
	TierPlatformInternal,
	TierCustomEnterprise,
}

// Feature identifies a gateable product capability. Using a closed
// typed constant set instead of raw strings eliminates typo-class
// bugs in feature checks; inbound strings go through ParseFeature.
type Feature string

const (
	FeatureBasicFeedback      Feature = "basicFeedback"
	FeatureFeedback360        Feature = "feedback360"
	FeaturePerformanceReviews Feature = "performanceReviews"
	FeatureGoalTracking       Feature = "goalTracking"
	FeatureAdvancedAnalytics  Feature = "advancedAnalytics"
	FeatureCustomReports      Feature = "customReports"
	FeatureAPIAccess          Feature = "apiAccess"
	FeatureCustomBranding     Feature = "customBranding"
	FeatureDataExport         Feature = "dataExport"
	FeaturePrioritySupport    Feature = "prioritySupport"
)

// AllFeatures lists every gateable feature.
var AllFeatures = []Feature{
	FeatureBasicFeedback,
	FeatureFeedback360,
	FeaturePerformanceReviews,
	FeatureGoalTracking,
	FeatureAdvancedAnalytics,
	FeatureCustomReports,
	FeatureAPIAccess,
	FeatureCustomBranding,
	FeatureDataExport,
	FeaturePrioritySupport,
}

// SupportLevel is the support channel included with a tier.
type SupportLevel string

const (
	SupportEmail     SupportLevel = "email"
	SupportPriority  SupportLevel = "priority"
	SupportDedicated SupportLevel = "dedicated"
)

// UnlimitedSeats is the canonical sentinel for "no seat limit".
// Reads must also treat legacy NULL overrides on the tenant record as
// unlimited; new writes always use this value.
const UnlimitedSeats = -1

// SeatsUnlimited reports whether a seat limit value means "unlimited".
func SeatsUnlimited(limit int) bool {
	return limit < 0
}

// TierFeatureSet is the full entitlement record for one tier.
// MaxEmployees is a numeric limit, not a feature flag; callers needing
// the seat count use TierSeatLimit, never Has.
type TierFeatureSet struct {
	MaxEmployees       int
	BasicFeedback      bool
	Feedback360        bool
	PerformanceReviews bool
	GoalTracking       bool
	AdvancedAnalytics  bool
	CustomReports      bool
	APIAccess          bool
	CustomBranding     bool
	DataExport         bool
	SupportLevel       SupportLevel
}

// Has returns the boolean flag for the named feature.
// FeaturePrioritySupport is derived from the support level so callers
// can gate on it like any other flag.
func (s TierFeatureSet) Has(f Feature) bool {
	switch f {
	case FeatureBasicFeedback:
		return s.BasicFeedback
	case FeatureFeedback360:
		return s.Feedback360
	case FeaturePerformanceReviews:
		return s.PerformanceReviews
	case FeatureGoalTracking:
		return s.GoalTracking
	case FeatureAdvancedAnalytics:
		return s.AdvancedAnalytics
	case FeatureCustomReports:
		return s.CustomReports
	case FeatureAPIAccess:
		return s.APIAccess
	case FeatureCustomBranding:
		return s.CustomBranding
	case FeatureDataExport:
		return s.DataExport
	case FeaturePrioritySupport:
		return s.SupportLevel == SupportPriority || s.SupportLevel == SupportDedicated
	default:
		return false
	}
}

// tierFeatures is the feature matrix. It is package-private and only
// reachable through the accessor functions, so nothing can mutate it
// after load.
var tierFeatures = map[SubscriptionTier]TierFeatureSet{
	TierFreeVIP: {
		MaxEmployees:  5,
		BasicFeedback: true,
		GoalTracking:  true,
		SupportLevel:  SupportEmail,
	},
	Tier1: {
		MaxEmployees:       25,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		SupportLevel:       SupportEmail,
	},
	Tier2: {
		MaxEmployees:       50,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		SupportLevel:       SupportEmail,
	},
	Tier3: {
		MaxEmployees:       100,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		AdvancedAnalytics:  true,
		SupportLevel:       SupportPriority,
	},
	Tier4: {
		MaxEmployees:       250,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		AdvancedAnalytics:  true,
		CustomReports:      true,
		APIAccess:          true,
		SupportLevel:       SupportPriority,
	},
	Tier5: {
		MaxEmployees:       UnlimitedSeats,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		AdvancedAnalytics:  true,
		CustomReports:      true,
		APIAccess:          true,
		CustomBranding:     true,
		SupportLevel:       SupportDedicated,
	},
	TierLifetimeDeal: {
		MaxEmployees:       50,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		AdvancedAnalytics:  true,
		SupportLevel:       SupportEmail,
	},
	TierPlatformInternal: {
		MaxEmployees:       UnlimitedSeats,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		AdvancedAnalytics:  true,
		CustomReports:      true,
		APIAccess:          true,
		CustomBranding:     true,
		SupportLevel:       SupportDedicated,
	},
	TierCustomEnterprise: {
		MaxEmployees:       UnlimitedSeats,
		BasicFeedback:      true,
		GoalTracking:       true,
		PerformanceReviews: true,
		Feedback360:        true,
		DataExport:         true,
		AdvancedAnalytics:  true,
		CustomReports:      true,
		APIAccess:          true,
		CustomBranding:     true,
		SupportLevel:       SupportDedicated,
	},
}

// TierDisplay holds presentation metadata for a tier. Kept separate
// from the feature booleans so pricing changes never touch gating
// logic.
type TierDisplay struct {
	ID                string
	DisplayName       string
	MonthlyPriceCents int64
	YearlyPriceCents  int64
	MaxEmployees      int
	Features          []string
}

var tierDisplay = map[SubscriptionTier]TierDisplay{
	TierFreeVIP: {
		ID: string(TierFreeVIP), DisplayName: "Free VIP",
		MonthlyPriceCents: 0, YearlyPriceCents: 0, MaxEmployees: 5,
		Features: []string{"Up to 5 employees", "Basic feedback", "Goal tracking", "Email support"},
	},
	Tier1: {
		ID: string(Tier1), DisplayName: "Starter",
		MonthlyPriceCents: 2900, YearlyPriceCents: 29000, MaxEmployees: 25,
		Features: []string{"Up to 25 employees", "Basic feedback", "Goal tracking", "Performance reviews", "Email support"},
	},
	Tier2: {
		ID: string(Tier2), DisplayName: "Team",
		MonthlyPriceCents: 5900, YearlyPriceCents: 59000, MaxEmployees: 50,
		Features: []string{"Up to 50 employees", "360° feedback", "Performance reviews", "Data export", "Email support"},
	},
	Tier3: {
		ID: string(Tier3), DisplayName: "Growth",
		MonthlyPriceCents: 9900, YearlyPriceCents: 99000, MaxEmployees: 100,
		Features: []string{"Up to 100 employees", "360° feedback", "Advanced analytics", "Data export", "Priority support"},
	},
	Tier4: {
		ID: string(Tier4), DisplayName: "Scale",
		MonthlyPriceCents: 19900, YearlyPriceCents: 199000, MaxEmployees: 250,
		Features: []string{"Up to 250 employees", "Custom reports", "API access", "Advanced analytics", "Priority support"},
	},
	Tier5: {
		ID: string(Tier5), DisplayName: "Enterprise",
		MonthlyPriceCents: 39900, YearlyPriceCents: 399000, MaxEmployees: UnlimitedSeats,
		Features: []string{"Unlimited employees", "Custom branding", "Custom reports", "API access", "Dedicated support"},
	},
	TierLifetimeDeal: {
		ID: string(TierLifetimeDeal), DisplayName: "Lifetime Deal",
		MonthlyPriceCents: 0, YearlyPriceCents: 0, MaxEmployees: 50,
		Features: []string{"Up to 50 employees", "360° feedback", "Advanced analytics", "Data export", "Email support"},
	},
	TierPlatformInternal: {
		ID: string(TierPlatformInternal), DisplayName: "Platform Internal",
		MonthlyPriceCents: 0, YearlyPriceCents: 0, MaxEmployees: UnlimitedSeats,
		Features: []string{"Internal use only"},
	},
	TierCustomEnterprise: {
		ID: string(TierCustomEnterprise), DisplayName: "Custom Enterprise",
		MonthlyPriceCents: 0, YearlyPriceCents: 0, MaxEmployees: UnlimitedSeats,
		Features: []string{"Unlimited employees", "All features", "Custom contract pricing", "Dedicated support"},
	},
}

func init() {
	// A tier added to AllTiers without matrix or display entries is a
	// deploy-time defect, not a runtime condition. Refuse to start.
	for _, tier := range AllTiers {
		if _, ok := tierFeatures[tier]; !ok {
			panic(fmt.Sprintf("domain: tier %q has no feature set", tier))
		}
		if _, ok := tierDisplay[tier]; !ok {
			panic(fmt.Sprintf("domain: tier %q has no display info", tier))
		}
	}
}

// GetTierFeatures returns the full feature set for a tier.
// It fails only for a value outside the closed enumeration, which is a
// programming error in the caller, never a normal runtime condition.
func GetTierFeatures(tier SubscriptionTier) (TierFeatureSet, error) {
	set, ok := tierFeatures[tier]
	if !ok {
		return TierFeatureSet{}, Errorf(EINTERNAL, "tier.features", "unknown subscription tier %q", tier)
	}
	return set, nil
}

// TierHasFeature reports whether a tier includes a feature.
// Unknown tiers have no features (fail closed).
func TierHasFeature(tier SubscriptionTier, feature Feature) bool {
	set, ok := tierFeatures[tier]
	if !ok {
		return false
	}
	return set.Has(feature)
}

// TierSeatLimit returns the seat limit for a tier, UnlimitedSeats for
// unlimited tiers. Unknown tiers get zero seats (fail closed).
func TierSeatLimit(tier SubscriptionTier) int {
	set, ok := tierFeatures[tier]
	if !ok {
		return 0
	}
	return set.MaxEmployees
}

// TierDisplayInfo returns presentation metadata for a tier.
func TierDisplayInfo(tier SubscriptionTier) (TierDisplay, error) {
	d, ok := tierDisplay[tier]
	if !ok {
		return TierDisplay{}, Errorf(EINTERNAL, "tier.display", "unknown subscription tier %q", tier)
	}
	return d, nil
}

// ParseTier validates an inbound tier identifier.
func ParseTier(s string) (SubscriptionTier, error) {
	tier := SubscriptionTier(s)
	if _, ok := tierFeatures[tier]; !ok {
		return "", Invalid("tier.parse", fmt.Sprintf("unknown subscription tier %q", s))
	}
	return tier, nil
}

// ParseFeature validates an inbound feature name.
func ParseFeature(s string) (Feature, error) {
	for _, f := range AllFeatures {
		if string(f) == s {
			return f, nil
		}
	}
	return "", Invalid("feature.parse", fmt.Sprintf("unknown feature %q", s))
}

// AccessDecision is the result of a feature access check. It is
// produced fresh on every check and never persisted; it carries enough
// detail for the HTTP layer to render an actionable upgrade prompt.
type AccessDecision struct {
	Allowed bool
	Reason  string
	Tier    SubscriptionTier
	// Err is set when the check itself failed (storage errors). The
	// decision is still a denial; Err exists so the adapter can
	// distinguish "we couldn't determine your access" from "your plan
	// doesn't include this".
	Err error
}
