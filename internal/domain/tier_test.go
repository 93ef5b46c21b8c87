package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureMatrix_Exhaustive(t *testing.T) {
	for _, tier := range AllTiers {
		t.Run(string(tier), func(t *testing.T) {
			set, err := GetTierFeatures(tier)
			require.NoError(t, err)

			// Every tier must define a support level and a seat limit
			// (zero seats would mean the matrix entry was left empty).
			assert.NotEmpty(t, set.SupportLevel)
			assert.NotZero(t, set.MaxEmployees)

			display, err := TierDisplayInfo(tier)
			require.NoError(t, err)
			assert.NotEmpty(t, display.DisplayName)
			assert.Equal(t, string(tier), display.ID)
		})
	}
}

func TestGetTierFeatures_UnknownTier(t *testing.T) {
	_, err := GetTierFeatures(SubscriptionTier("tier99"))
	require.Error(t, err)
	assert.Equal(t, EINTERNAL, ErrorCode(err))
}

func TestTierHasFeature(t *testing.T) {
	tests := []struct {
		name    string
		tier    SubscriptionTier
		feature Feature
		want    bool
	}{
		{"tier1 has basic feedback", Tier1, FeatureBasicFeedback, true},
		{"tier1 lacks api access", Tier1, FeatureAPIAccess, false},
		{"tier1 lacks 360 feedback", Tier1, FeatureFeedback360, false},
		{"tier2 has 360 feedback", Tier2, FeatureFeedback360, true},
		{"tier2 lacks custom reports", Tier2, FeatureCustomReports, false},
		{"tier4 has api access", Tier4, FeatureAPIAccess, true},
		{"tier5 has custom branding", Tier5, FeatureCustomBranding, true},
		{"tier3 priority support derived", Tier3, FeaturePrioritySupport, true},
		{"tier5 dedicated counts as priority", Tier5, FeaturePrioritySupport, true},
		{"tier1 email support is not priority", Tier1, FeaturePrioritySupport, false},
		{"free vip has goal tracking", TierFreeVIP, FeatureGoalTracking, true},
		{"lifetime deal has analytics", TierLifetimeDeal, FeatureAdvancedAnalytics, true},
		{"platform internal has everything", TierPlatformInternal, FeatureCustomReports, true},
		{"unknown tier fails closed", SubscriptionTier("tier99"), FeatureBasicFeedback, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierHasFeature(tt.tier, tt.feature))
		})
	}
}

func TestTierSeatLimit(t *testing.T) {
	assert.Equal(t, 5, TierSeatLimit(TierFreeVIP))
	assert.Equal(t, 25, TierSeatLimit(Tier1))
	assert.Equal(t, UnlimitedSeats, TierSeatLimit(Tier5))
	assert.Equal(t, UnlimitedSeats, TierSeatLimit(TierCustomEnterprise))

	// Unknown tiers get zero seats, not a default allowance.
	assert.Equal(t, 0, TierSeatLimit(SubscriptionTier("tier99")))
}

func TestSeatsUnlimited(t *testing.T) {
	assert.True(t, SeatsUnlimited(UnlimitedSeats))
	assert.True(t, SeatsUnlimited(-2)) // any negative reads as unlimited
	assert.False(t, SeatsUnlimited(0))
	assert.False(t, SeatsUnlimited(25))
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("tier3")
	require.NoError(t, err)
	assert.Equal(t, Tier3, tier)

	_, err = ParseTier("platinum")
	require.Error(t, err)
	assert.Equal(t, EINVALID, ErrorCode(err))
}

func TestParseFeature(t *testing.T) {
	f, err := ParseFeature("apiAccess")
	require.NoError(t, err)
	assert.Equal(t, FeatureAPIAccess, f)

	_, err = ParseFeature("apiAcess")
	require.Error(t, err)
	assert.Equal(t, EINVALID, ErrorCode(err))
}

func TestTierFeatureSet_Has_UnknownFeature(t *testing.T) {
	set, err := GetTierFeatures(TierPlatformInternal)
	require.NoError(t, err)
	assert.False(t, set.Has(Feature("madeUp")))
}
