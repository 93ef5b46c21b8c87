package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingListsPublicTiersOnly(t *testing.T) {
	h := NewPricingHandler(testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/pricing", nil)
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tiers []struct {
			ID                string   `json:"id"`
			DisplayName       string   `json:"displayName"`
			MonthlyPriceCents int64    `json:"monthlyPriceCents"`
			MaxEmployees      int      `json:"maxEmployees"`
			Features          []string `json:"features"`
		} `json:"tiers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Tiers, 6)

	ids := make(map[string]bool)
	for _, tier := range body.Tiers {
		ids[tier.ID] = true
		assert.NotEmpty(t, tier.DisplayName)
		assert.NotEmpty(t, tier.Features)
	}

	assert.True(t, ids["free_vip"])
	assert.True(t, ids["tier5"])
	// Internal and grandfathered tiers never appear on the pricing page.
	assert.False(t, ids["platform_internal"])
	assert.False(t, ids["lifetime_deal"])
	assert.False(t, ids["custom_enterprise"])

	// Free tier is free; paid tiers are priced.
	for _, tier := range body.Tiers {
		if tier.ID == "free_vip" {
			assert.Zero(t, tier.MonthlyPriceCents)
		} else {
			assert.Positive(t, tier.MonthlyPriceCents)
		}
	}
}
