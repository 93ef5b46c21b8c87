package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tandemhq/tandem/internal/domain"
)

func TestTierForPriceID(t *testing.T) {
	svc := NewStripeService("sk_test_x", "whsec_x", map[string]string{
		"price_monthly_1": "tier1",
		"price_yearly_1":  "tier1",
		"price_monthly_3": "tier3",
		"price_bogus":     "gold_plated", // not a real tier, must be dropped
	})

	tier, ok := svc.TierForPriceID("price_monthly_1")
	assert.True(t, ok)
	assert.Equal(t, domain.Tier1, tier)

	tier, ok = svc.TierForPriceID("price_yearly_1")
	assert.True(t, ok)
	assert.Equal(t, domain.Tier1, tier)

	tier, ok = svc.TierForPriceID("price_monthly_3")
	assert.True(t, ok)
	assert.Equal(t, domain.Tier3, tier)

	_, ok = svc.TierForPriceID("price_bogus")
	assert.False(t, ok, "unparseable tier names must not map")

	_, ok = svc.TierForPriceID("price_unknown")
	assert.False(t, ok)
}
