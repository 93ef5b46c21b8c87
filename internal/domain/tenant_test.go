package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenant_SeatLimit(t *testing.T) {
	override := 40
	negative := -1

	tests := []struct {
		name   string
		tenant Tenant
		want   int
	}{
		{"tier limit when no override", Tenant{SubscriptionTier: Tier1}, 25},
		{"override wins", Tenant{SubscriptionTier: Tier1, MaxEmployees: &override}, 40},
		{"negative override means unlimited", Tenant{SubscriptionTier: Tier1, MaxEmployees: &negative}, UnlimitedSeats},
		{"unlimited tier", Tenant{SubscriptionTier: Tier5}, UnlimitedSeats},
		{"unknown tier fails closed to zero", Tenant{SubscriptionTier: "tier99"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tenant.SeatLimit())
		})
	}
}
