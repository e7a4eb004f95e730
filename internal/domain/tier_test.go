package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionTier_Label(t *testing.T) {
	assert.Equal(t, "Free", (&SubscriptionTier{Name: "free"}).Label())
	assert.Equal(t, "Unlimited", (&SubscriptionTier{Name: "unlimited"}).Label())
	assert.Equal(t, "Pro Plus", (&SubscriptionTier{Name: "pro", DisplayName: "Pro Plus"}).Label())
}

func TestSubscriptionTier_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tier    SubscriptionTier
		field   string
		wantErr bool
	}{
		{"valid", SubscriptionTier{Name: "pro", MaxShops: 3}, "", false},
		{"zero caps are valid", SubscriptionTier{Name: "closed"}, "", false},
		{"missing name", SubscriptionTier{}, "name", true},
		{"uppercase name", SubscriptionTier{Name: "Pro"}, "name", true},
		{"negative shops", SubscriptionTier{Name: "x", MaxShops: -1}, "max_shops", true},
		{"negative shelves", SubscriptionTier{Name: "x", MaxShelvesPerShop: -1}, "max_shelves_per_shop", true},
		{"negative items", SubscriptionTier{Name: "x", MaxItemsPerShelf: -2}, "max_items_per_shelf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tier.Validate("test")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			if assert.ErrorAs(t, err, &ve) {
				assert.Contains(t, ve.Fields, tt.field)
			}
		})
	}
}
