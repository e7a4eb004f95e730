// Package domain contains core business types and interfaces.
//
// This file defines the subscription catalog types. A tier caps how many shops
// an account may own, how many shelves each shop may hold, and how many items
// (products and services combined) each shelf may hold.
package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier names seeded by the initial migration.
const (
	TierFree      = "free"
	TierPro       = "pro"
	TierUnlimited = "unlimited"
)

// SubscriptionTier is a named plan with numeric capacity caps.
// It is immutable at request time and looked up by name.
type SubscriptionTier struct {
	Name              string
	DisplayName       string
	MaxShops          int
	MaxShelvesPerShop int
	MaxItemsPerShelf  int
	IsActive          bool
}

// Label returns the name shown to end users in quota messages.
// Falls back to the title-cased tier name when no display name is stored.
func (t *SubscriptionTier) Label() string {
	if strings.TrimSpace(t.DisplayName) != "" {
		return t.DisplayName
	}
	return cases.Title(language.English).String(t.Name)
}

// Cap returns the cap that applies to the given quota kind.
func (t *SubscriptionTier) Cap(kind QuotaKind) int {
	switch kind {
	case QuotaShops:
		return t.MaxShops
	case QuotaShelves:
		return t.MaxShelvesPerShop
	case QuotaItems:
		return t.MaxItemsPerShelf
	default:
		return 0
	}
}

// Validate checks catalog invariants before an admin edit is stored.
func (t *SubscriptionTier) Validate(op string) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return NewValidationError(op, "name", "Tier name is required")
	}
	if name != strings.ToLower(name) {
		return NewValidationError(op, "name", "Tier name must be lowercase")
	}
	if t.MaxShops < 0 {
		return NewValidationError(op, "max_shops", "Cap must not be negative")
	}
	if t.MaxShelvesPerShop < 0 {
		return NewValidationError(op, "max_shelves_per_shop", "Cap must not be negative")
	}
	if t.MaxItemsPerShelf < 0 {
		return NewValidationError(op, "max_items_per_shelf", "Cap must not be negative")
	}
	return nil
}
