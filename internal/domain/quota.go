package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// QuotaKind identifies which tier cap applies to a placement.
type QuotaKind string

const (
	QuotaShops   QuotaKind = "shops"
	QuotaShelves QuotaKind = "shelves"
	QuotaItems   QuotaKind = "items"
)

// noun is the resource being placed, used in denial messages.
func (k QuotaKind) noun() string {
	switch k {
	case QuotaShops:
		return "shops"
	case QuotaShelves:
		return "shelves per shop"
	case QuotaItems:
		return "items per shelf"
	default:
		return string(k)
	}
}

// QuotaExceeded creates the business rejection returned when a tier cap is reached.
// The message names the numeric cap and the tier's display name.
func QuotaExceeded(op string, kind QuotaKind, limit int, tierLabel string) *Error {
	return &Error{
		Code:    EQUOTA,
		Op:      op,
		Message: fmt.Sprintf("Your %s plan allows at most %d %s. Upgrade your plan to add more.", tierLabel, limit, kind.noun()),
	}
}

// CanPlace decides whether one more resource of the given kind may be added.
//
// It allows iff currentCount < cap, so a cap of 5 admits counts 0..4 and the
// parent ends with at most 5 children. A nil tier is denied: a missing
// catalog entry never means unlimited. Returns nil when allowed.
func CanPlace(op string, tier *SubscriptionTier, currentCount int, kind QuotaKind) error {
	if tier == nil {
		return Conflict(op, "No subscription tier is assigned to this account")
	}
	limit := tier.Cap(kind)
	if currentCount < limit {
		return nil
	}
	return QuotaExceeded(op, kind, limit, tier.Label())
}

// QuotaUsage reports an account's consumption against its tier.
type QuotaUsage struct {
	Tier       SubscriptionTier
	ShopsUsed  int
	ShopsLimit int
	Shops      []ShopUsage
}

// ShopUsage reports one shop's consumption against the per-shop and per-shelf caps.
type ShopUsage struct {
	ShopID       uuid.UUID
	ShelvesUsed  int
	ShelvesLimit int
	FullShelves  int // shelves at or above the per-shelf item cap
}
