package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ShopStatus is the moderation state of a shop.
type ShopStatus string

const (
	ShopStatusPendingApproval ShopStatus = "pending_approval"
	ShopStatusActive          ShopStatus = "active"
	ShopStatusRejected        ShopStatus = "rejected"
	ShopStatusSuspended       ShopStatus = "suspended"
)

// validShopTransitions lists the moderation moves allowed from each status.
var validShopTransitions = map[ShopStatus][]ShopStatus{
	ShopStatusPendingApproval: {ShopStatusActive, ShopStatusRejected},
	ShopStatusActive:          {ShopStatusSuspended},
	ShopStatusSuspended:       {ShopStatusActive},
}

// Shop is a vendor storefront owned by exactly one account.
// ShelfIDs is ordered by insertion unless explicitly reordered.
type Shop struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Slug        string
	Name        string
	Description string
	Status      ShopStatus
	ShelfIDs    []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransitionTo reports whether moderation may move the shop to target.
func (s *Shop) CanTransitionTo(target ShopStatus) bool {
	for _, allowed := range validShopTransitions[s.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the shop to target or returns an error leaving Status untouched.
func (s *Shop) TransitionTo(target ShopStatus) error {
	if !s.CanTransitionTo(target) {
		return fmt.Errorf("cannot transition shop from %s to %s", s.Status, target)
	}
	s.Status = target
	return nil
}

// HasShelf reports whether the shelf id is referenced by the shop.
func (s *Shop) HasShelf(id uuid.UUID) bool {
	for _, sid := range s.ShelfIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// ModerationAction names an external moderation step.
type ModerationAction string

const (
	ModerationApprove   ModerationAction = "approve"
	ModerationReject    ModerationAction = "reject"
	ModerationSuspend   ModerationAction = "suspend"
	ModerationReinstate ModerationAction = "reinstate"
)

// Target returns the status an action moves a shop to.
func (a ModerationAction) Target() (ShopStatus, bool) {
	switch a {
	case ModerationApprove, ModerationReinstate:
		return ShopStatusActive, true
	case ModerationReject:
		return ShopStatusRejected, true
	case ModerationSuspend:
		return ShopStatusSuspended, true
	default:
		return "", false
	}
}

// CreateShopParams contains parameters for creating a shop.
type CreateShopParams struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}
