package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a marketplace user as seen by the inventory core.
//
// The subject is the opaque id issued by the external identity provider.
// Exactly one tier is referenced at a time; owned shops are found through
// Shop.OwnerID rather than a stored array.
type Account struct {
	ID        uuid.UUID
	Subject   string
	TierName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the caller of a mutating operation.
type Actor struct {
	Account *Account
	IsAdmin bool
}

// CanManage reports whether the actor may mutate resources owned by ownerID.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	if a.IsAdmin {
		return true
	}
	return a.Account != nil && a.Account.ID == ownerID
}
