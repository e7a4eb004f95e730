package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an inventory change published to downstream collaborators
// such as notification delivery.
type EventType string

const (
	EventShopCreated       EventType = "shop.created"
	EventShopStatusChanged EventType = "shop.status_changed"
	EventShelfCreated      EventType = "shelf.created"
	EventShelfDeleted      EventType = "shelf.deleted"
	EventItemCreated       EventType = "item.created"
	EventItemDeleted       EventType = "item.deleted"
)

// Event is a fire-and-forget notification of a committed mutation.
type Event struct {
	Type       EventType         `json:"type"`
	ShopID     uuid.UUID         `json:"shop_id"`
	OwnerID    uuid.UUID         `json:"owner_id"`
	ShelfID    *uuid.UUID        `json:"shelf_id,omitempty"`
	ItemID     *uuid.UUID        `json:"item_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
