package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemKind distinguishes products from services. Both kinds are placed on
// shelves the same way.
type ItemKind string

const (
	ItemKindProduct ItemKind = "product"
	ItemKindService ItemKind = "service"
)

// ParseItemKind validates a kind received from a caller.
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(s) {
	case ItemKindProduct, ItemKindService:
		return ItemKind(s), nil
	default:
		return "", fmt.Errorf("unknown item kind %q", s)
	}
}

// Item is a product or service belonging to one shop and optionally placed
// on one of that shop's shelves.
type Item struct {
	ID          uuid.UUID
	Kind        ItemKind
	ShopID      uuid.UUID
	ShelfID     *uuid.UUID
	ShelfOrder  *int
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	MediaRefs   []string
	Tags        []string
	Attributes  json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPlaced reports whether the item sits on a shelf.
func (i *Item) IsPlaced() bool {
	return i.ShelfID != nil
}

// ItemDetails holds the descriptive fields of an item.
type ItemDetails struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	MediaRefs   []string
	Tags        []string
	Attributes  json.RawMessage
}

// CreateItemParams contains parameters for creating an item.
// A nil ShelfID creates the item unplaced.
type CreateItemParams struct {
	Kind    ItemKind
	ShopID  uuid.UUID
	ShelfID *uuid.UUID
	ItemDetails
}

// UpdateItemParams is a partial update of descriptive fields; nil fields are left unchanged.
type UpdateItemParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	PriceCents  *int64
	Currency    *string
	MediaRefs   *[]string
	Tags        *[]string
	Attributes  *json.RawMessage
}

// Apply copies the non-nil fields of p onto item.
func (p UpdateItemParams) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.PriceCents != nil {
		item.PriceCents = *p.PriceCents
	}
	if p.Currency != nil {
		item.Currency = *p.Currency
	}
	if p.MediaRefs != nil {
		item.MediaRefs = append([]string(nil), (*p.MediaRefs)...)
	}
	if p.Tags != nil {
		item.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Attributes != nil {
		item.Attributes = append(json.RawMessage(nil), (*p.Attributes)...)
	}
}
