package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type SubscriptionTier struct {
	Name              string
	DisplayName       string
	MaxShops          int32
	MaxShelvesPerShop int32
	MaxItemsPerShelf  int32
	IsActive          bool
	UpdatedAt         time.Time
}

type Account struct {
	ID        uuid.UUID
	Subject   string
	TierName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Shop struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Slug        string
	Name        string
	Description string
	Status      string
	ShelfIds    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Shelf struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	Name        string
	Description string
	ShelfOrder  int32
	ProductIds  []string
	ServiceIds  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Item struct {
	ID          uuid.UUID
	Kind        string
	ShopID      uuid.UUID
	ShelfID     uuid.NullUUID
	ShelfOrder  sql.NullInt32
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	MediaRefs   []string
	Tags        []string
	Attributes  pqtype.NullRawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
