// Package store defines the persistence contract of the inventory core and
// its two implementations: Postgres for deployed environments and an
// in-memory store for development and tests.
//
// Every entity is addressed by a stable id. Parent records keep ordered id
// arrays as their only forward edges (Shop.ShelfIDs, Shelf.ProductIDs,
// Shelf.ServiceIDs); a child finds its parent through its own ShopID or
// ShelfID field. Child objects are never embedded in parents.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced record does not exist.
// It aliases sql.ErrNoRows so callers branch on one sentinel for both stores.
var ErrNotFound = sql.ErrNoRows

// IsNotFound reports whether err means a record was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// TierStore reads and edits the subscription catalog.
type TierStore interface {
	GetTier(ctx context.Context, name string) (*domain.SubscriptionTier, error)
	ListTiers(ctx context.Context) ([]domain.SubscriptionTier, error)
	UpsertTier(ctx context.Context, tier domain.SubscriptionTier) error
}

// AccountStore persists accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountBySubject(ctx context.Context, subject string) (*domain.Account, error)
	// LockAccount reads the account and, inside InTx, holds it until commit.
	LockAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	SetAccountTier(ctx context.Context, id uuid.UUID, tierName string) error
}

// ShopStore persists shops and their shelf reference arrays.
type ShopStore interface {
	CreateShop(ctx context.Context, shop *domain.Shop) error
	GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	// LockShop reads the shop and, inside InTx, holds it until commit.
	LockShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	ListShopsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Shop, error)
	CountShopsByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	SetShopStatus(ctx context.Context, id uuid.UUID, status domain.ShopStatus) error
	AppendShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error
	RemoveShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error
	SetShopShelves(ctx context.Context, shopID uuid.UUID, shelfIDs []uuid.UUID) error
}

// ShelfStore persists shelves and their item reference arrays.
type ShelfStore interface {
	CreateShelf(ctx context.Context, shelf *domain.Shelf) error
	GetShelf(ctx context.Context, id uuid.UUID) (*domain.Shelf, error)
	// LockShelf reads the shelf and, inside InTx, holds it until commit.
	LockShelf(ctx context.Context, id uuid.UUID) (*domain.Shelf, error)
	ListShelvesByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Shelf, error)
	CountShelvesByShop(ctx context.Context, shopID uuid.UUID) (int, error)
	UpdateShelfDetails(ctx context.Context, id uuid.UUID, name, description string) error
	SetShelfOrder(ctx context.Context, id uuid.UUID, order int) error
	DeleteShelf(ctx context.Context, id uuid.UUID) error
	AppendShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error
	RemoveShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error
	SetShelfItems(ctx context.Context, shelfID uuid.UUID, productIDs, serviceIDs []uuid.UUID) error
}

// ItemStore persists products and services.
type ItemStore interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	UpdateItemDetails(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItemsByShelf(ctx context.Context, shelfID uuid.UUID) ([]domain.Item, error)
	ListItemsByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error)
	ListUnplacedItems(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error)
}

// Store is the full persistence contract.
//
// Single-record mutations are atomic on their own. InTx runs fn against a
// transactional view: either every write fn performs is applied, or none is.
// Nested InTx calls join the outer transaction.
type Store interface {
	TierStore
	AccountStore
	ShopStore
	ShelfStore
	ItemStore

	InTx(ctx context.Context, fn func(tx Store) error) error
}
