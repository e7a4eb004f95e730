package handler

import (
	"encoding/json"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/google/uuid"
)

// =============================================================================
// Response Types
// =============================================================================

type tierResponse struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	MaxShops          int    `json:"max_shops"`
	MaxShelvesPerShop int    `json:"max_shelves_per_shop"`
	MaxItemsPerShelf  int    `json:"max_items_per_shelf"`
	IsActive          bool   `json:"is_active"`
}

func toTierResponse(t domain.SubscriptionTier) tierResponse {
	return tierResponse{
		Name:              t.Name,
		DisplayName:       t.Label(),
		MaxShops:          t.MaxShops,
		MaxShelvesPerShop: t.MaxShelvesPerShop,
		MaxItemsPerShelf:  t.MaxItemsPerShelf,
		IsActive:          t.IsActive,
	}
}

type accountResponse struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{ID: a.ID, Subject: a.Subject, Tier: a.TierName, CreatedAt: a.CreatedAt}
}

type shopUsageResponse struct {
	ShopID       uuid.UUID `json:"shop_id"`
	ShelvesUsed  int       `json:"shelves_used"`
	ShelvesLimit int       `json:"shelves_limit"`
	FullShelves  int       `json:"full_shelves"`
}

type usageResponse struct {
	Tier       tierResponse        `json:"tier"`
	ShopsUsed  int                 `json:"shops_used"`
	ShopsLimit int                 `json:"shops_limit"`
	Shops      []shopUsageResponse `json:"shops"`
}

type meResponse struct {
	Account accountResponse `json:"account"`
	IsAdmin bool            `json:"is_admin"`
	Usage   usageResponse   `json:"usage"`
}

func toUsageResponse(u *domain.QuotaUsage) usageResponse {
	resp := usageResponse{
		Tier:       toTierResponse(u.Tier),
		ShopsUsed:  u.ShopsUsed,
		ShopsLimit: u.ShopsLimit,
		Shops:      make([]shopUsageResponse, len(u.Shops)),
	}
	for i, s := range u.Shops {
		resp.Shops[i] = shopUsageResponse(s)
	}
	return resp
}

type shopResponse struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	ShelfIDs    []uuid.UUID `json:"shelf_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toShopResponse(s *domain.Shop) shopResponse {
	return shopResponse{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Slug:        s.Slug,
		Name:        s.Name,
		Description: s.Description,
		Status:      string(s.Status),
		ShelfIDs:    nonNilIDs(s.ShelfIDs),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type shelfResponse struct {
	ID          uuid.UUID   `json:"id"`
	ShopID      uuid.UUID   `json:"shop_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ShelfOrder  int         `json:"shelf_order"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	ServiceIDs  []uuid.UUID `json:"service_ids"`
	ItemCount   int         `json:"item_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toShelfResponse(s *domain.Shelf) shelfResponse {
	return shelfResponse{
		ID:          s.ID,
		ShopID:      s.ShopID,
		Name:        s.Name,
		Description: s.Description,
		ShelfOrder:  s.ShelfOrder,
		ProductIDs:  nonNilIDs(s.ProductIDs),
		ServiceIDs:  nonNilIDs(s.ServiceIDs),
		ItemCount:   s.ItemCount(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toShelvesResponse(shelves []domain.Shelf) []shelfResponse {
	out := make([]shelfResponse, len(shelves))
	for i := range shelves {
		out[i] = toShelfResponse(&shelves[i])
	}
	return out
}

type itemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	ShopID      uuid.UUID       `json:"shop_id"`
	ShelfID     *uuid.UUID      `json:"shelf_id"`
	ShelfOrder  *int            `json:"shelf_order"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents"`
	Currency    string          `json:"currency"`
	MediaRefs   []string        `json:"media_refs"`
	Tags        []string        `json:"tags"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toItemResponse(i *domain.Item) itemResponse {
	return itemResponse{
		ID:          i.ID,
		Kind:        string(i.Kind),
		ShopID:      i.ShopID,
		ShelfID:     i.ShelfID,
		ShelfOrder:  i.ShelfOrder,
		Name:        i.Name,
		Description: i.Description,
		PriceCents:  i.PriceCents,
		Currency:    i.Currency,
		MediaRefs:   nonNilStrings(i.MediaRefs),
		Tags:        nonNilStrings(i.Tags),
		Attributes:  i.Attributes,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toItemsResponse(items []domain.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i := range items {
		out[i] = toItemResponse(&items[i])
	}
	return out
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// =============================================================================
// Request Types
// =============================================================================

type tierRequest struct {
	DisplayName       string `json:"display_name"`
	MaxShops          int    `json:"max_shops"`
	MaxShelvesPerShop int    `json:"max_shelves_per_shop"`
	MaxItemsPerShelf  int    `json:"max_items_per_shelf"`
	IsActive          bool   `json:"is_active"`
}

type changeTierRequest struct {
	Tier string `json:"tier"`
}

type createShopRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createShelfRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateShelfRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type shelfPositionRequest struct {
	ShelfID  uuid.UUID `json:"shelf_id"`
	NewOrder int       `json:"new_order"`
}

type reorderShelvesRequest struct {
	Positions []shelfPositionRequest `json:"positions"`
}

type createItemRequest struct {
	Kind        string          `json:"kind"`
	ShelfID     *uuid.UUID      `json:"shelf_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PriceCents  int64           `json:"price_cents"`
	Currency    string          `json:"currency"`
	MediaRefs   []string        `json:"media_refs"`
	Tags        []string        `json:"tags"`
	Attributes  json.RawMessage `json:"attributes"`
}

type updateItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	PriceCents  *int64           `json:"price_cents"`
	Currency    *string          `json:"currency"`
	MediaRefs   *[]string        `json:"media_refs"`
	Tags        *[]string        `json:"tags"`
	Attributes  *json.RawMessage `json:"attributes"`
}

type moveItemRequest struct {
	ShelfID *uuid.UUID `json:"shelf_id"`
}
