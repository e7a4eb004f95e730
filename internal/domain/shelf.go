package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shelf is an ordered grouping of items within one shop.
//
// ShelfOrder is 1-based and assigned as count+1 at creation. Products and
// services share one position sequence and one capacity budget.
type Shelf struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	Name        string
	Description string
	ShelfOrder  int
	ProductIDs  []uuid.UUID
	ServiceIDs  []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemCount is the combined counter of products and services on the shelf.
func (s *Shelf) ItemCount() int {
	return len(s.ProductIDs) + len(s.ServiceIDs)
}

// IsEmpty reports whether the shelf holds no items of either kind.
func (s *Shelf) IsEmpty() bool {
	return s.ItemCount() == 0
}

// Holds reports whether the item id is referenced from the array for its kind.
func (s *Shelf) Holds(kind ItemKind, id uuid.UUID) bool {
	ids := s.ProductIDs
	if kind == ItemKindService {
		ids = s.ServiceIDs
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CreateShelfParams contains parameters for creating a shelf.
type CreateShelfParams struct {
	ShopID      uuid.UUID
	Name        string
	Description string
}

// UpdateShelfParams is a partial update; nil fields are left unchanged.
type UpdateShelfParams struct {
	ID          uuid.UUID
	Name        *string
	Description *string
}

// ShelfPosition assigns a new shelfOrder to one shelf.
type ShelfPosition struct {
	ShelfID  uuid.UUID
	NewOrder int
}
