package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/events"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
)

const maxShelfNameLength = 120

// ShelfService manages the shelves of a shop.
type ShelfService interface {
	// Create appends a shelf to the shop, subject to the owner's
	// maxShelvesPerShop cap. The shelf is placed at position count+1.
	Create(ctx context.Context, params domain.CreateShelfParams) (*domain.Shelf, error)

	// Get retrieves a shelf by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Shelf, error)

	// List returns the shop's shelves ordered by shelfOrder.
	List(ctx context.Context, shopID uuid.UUID) ([]domain.Shelf, error)

	// Update changes the shelf's name and description.
	Update(ctx context.Context, params domain.UpdateShelfParams) (*domain.Shelf, error)

	// Delete removes an empty shelf. A shelf still holding items is a Conflict.
	Delete(ctx context.Context, id uuid.UUID) error

	// Reorder assigns new positions to some of the shop's shelves.
	Reorder(ctx context.Context, shopID uuid.UUID, positions []domain.ShelfPosition) ([]domain.Shelf, error)
}

type shelfService struct {
	store  store.Store
	quota  QuotaService
	events publisher
	logger *slog.Logger
}

// NewShelfService creates a new ShelfService.
func NewShelfService(st store.Store, quota QuotaService, pub events.Publisher, logger *slog.Logger) ShelfService {
	return &shelfService{
		store:  st,
		quota:  quota,
		events: publisher{events: pub, logger: logger},
		logger: logger,
	}
}

func (s *shelfService) Create(ctx context.Context, params domain.CreateShelfParams) (*domain.Shelf, error) {
	const op = "ShelfService.Create"

	name := strings.TrimSpace(params.Name)
	if err := validateShelfName(op, name); err != nil {
		return nil, err
	}

	shop, err := s.store.GetShop(ctx, params.ShopID)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "shop", params.ShopID.String())
	}

	tier, err := s.quota.TierForAccount(ctx, shop.OwnerID)
	if err != nil {
		return nil, err
	}

	shelf := &domain.Shelf{
		ID:          uuid.New(),
		ShopID:      shop.ID,
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		ProductIDs:  []uuid.UUID{},
		ServiceIDs:  []uuid.UUID{},
	}

	err = runTx(ctx, s.store, s.logger, op, "Failed to create shelf", func(tx store.Store) error {
		if _, err := tx.LockShop(ctx, shop.ID); err != nil {
			if store.IsNotFound(err) {
				return domain.NotFound(op, "shop", shop.ID.String())
			}
			return err
		}
		count, err := tx.CountShelvesByShop(ctx, shop.ID)
		if err != nil {
			return err
		}
		if err := s.quota.Check(op, tier, count, domain.QuotaShelves); err != nil {
			return err
		}
		shelf.ShelfOrder = count + 1
		if err := tx.CreateShelf(ctx, shelf); err != nil {
			return err
		}
		return tx.AppendShopShelf(ctx, shop.ID, shelf.ID)
	})
	if err != nil {
		return nil, err
	}

	metrics.QuotaAllowed(domain.QuotaShelves)
	metrics.ShelvesCreated.Inc()
	s.logger.Info("shelf created",
		"shop_id", shop.ID,
		"shelf_id", shelf.ID,
		"shelf_order", shelf.ShelfOrder,
	)
	s.events.publish(ctx, domain.Event{
		Type:    domain.EventShelfCreated,
		ShopID:  shop.ID,
		OwnerID: shop.OwnerID,
		ShelfID: &shelf.ID,
	})
	return shelf, nil
}

func (s *shelfService) Get(ctx context.Context, id uuid.UUID) (*domain.Shelf, error) {
	const op = "ShelfService.Get"

	shelf, err := s.store.GetShelf(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "shelf", id.String())
	}
	return shelf, nil
}

func (s *shelfService) List(ctx context.Context, shopID uuid.UUID) ([]domain.Shelf, error) {
	const op = "ShelfService.List"

	if _, err := s.store.GetShop(ctx, shopID); err != nil {
		return nil, lookupErr(s.logger, err, op, "shop", shopID.String())
	}
	shelves, err := s.store.ListShelvesByShop(ctx, shopID)
	if err != nil {
		s.logger.Error("failed to list shelves", "error", err, "op", op, "shop_id", shopID)
		return nil, domain.Internal(err, op, "Failed to list shelves")
	}
	return shelves, nil
}

func (s *shelfService) Update(ctx context.Context, params domain.UpdateShelfParams) (*domain.Shelf, error) {
	const op = "ShelfService.Update"

	shelf, err := s.store.GetShelf(ctx, params.ID)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "shelf", params.ID.String())
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if err := validateShelfName(op, name); err != nil {
			return nil, err
		}
		shelf.Name = name
	}
	if params.Description != nil {
		shelf.Description = strings.TrimSpace(*params.Description)
	}

	if err := s.store.UpdateShelfDetails(ctx, shelf.ID, shelf.Name, shelf.Description); err != nil {
		return nil, lookupErr(s.logger, err, op, "shelf", shelf.ID.String())
	}
	return shelf, nil
}

func (s *shelfService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "ShelfService.Delete"

	shelf, err := s.store.GetShelf(ctx, id)
	if err != nil {
		return lookupErr(s.logger, err, op, "shelf", id.String())
	}
	if !shelf.IsEmpty() {
		return domain.Conflict(op, "Shelf still holds items; move or delete them first")
	}

	var ownerID uuid.UUID
	err = runTx(ctx, s.store, s.logger, op, "Failed to delete shelf", func(tx store.Store) error {
		// Re-check under lock: an item may have landed since the read above.
		locked, err := tx.LockShelf(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				return domain.NotFound(op, "shelf", id.String())
			}
			return err
		}
		if !locked.IsEmpty() {
			return domain.Conflict(op, "Shelf still holds items; move or delete them first")
		}
		if shop, err := tx.LockShop(ctx, locked.ShopID); err == nil {
			ownerID = shop.OwnerID
			if shop.HasShelf(id) {
				if err := tx.RemoveShopShelf(ctx, shop.ID, id); err != nil {
					return err
				}
			}
		} else if !store.IsNotFound(err) {
			return err
		}
		return tx.DeleteShelf(ctx, id)
	})
	if err != nil {
		return err
	}

	metrics.ShelvesDeleted.Inc()
	s.logger.Info("shelf deleted", "shop_id", shelf.ShopID, "shelf_id", id)
	s.events.publish(ctx, domain.Event{
		Type:    domain.EventShelfDeleted,
		ShopID:  shelf.ShopID,
		OwnerID: ownerID,
		ShelfID: &id,
	})
	return nil
}

func (s *shelfService) Reorder(ctx context.Context, shopID uuid.UUID, positions []domain.ShelfPosition) ([]domain.Shelf, error) {
	const op = "ShelfService.Reorder"

	if err := validatePositions(op, positions); err != nil {
		return nil, err
	}

	err := runTx(ctx, s.store, s.logger, op, "Failed to reorder shelves", func(tx store.Store) error {
		if _, err := tx.LockShop(ctx, shopID); err != nil {
			if store.IsNotFound(err) {
				return domain.NotFound(op, "shop", shopID.String())
			}
			return err
		}

		// Every pair is checked before the first write.
		for _, p := range positions {
			shelf, err := tx.GetShelf(ctx, p.ShelfID)
			if err != nil {
				if store.IsNotFound(err) {
					return domain.NotFound(op, "shelf", p.ShelfID.String())
				}
				return err
			}
			if shelf.ShopID != shopID {
				return domain.Conflict(op, "Shelf "+p.ShelfID.String()+" does not belong to this shop")
			}
		}

		for _, p := range positions {
			if err := tx.SetShelfOrder(ctx, p.ShelfID, p.NewOrder); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("shelves reordered", "shop_id", shopID, "count", len(positions))
	return s.List(ctx, shopID)
}

func validateShelfName(op, name string) error {
	if name == "" {
		return domain.NewValidationError(op, "name", "Shelf name is required")
	}
	if len(name) > maxShelfNameLength {
		return domain.NewValidationError(op, "name", "Shelf name is too long")
	}
	return nil
}

// validatePositions rejects requests that would collide among the shelves
// they touch. Collisions with shelves outside the request are permitted.
func validatePositions(op string, positions []domain.ShelfPosition) error {
	if len(positions) == 0 {
		return domain.Invalid(op, "At least one shelf position is required")
	}
	seenShelves := make(map[uuid.UUID]bool, len(positions))
	seenOrders := make(map[int]bool, len(positions))
	for _, p := range positions {
		if p.NewOrder < 1 {
			return domain.Invalid(op, "Shelf positions start at 1")
		}
		if seenShelves[p.ShelfID] {
			return domain.Invalid(op, "Shelf "+p.ShelfID.String()+" appears more than once")
		}
		if seenOrders[p.NewOrder] {
			return domain.Invalid(op, "Two shelves cannot be given the same position")
		}
		seenShelves[p.ShelfID] = true
		seenOrders[p.NewOrder] = true
	}
	return nil
}
