package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/events"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
)

const (
	maxItemNameLength = 200
	defaultCurrency   = "USD"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ItemService manages products and services and their shelf placement.
type ItemService interface {
	// Create adds a product or service to a shop. With a ShelfID the item is
	// placed at the end of that shelf, subject to maxItemsPerShelf; without
	// one it is created unplaced and no cap applies.
	Create(ctx context.Context, params domain.CreateItemParams) (*domain.Item, error)

	// Get retrieves an item by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// Update changes descriptive fields only.
	Update(ctx context.Context, params domain.UpdateItemParams) (*domain.Item, error)

	// Delete unlinks the item from its shelf and removes it.
	Delete(ctx context.Context, id uuid.UUID) error

	// Move re-creates the item on another shelf of the same shop, or unplaced
	// when shelfID is nil. The moved item gets a new ID.
	Move(ctx context.Context, id uuid.UUID, shelfID *uuid.UUID) (*domain.Item, error)

	// ListByShelf returns the shelf's items ordered by shelfOrder.
	ListByShelf(ctx context.Context, shelfID uuid.UUID) ([]domain.Item, error)

	// ListUnplaced returns the shop's items that sit on no shelf.
	ListUnplaced(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error)
}

// =============================================================================
// Implementation
// =============================================================================

type itemService struct {
	store  store.Store
	quota  QuotaService
	events publisher
	logger *slog.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(st store.Store, quota QuotaService, pub events.Publisher, logger *slog.Logger) ItemService {
	return &itemService{
		store:  st,
		quota:  quota,
		events: publisher{events: pub, logger: logger},
		logger: logger,
	}
}

// placement is a destination shelf resolved before the transaction starts.
type placement struct {
	shelfID uuid.UUID
	tier    *domain.SubscriptionTier
}

func (s *itemService) Create(ctx context.Context, params domain.CreateItemParams) (*domain.Item, error) {
	const op = "ItemService.Create"

	if _, err := domain.ParseItemKind(string(params.Kind)); err != nil {
		return nil, domain.NewValidationError(op, "kind", "Kind must be product or service")
	}
	details, err := normalizeDetails(op, params.ItemDetails)
	if err != nil {
		return nil, err
	}

	shop, dest, err := s.resolvePlacement(ctx, op, params.ShopID, params.ShelfID)
	if err != nil {
		return nil, err
	}

	item := &domain.Item{
		ID:          uuid.New(),
		Kind:        params.Kind,
		ShopID:      shop.ID,
		Name:        details.Name,
		Description: details.Description,
		PriceCents:  details.PriceCents,
		Currency:    details.Currency,
		MediaRefs:   details.MediaRefs,
		Tags:        details.Tags,
		Attributes:  details.Attributes,
	}

	err = runTx(ctx, s.store, s.logger, op, "Failed to create item", func(tx store.Store) error {
		return s.place(ctx, tx, op, item, dest)
	})
	if err != nil {
		return nil, err
	}

	s.created(ctx, shop, item)
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	const op = "ItemService.Get"

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "item", id.String())
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, params domain.UpdateItemParams) (*domain.Item, error) {
	const op = "ItemService.Update"

	item, err := s.store.GetItem(ctx, params.ID)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "item", params.ID.String())
	}

	params.Apply(item)
	details, err := normalizeDetails(op, domain.ItemDetails{
		Name:        item.Name,
		Description: item.Description,
		PriceCents:  item.PriceCents,
		Currency:    item.Currency,
		MediaRefs:   item.MediaRefs,
		Tags:        item.Tags,
		Attributes:  item.Attributes,
	})
	if err != nil {
		return nil, err
	}
	item.Name = details.Name
	item.Description = details.Description
	item.Currency = details.Currency
	item.MediaRefs = details.MediaRefs
	item.Tags = details.Tags

	if err := s.store.UpdateItemDetails(ctx, item); err != nil {
		return nil, lookupErr(s.logger, err, op, "item", item.ID.String())
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "ItemService.Delete"

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return lookupErr(s.logger, err, op, "item", id.String())
	}

	err = runTx(ctx, s.store, s.logger, op, "Failed to delete item", func(tx store.Store) error {
		return unplace(ctx, tx, item)
	})
	if err != nil {
		return err
	}

	s.deleted(ctx, item)
	return nil
}

func (s *itemService) Move(ctx context.Context, id uuid.UUID, shelfID *uuid.UUID) (*domain.Item, error) {
	const op = "ItemService.Move"

	old, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "item", id.String())
	}

	shop, dest, err := s.resolvePlacement(ctx, op, old.ShopID, shelfID)
	if err != nil {
		return nil, err
	}

	moved := *old
	moved.ID = uuid.New()
	moved.ShelfID = nil
	moved.ShelfOrder = nil

	err = runTx(ctx, s.store, s.logger, op, "Failed to move item", func(tx store.Store) error {
		if err := unplace(ctx, tx, old); err != nil {
			return err
		}
		return s.place(ctx, tx, op, &moved, dest)
	})
	if err != nil {
		return nil, err
	}

	s.deleted(ctx, old)
	s.created(ctx, shop, &moved)
	return &moved, nil
}

func (s *itemService) ListByShelf(ctx context.Context, shelfID uuid.UUID) ([]domain.Item, error) {
	const op = "ItemService.ListByShelf"

	if _, err := s.store.GetShelf(ctx, shelfID); err != nil {
		return nil, lookupErr(s.logger, err, op, "shelf", shelfID.String())
	}
	items, err := s.store.ListItemsByShelf(ctx, shelfID)
	if err != nil {
		s.logger.Error("failed to list shelf items", "error", err, "op", op, "shelf_id", shelfID)
		return nil, domain.Internal(err, op, "Failed to list items")
	}
	return items, nil
}

func (s *itemService) ListUnplaced(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error) {
	const op = "ItemService.ListUnplaced"

	if _, err := s.store.GetShop(ctx, shopID); err != nil {
		return nil, lookupErr(s.logger, err, op, "shop", shopID.String())
	}
	items, err := s.store.ListUnplacedItems(ctx, shopID)
	if err != nil {
		s.logger.Error("failed to list unplaced items", "error", err, "op", op, "shop_id", shopID)
		return nil, domain.Internal(err, op, "Failed to list items")
	}
	return items, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// resolvePlacement loads the shop and, when a shelf is requested, checks that
// it lives in the same shop and resolves the owner's tier. All of it happens
// before any write.
func (s *itemService) resolvePlacement(ctx context.Context, op string, shopID uuid.UUID, shelfID *uuid.UUID) (*domain.Shop, *placement, error) {
	if shelfID == nil {
		shop, err := s.store.GetShop(ctx, shopID)
		if err != nil {
			return nil, nil, lookupErr(s.logger, err, op, "shop", shopID.String())
		}
		return shop, nil, nil
	}

	shelf, err := s.store.GetShelf(ctx, *shelfID)
	if err != nil {
		return nil, nil, lookupErr(s.logger, err, op, "shelf", shelfID.String())
	}
	shop, err := s.store.GetShop(ctx, shopID)
	if err != nil {
		return nil, nil, lookupErr(s.logger, err, op, "shop", shopID.String())
	}
	if shelf.ShopID != shop.ID {
		return nil, nil, domain.Conflict(op, "Shelf belongs to a different shop")
	}

	tier, err := s.quota.TierForAccount(ctx, shop.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return shop, &placement{shelfID: shelf.ID, tier: tier}, nil
}

// place inserts the item and, when dest is set, links it to the end of the
// destination shelf after the capacity check.
func (s *itemService) place(ctx context.Context, tx store.Store, op string, item *domain.Item, dest *placement) error {
	if dest == nil {
		return tx.CreateItem(ctx, item)
	}

	shelf, err := tx.LockShelf(ctx, dest.shelfID)
	if err != nil {
		if store.IsNotFound(err) {
			return domain.NotFound(op, "shelf", dest.shelfID.String())
		}
		return err
	}
	count := shelf.ItemCount()
	if err := s.quota.Check(op, dest.tier, count, domain.QuotaItems); err != nil {
		return err
	}

	order := count + 1
	item.ShelfID = &shelf.ID
	item.ShelfOrder = &order
	if err := tx.CreateItem(ctx, item); err != nil {
		return err
	}
	return tx.AppendShelfItem(ctx, shelf.ID, item.Kind, item.ID)
}

// unplace removes the item's id from its shelf, if any, then deletes it.
// A shelf that no longer exists is ignored.
func unplace(ctx context.Context, tx store.Store, item *domain.Item) error {
	if item.IsPlaced() {
		err := tx.RemoveShelfItem(ctx, *item.ShelfID, item.Kind, item.ID)
		if err != nil && !store.IsNotFound(err) {
			return err
		}
	}
	return tx.DeleteItem(ctx, item.ID)
}

func (s *itemService) created(ctx context.Context, shop *domain.Shop, item *domain.Item) {
	if item.IsPlaced() {
		metrics.QuotaAllowed(domain.QuotaItems)
	}
	metrics.ItemCreated(item.Kind, item.IsPlaced())
	s.logger.Info("item created",
		"shop_id", item.ShopID,
		"item_id", item.ID,
		"kind", item.Kind,
		"shelf_id", item.ShelfID,
	)
	s.events.publish(ctx, domain.Event{
		Type:       domain.EventItemCreated,
		ShopID:     shop.ID,
		OwnerID:    shop.OwnerID,
		ShelfID:    item.ShelfID,
		ItemID:     &item.ID,
		Attributes: map[string]string{"kind": string(item.Kind)},
	})
}

func (s *itemService) deleted(ctx context.Context, item *domain.Item) {
	metrics.ItemDeleted(item.Kind)
	s.logger.Info("item deleted", "shop_id", item.ShopID, "item_id", item.ID, "kind", item.Kind)
	s.events.publish(ctx, domain.Event{
		Type:       domain.EventItemDeleted,
		ShopID:     item.ShopID,
		ShelfID:    item.ShelfID,
		ItemID:     &item.ID,
		Attributes: map[string]string{"kind": string(item.Kind)},
	})
}

// normalizeDetails trims and validates descriptive fields.
func normalizeDetails(op string, d domain.ItemDetails) (domain.ItemDetails, error) {
	var verr error
	fail := func(field, message string) {
		verr = domain.AddFieldError(verr, op, field, message)
	}

	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))

	if d.Name == "" {
		fail("name", "Name is required")
	} else if len(d.Name) > maxItemNameLength {
		fail("name", "Name is too long")
	}
	if d.PriceCents < 0 {
		fail("price_cents", "Price cannot be negative")
	}
	if d.Currency == "" {
		d.Currency = defaultCurrency
	} else if len(d.Currency) != 3 {
		fail("currency", "Currency must be a 3-letter code")
	}
	if len(d.Attributes) > 0 && !json.Valid(d.Attributes) {
		fail("attributes", "Attributes must be valid JSON")
	}

	d.MediaRefs = compactStrings(d.MediaRefs)
	d.Tags = compactStrings(d.Tags)

	return d, verr
}

// compactStrings trims entries and drops blanks and duplicates, keeping order.
func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
