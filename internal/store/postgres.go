package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sqlc-dev/pqtype"
)

const uniqueViolation = "23505"

// uniqueConflict turns a unique constraint violation into a Conflict so both
// stores report duplicate subjects and slugs the same way.
func uniqueConflict(err error, op, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.Conflict(op, message)
	}
	return err
}

// Postgres is the Store backed by the repository queries.
//
// Inside InTx the Lock* methods take row locks (SELECT ... FOR UPDATE), so
// concurrent placements on the same parent serialize their count-then-write.
type Postgres struct {
	db      *sql.DB
	queries *repository.Queries
	inTx    bool
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, queries: repository.New(db)}
}

// InTx implements Store.
func (p *Postgres) InTx(ctx context.Context, fn func(tx Store) error) error {
	if p.inTx {
		return fn(p)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Postgres{db: p.db, queries: p.queries.WithTx(tx), inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// Tiers
// =============================================================================

func (p *Postgres) GetTier(ctx context.Context, name string) (*domain.SubscriptionTier, error) {
	row, err := p.queries.GetSubscriptionTier(ctx, name)
	if err != nil {
		return nil, err
	}
	t := tierToDomain(row)
	return &t, nil
}

func (p *Postgres) ListTiers(ctx context.Context) ([]domain.SubscriptionTier, error) {
	rows, err := p.queries.ListSubscriptionTiers(ctx)
	if err != nil {
		return nil, err
	}
	tiers := make([]domain.SubscriptionTier, len(rows))
	for i, r := range rows {
		tiers[i] = tierToDomain(r)
	}
	return tiers, nil
}

func (p *Postgres) UpsertTier(ctx context.Context, tier domain.SubscriptionTier) error {
	return p.queries.UpsertSubscriptionTier(ctx, repository.UpsertSubscriptionTierParams{
		Name:              tier.Name,
		DisplayName:       tier.DisplayName,
		MaxShops:          int32(tier.MaxShops),
		MaxShelvesPerShop: int32(tier.MaxShelvesPerShop),
		MaxItemsPerShelf:  int32(tier.MaxItemsPerShelf),
		IsActive:          tier.IsActive,
	})
}

// =============================================================================
// Accounts
// =============================================================================

func (p *Postgres) CreateAccount(ctx context.Context, account *domain.Account) error {
	row, err := p.queries.CreateAccount(ctx, repository.CreateAccountParams{
		ID:       account.ID,
		Subject:  account.Subject,
		TierName: account.TierName,
	})
	if err != nil {
		return uniqueConflict(err, "store.CreateAccount", "account subject already registered")
	}
	*account = accountToDomain(row)
	return nil
}

func (p *Postgres) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row, err := p.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a := accountToDomain(row)
	return &a, nil
}

func (p *Postgres) GetAccountBySubject(ctx context.Context, subject string) (*domain.Account, error) {
	row, err := p.queries.GetAccountBySubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	a := accountToDomain(row)
	return &a, nil
}

func (p *Postgres) LockAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if !p.inTx {
		return p.GetAccount(ctx, id)
	}
	row, err := p.queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	a := accountToDomain(row)
	return &a, nil
}

func (p *Postgres) SetAccountTier(ctx context.Context, id uuid.UUID, tierName string) error {
	n, err := p.queries.UpdateAccountTier(ctx, repository.UpdateAccountTierParams{ID: id, TierName: tierName})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Shops
// =============================================================================

func (p *Postgres) CreateShop(ctx context.Context, shop *domain.Shop) error {
	row, err := p.queries.CreateShop(ctx, repository.CreateShopParams{
		ID:          shop.ID,
		OwnerID:     shop.OwnerID,
		Slug:        shop.Slug,
		Name:        shop.Name,
		Description: shop.Description,
		Status:      string(shop.Status),
	})
	if err != nil {
		return uniqueConflict(err, "store.CreateShop", "shop slug already taken")
	}
	s, err := shopToDomain(row)
	if err != nil {
		return err
	}
	*shop = s
	return nil
}

func (p *Postgres) GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	row, err := p.queries.GetShopByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := shopToDomain(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) LockShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	if !p.inTx {
		return p.GetShop(ctx, id)
	}
	row, err := p.queries.GetShopByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := shopToDomain(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) ListShopsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Shop, error) {
	rows, err := p.queries.ListShopsByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	shops := make([]domain.Shop, 0, len(rows))
	for _, r := range rows {
		s, err := shopToDomain(r)
		if err != nil {
			return nil, err
		}
		shops = append(shops, s)
	}
	return shops, nil
}

func (p *Postgres) CountShopsByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	n, err := p.queries.CountShopsByOwnerID(ctx, ownerID)
	return int(n), err
}

func (p *Postgres) SetShopStatus(ctx context.Context, id uuid.UUID, status domain.ShopStatus) error {
	return p.queries.UpdateShopStatus(ctx, repository.UpdateShopStatusParams{ID: id, Status: string(status)})
}

func (p *Postgres) AppendShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error {
	n, err := p.queries.AppendShopShelfID(ctx, repository.AppendShopShelfIDParams{ID: shopID, ShelfID: shelfID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error {
	return p.queries.RemoveShopShelfID(ctx, repository.RemoveShopShelfIDParams{ID: shopID, ShelfID: shelfID})
}

func (p *Postgres) SetShopShelves(ctx context.Context, shopID uuid.UUID, shelfIDs []uuid.UUID) error {
	return p.queries.SetShopShelfIDs(ctx, repository.SetShopShelfIDsParams{ID: shopID, ShelfIds: uuidStrings(shelfIDs)})
}

// =============================================================================
// Shelves
// =============================================================================

func (p *Postgres) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	row, err := p.queries.CreateShelf(ctx, repository.CreateShelfParams{
		ID:          shelf.ID,
		ShopID:      shelf.ShopID,
		Name:        shelf.Name,
		Description: shelf.Description,
		ShelfOrder:  int32(shelf.ShelfOrder),
	})
	if err != nil {
		return err
	}
	s, err := shelfToDomain(row)
	if err != nil {
		return err
	}
	*shelf = s
	return nil
}

func (p *Postgres) GetShelf(ctx context.Context, id uuid.UUID) (*domain.Shelf, error) {
	row, err := p.queries.GetShelfByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := shelfToDomain(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) LockShelf(ctx context.Context, id uuid.UUID) (*domain.Shelf, error) {
	if !p.inTx {
		return p.GetShelf(ctx, id)
	}
	row, err := p.queries.GetShelfByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err := shelfToDomain(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) ListShelvesByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Shelf, error) {
	rows, err := p.queries.ListShelvesByShopID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	shelves := make([]domain.Shelf, 0, len(rows))
	for _, r := range rows {
		s, err := shelfToDomain(r)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, s)
	}
	return shelves, nil
}

func (p *Postgres) CountShelvesByShop(ctx context.Context, shopID uuid.UUID) (int, error) {
	n, err := p.queries.CountShelvesByShopID(ctx, shopID)
	return int(n), err
}

func (p *Postgres) UpdateShelfDetails(ctx context.Context, id uuid.UUID, name, description string) error {
	return p.queries.UpdateShelfDetails(ctx, repository.UpdateShelfDetailsParams{ID: id, Name: name, Description: description})
}

func (p *Postgres) SetShelfOrder(ctx context.Context, id uuid.UUID, order int) error {
	return p.queries.UpdateShelfOrder(ctx, repository.UpdateShelfOrderParams{ID: id, ShelfOrder: int32(order)})
}

func (p *Postgres) DeleteShelf(ctx context.Context, id uuid.UUID) error {
	return p.queries.DeleteShelf(ctx, id)
}

func (p *Postgres) AppendShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error {
	arg := repository.ShelfItemParams{ID: shelfID, ItemID: itemID}
	var (
		n   int64
		err error
	)
	if kind == domain.ItemKindService {
		n, err = p.queries.AppendShelfServiceID(ctx, arg)
	} else {
		n, err = p.queries.AppendShelfProductID(ctx, arg)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error {
	arg := repository.ShelfItemParams{ID: shelfID, ItemID: itemID}
	if kind == domain.ItemKindService {
		return p.queries.RemoveShelfServiceID(ctx, arg)
	}
	return p.queries.RemoveShelfProductID(ctx, arg)
}

func (p *Postgres) SetShelfItems(ctx context.Context, shelfID uuid.UUID, productIDs, serviceIDs []uuid.UUID) error {
	return p.queries.SetShelfItemIDs(ctx, repository.SetShelfItemIDsParams{
		ID:         shelfID,
		ProductIds: uuidStrings(productIDs),
		ServiceIds: uuidStrings(serviceIDs),
	})
}

// =============================================================================
// Items
// =============================================================================

func (p *Postgres) CreateItem(ctx context.Context, item *domain.Item) error {
	arg := repository.CreateItemParams{
		ID:          item.ID,
		Kind:        string(item.Kind),
		ShopID:      item.ShopID,
		Name:        item.Name,
		Description: item.Description,
		PriceCents:  item.PriceCents,
		Currency:    item.Currency,
		MediaRefs:   nonNilStrings(item.MediaRefs),
		Tags:        nonNilStrings(item.Tags),
		Attributes:  toNullRawMessage(item.Attributes),
	}
	if item.ShelfID != nil {
		arg.ShelfID = uuid.NullUUID{UUID: *item.ShelfID, Valid: true}
	}
	if item.ShelfOrder != nil {
		arg.ShelfOrder = sql.NullInt32{Int32: int32(*item.ShelfOrder), Valid: true}
	}

	row, err := p.queries.CreateItem(ctx, arg)
	if err != nil {
		return err
	}
	*item = itemToDomain(row)
	return nil
}

func (p *Postgres) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	row, err := p.queries.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	i := itemToDomain(row)
	return &i, nil
}

func (p *Postgres) UpdateItemDetails(ctx context.Context, item *domain.Item) error {
	return p.queries.UpdateItemDetails(ctx, repository.UpdateItemDetailsParams{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		PriceCents:  item.PriceCents,
		Currency:    item.Currency,
		MediaRefs:   nonNilStrings(item.MediaRefs),
		Tags:        nonNilStrings(item.Tags),
		Attributes:  toNullRawMessage(item.Attributes),
	})
}

func (p *Postgres) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return p.queries.DeleteItem(ctx, id)
}

func (p *Postgres) ListItemsByShelf(ctx context.Context, shelfID uuid.UUID) ([]domain.Item, error) {
	return itemsToDomain(p.queries.ListItemsByShelfID(ctx, shelfID))
}

func (p *Postgres) ListItemsByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error) {
	return itemsToDomain(p.queries.ListItemsByShopID(ctx, shopID))
}

func (p *Postgres) ListUnplacedItems(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error) {
	return itemsToDomain(p.queries.ListUnplacedItemsByShopID(ctx, shopID))
}

// =============================================================================
// Conversion helpers
// =============================================================================

func tierToDomain(r repository.SubscriptionTier) domain.SubscriptionTier {
	return domain.SubscriptionTier{
		Name:              r.Name,
		DisplayName:       r.DisplayName,
		MaxShops:          int(r.MaxShops),
		MaxShelvesPerShop: int(r.MaxShelvesPerShop),
		MaxItemsPerShelf:  int(r.MaxItemsPerShelf),
		IsActive:          r.IsActive,
	}
}

func accountToDomain(r repository.Account) domain.Account {
	return domain.Account{
		ID:        r.ID,
		Subject:   r.Subject,
		TierName:  r.TierName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func shopToDomain(r repository.Shop) (domain.Shop, error) {
	ids, err := parseUUIDs(r.ShelfIds)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("shop %s shelf_ids: %w", r.ID, err)
	}
	return domain.Shop{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.ShopStatus(r.Status),
		ShelfIDs:    ids,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func shelfToDomain(r repository.Shelf) (domain.Shelf, error) {
	products, err := parseUUIDs(r.ProductIds)
	if err != nil {
		return domain.Shelf{}, fmt.Errorf("shelf %s product_ids: %w", r.ID, err)
	}
	services, err := parseUUIDs(r.ServiceIds)
	if err != nil {
		return domain.Shelf{}, fmt.Errorf("shelf %s service_ids: %w", r.ID, err)
	}
	return domain.Shelf{
		ID:          r.ID,
		ShopID:      r.ShopID,
		Name:        r.Name,
		Description: r.Description,
		ShelfOrder:  int(r.ShelfOrder),
		ProductIDs:  products,
		ServiceIDs:  services,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func itemToDomain(r repository.Item) domain.Item {
	item := domain.Item{
		ID:          r.ID,
		Kind:        domain.ItemKind(r.Kind),
		ShopID:      r.ShopID,
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Currency:    r.Currency,
		MediaRefs:   r.MediaRefs,
		Tags:        r.Tags,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ShelfID.Valid {
		id := r.ShelfID.UUID
		item.ShelfID = &id
	}
	if r.ShelfOrder.Valid {
		o := int(r.ShelfOrder.Int32)
		item.ShelfOrder = &o
	}
	if r.Attributes.Valid {
		item.Attributes = json.RawMessage(r.Attributes.RawMessage)
	}
	return item
}

func itemsToDomain(rows []repository.Item, err error) ([]domain.Item, error) {
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, len(rows))
	for i, r := range rows {
		items[i] = itemToDomain(r)
	}
	return items, nil
}

func parseUUIDs(ss []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	ss := make([]string, len(ids))
	for i, id := range ids {
		ss[i] = id.String()
	}
	return ss
}

func nonNilStrings(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func toNullRawMessage(raw json.RawMessage) pqtype.NullRawMessage {
	if len(raw) == 0 {
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}
