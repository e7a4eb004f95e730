package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/google/uuid"
)

type memRecord[T any] struct {
	value T
	seq   uint64
}

type memData struct {
	tiers    map[string]domain.SubscriptionTier
	accounts map[uuid.UUID]memRecord[domain.Account]
	subjects map[string]uuid.UUID
	shops    map[uuid.UUID]memRecord[domain.Shop]
	slugs    map[string]uuid.UUID
	shelves  map[uuid.UUID]memRecord[domain.Shelf]
	items    map[uuid.UUID]memRecord[domain.Item]
	seq      uint64
}

func newMemData() *memData {
	return &memData{
		tiers:    make(map[string]domain.SubscriptionTier),
		accounts: make(map[uuid.UUID]memRecord[domain.Account]),
		subjects: make(map[string]uuid.UUID),
		shops:    make(map[uuid.UUID]memRecord[domain.Shop]),
		slugs:    make(map[string]uuid.UUID),
		shelves:  make(map[uuid.UUID]memRecord[domain.Shelf]),
		items:    make(map[uuid.UUID]memRecord[domain.Item]),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.tiers {
		c.tiers[k] = v
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.subjects {
		c.subjects[k] = v
	}
	for k, v := range d.shops {
		v.value = cloneShop(v.value)
		c.shops[k] = v
	}
	for k, v := range d.slugs {
		c.slugs[k] = v
	}
	for k, v := range d.shelves {
		v.value = cloneShelf(v.value)
		c.shelves[k] = v
	}
	for k, v := range d.items {
		v.value = cloneItem(v.value)
		c.items[k] = v
	}
	c.seq = d.seq
	return c
}

func (d *memData) next() uint64 {
	d.seq++
	return d.seq
}

// Memory is an in-process Store. All access is serialized by one mutex and
// InTx holds that mutex for the whole transaction, restoring a snapshot when
// fn fails.
type Memory struct {
	mu   *sync.Mutex
	data **memData
	inTx bool
}

// NewMemory returns an empty in-memory store seeded with the given tiers.
func NewMemory(tiers ...domain.SubscriptionTier) *Memory {
	d := newMemData()
	for _, t := range tiers {
		d.tiers[t.Name] = t
	}
	return &Memory{mu: &sync.Mutex{}, data: &d}
}

// DefaultTiers mirrors the catalog seeded by the initial migration.
func DefaultTiers() []domain.SubscriptionTier {
	return []domain.SubscriptionTier{
		{Name: domain.TierFree, DisplayName: "Free", MaxShops: 1, MaxShelvesPerShop: 3, MaxItemsPerShelf: 3, IsActive: true},
		{Name: domain.TierPro, DisplayName: "Pro", MaxShops: 3, MaxShelvesPerShop: 20, MaxItemsPerShelf: 50, IsActive: true},
		{Name: domain.TierUnlimited, DisplayName: "Unlimited", MaxShops: 1000, MaxShelvesPerShop: 1000, MaxItemsPerShelf: 10000, IsActive: true},
	}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) db() *memData {
	return *m.data
}

// InTx implements Store.
func (m *Memory) InTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.db().clone()
	tx := &Memory{mu: m.mu, data: m.data, inTx: true}
	if err := fn(tx); err != nil {
		*m.data = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		*m.data = snapshot
		return err
	}
	return nil
}

// =============================================================================
// Tiers
// =============================================================================

func (m *Memory) GetTier(ctx context.Context, name string) (*domain.SubscriptionTier, error) {
	defer m.lock()()
	t, ok := m.db().tiers[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *Memory) ListTiers(ctx context.Context) ([]domain.SubscriptionTier, error) {
	defer m.lock()()
	tiers := make([]domain.SubscriptionTier, 0, len(m.db().tiers))
	for _, t := range m.db().tiers {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool {
		a, b := tiers[i], tiers[j]
		if a.MaxShops != b.MaxShops {
			return a.MaxShops < b.MaxShops
		}
		if a.MaxShelvesPerShop != b.MaxShelvesPerShop {
			return a.MaxShelvesPerShop < b.MaxShelvesPerShop
		}
		if a.MaxItemsPerShelf != b.MaxItemsPerShelf {
			return a.MaxItemsPerShelf < b.MaxItemsPerShelf
		}
		return a.Name < b.Name
	})
	return tiers, nil
}

func (m *Memory) UpsertTier(ctx context.Context, tier domain.SubscriptionTier) error {
	defer m.lock()()
	m.db().tiers[tier.Name] = tier
	return nil
}

// RemoveTier deletes a catalog entry. Only tests use it, to exercise
// fail-closed lookups for accounts whose tier disappeared.
func (m *Memory) RemoveTier(name string) {
	defer m.lock()()
	delete(m.db().tiers, name)
}

// =============================================================================
// Accounts
// =============================================================================

func (m *Memory) CreateAccount(ctx context.Context, account *domain.Account) error {
	defer m.lock()()
	d := m.db()
	if _, exists := d.subjects[account.Subject]; exists {
		return domain.Conflict("store.CreateAccount", "account subject already registered")
	}
	now := time.Now().UTC()
	account.CreatedAt, account.UpdatedAt = now, now
	d.accounts[account.ID] = memRecord[domain.Account]{value: *account, seq: d.next()}
	d.subjects[account.Subject] = account.ID
	return nil
}

func (m *Memory) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	defer m.lock()()
	r, ok := m.db().accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	a := r.value
	return &a, nil
}

func (m *Memory) GetAccountBySubject(ctx context.Context, subject string) (*domain.Account, error) {
	defer m.lock()()
	id, ok := m.db().subjects[subject]
	if !ok {
		return nil, ErrNotFound
	}
	a := m.db().accounts[id].value
	return &a, nil
}

func (m *Memory) LockAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return m.GetAccount(ctx, id)
}

func (m *Memory) SetAccountTier(ctx context.Context, id uuid.UUID, tierName string) error {
	defer m.lock()()
	r, ok := m.db().accounts[id]
	if !ok {
		return ErrNotFound
	}
	r.value.TierName = tierName
	r.value.UpdatedAt = time.Now().UTC()
	m.db().accounts[id] = r
	return nil
}

// =============================================================================
// Shops
// =============================================================================

func (m *Memory) CreateShop(ctx context.Context, shop *domain.Shop) error {
	defer m.lock()()
	d := m.db()
	if _, ok := d.accounts[shop.OwnerID]; !ok {
		return ErrNotFound
	}
	if _, exists := d.slugs[shop.Slug]; exists {
		return domain.Conflict("store.CreateShop", "shop slug already taken")
	}
	now := time.Now().UTC()
	shop.CreatedAt, shop.UpdatedAt = now, now
	if shop.ShelfIDs == nil {
		shop.ShelfIDs = []uuid.UUID{}
	}
	d.shops[shop.ID] = memRecord[domain.Shop]{value: cloneShop(*shop), seq: d.next()}
	d.slugs[shop.Slug] = shop.ID
	return nil
}

func (m *Memory) GetShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	defer m.lock()()
	r, ok := m.db().shops[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := cloneShop(r.value)
	return &s, nil
}

func (m *Memory) LockShop(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	return m.GetShop(ctx, id)
}

func (m *Memory) ListShopsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Shop, error) {
	defer m.lock()()
	var recs []memRecord[domain.Shop]
	for _, r := range m.db().shops {
		if r.value.OwnerID == ownerID {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	shops := make([]domain.Shop, len(recs))
	for i, r := range recs {
		shops[i] = cloneShop(r.value)
	}
	return shops, nil
}

func (m *Memory) CountShopsByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	defer m.lock()()
	n := 0
	for _, r := range m.db().shops {
		if r.value.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) SetShopStatus(ctx context.Context, id uuid.UUID, status domain.ShopStatus) error {
	return m.updateShop(id, func(s *domain.Shop) { s.Status = status })
}

func (m *Memory) AppendShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error {
	return m.updateShop(shopID, func(s *domain.Shop) { s.ShelfIDs = append(s.ShelfIDs, shelfID) })
}

func (m *Memory) RemoveShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error {
	return m.updateShop(shopID, func(s *domain.Shop) { s.ShelfIDs = without(s.ShelfIDs, shelfID) })
}

func (m *Memory) SetShopShelves(ctx context.Context, shopID uuid.UUID, shelfIDs []uuid.UUID) error {
	return m.updateShop(shopID, func(s *domain.Shop) { s.ShelfIDs = append([]uuid.UUID{}, shelfIDs...) })
}

func (m *Memory) updateShop(id uuid.UUID, mutate func(*domain.Shop)) error {
	defer m.lock()()
	r, ok := m.db().shops[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&r.value)
	r.value.UpdatedAt = time.Now().UTC()
	m.db().shops[id] = r
	return nil
}

// =============================================================================
// Shelves
// =============================================================================

func (m *Memory) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	defer m.lock()()
	d := m.db()
	if _, ok := d.shops[shelf.ShopID]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	shelf.CreatedAt, shelf.UpdatedAt = now, now
	if shelf.ProductIDs == nil {
		shelf.ProductIDs = []uuid.UUID{}
	}
	if shelf.ServiceIDs == nil {
		shelf.ServiceIDs = []uuid.UUID{}
	}
	d.shelves[shelf.ID] = memRecord[domain.Shelf]{value: cloneShelf(*shelf), seq: d.next()}
	return nil
}

func (m *Memory) GetShelf(ctx context.Context, id uuid.UUID) (*domain.Shelf, error) {
	defer m.lock()()
	r, ok := m.db().shelves[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := cloneShelf(r.value)
	return &s, nil
}

func (m *Memory) LockShelf(ctx context.Context, id uuid.UUID) (*domain.Shelf, error) {
	return m.GetShelf(ctx, id)
}

func (m *Memory) ListShelvesByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Shelf, error) {
	defer m.lock()()
	var recs []memRecord[domain.Shelf]
	for _, r := range m.db().shelves {
		if r.value.ShopID == shopID {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].value.ShelfOrder != recs[j].value.ShelfOrder {
			return recs[i].value.ShelfOrder < recs[j].value.ShelfOrder
		}
		return recs[i].seq < recs[j].seq
	})
	shelves := make([]domain.Shelf, len(recs))
	for i, r := range recs {
		shelves[i] = cloneShelf(r.value)
	}
	return shelves, nil
}

func (m *Memory) CountShelvesByShop(ctx context.Context, shopID uuid.UUID) (int, error) {
	defer m.lock()()
	n := 0
	for _, r := range m.db().shelves {
		if r.value.ShopID == shopID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpdateShelfDetails(ctx context.Context, id uuid.UUID, name, description string) error {
	return m.updateShelf(id, func(s *domain.Shelf) {
		s.Name = name
		s.Description = description
	})
}

func (m *Memory) SetShelfOrder(ctx context.Context, id uuid.UUID, order int) error {
	return m.updateShelf(id, func(s *domain.Shelf) { s.ShelfOrder = order })
}

func (m *Memory) DeleteShelf(ctx context.Context, id uuid.UUID) error {
	defer m.lock()()
	delete(m.db().shelves, id)
	return nil
}

func (m *Memory) AppendShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error {
	return m.updateShelf(shelfID, func(s *domain.Shelf) {
		if kind == domain.ItemKindService {
			s.ServiceIDs = append(s.ServiceIDs, itemID)
		} else {
			s.ProductIDs = append(s.ProductIDs, itemID)
		}
	})
}

func (m *Memory) RemoveShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error {
	return m.updateShelf(shelfID, func(s *domain.Shelf) {
		if kind == domain.ItemKindService {
			s.ServiceIDs = without(s.ServiceIDs, itemID)
		} else {
			s.ProductIDs = without(s.ProductIDs, itemID)
		}
	})
}

func (m *Memory) SetShelfItems(ctx context.Context, shelfID uuid.UUID, productIDs, serviceIDs []uuid.UUID) error {
	return m.updateShelf(shelfID, func(s *domain.Shelf) {
		s.ProductIDs = append([]uuid.UUID{}, productIDs...)
		s.ServiceIDs = append([]uuid.UUID{}, serviceIDs...)
	})
}

func (m *Memory) updateShelf(id uuid.UUID, mutate func(*domain.Shelf)) error {
	defer m.lock()()
	r, ok := m.db().shelves[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&r.value)
	r.value.UpdatedAt = time.Now().UTC()
	m.db().shelves[id] = r
	return nil
}

// =============================================================================
// Items
// =============================================================================

func (m *Memory) CreateItem(ctx context.Context, item *domain.Item) error {
	defer m.lock()()
	d := m.db()
	if _, ok := d.shops[item.ShopID]; !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	d.items[item.ID] = memRecord[domain.Item]{value: cloneItem(*item), seq: d.next()}
	return nil
}

func (m *Memory) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	defer m.lock()()
	r, ok := m.db().items[id]
	if !ok {
		return nil, ErrNotFound
	}
	i := cloneItem(r.value)
	return &i, nil
}

func (m *Memory) UpdateItemDetails(ctx context.Context, item *domain.Item) error {
	defer m.lock()()
	r, ok := m.db().items[item.ID]
	if !ok {
		return ErrNotFound
	}
	v := &r.value
	v.Name = item.Name
	v.Description = item.Description
	v.PriceCents = item.PriceCents
	v.Currency = item.Currency
	v.MediaRefs = append([]string(nil), item.MediaRefs...)
	v.Tags = append([]string(nil), item.Tags...)
	v.Attributes = append(json.RawMessage(nil), item.Attributes...)
	v.UpdatedAt = time.Now().UTC()
	m.db().items[item.ID] = r
	return nil
}

func (m *Memory) DeleteItem(ctx context.Context, id uuid.UUID) error {
	defer m.lock()()
	delete(m.db().items, id)
	return nil
}

func (m *Memory) ListItemsByShelf(ctx context.Context, shelfID uuid.UUID) ([]domain.Item, error) {
	return m.listItems(func(i *domain.Item) bool { return i.ShelfID != nil && *i.ShelfID == shelfID }, true)
}

func (m *Memory) ListItemsByShop(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error) {
	return m.listItems(func(i *domain.Item) bool { return i.ShopID == shopID }, false)
}

func (m *Memory) ListUnplacedItems(ctx context.Context, shopID uuid.UUID) ([]domain.Item, error) {
	return m.listItems(func(i *domain.Item) bool { return i.ShopID == shopID && i.ShelfID == nil }, false)
}

func (m *Memory) listItems(match func(*domain.Item) bool, byShelfOrder bool) ([]domain.Item, error) {
	defer m.lock()()
	var recs []memRecord[domain.Item]
	for _, r := range m.db().items {
		if match(&r.value) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if byShelfOrder {
			oi, oj := recs[i].value.ShelfOrder, recs[j].value.ShelfOrder
			switch {
			case oi != nil && oj != nil && *oi != *oj:
				return *oi < *oj
			case oi != nil && oj == nil:
				return true
			case oi == nil && oj != nil:
				return false
			}
		}
		return recs[i].seq < recs[j].seq
	})
	items := make([]domain.Item, len(recs))
	for i, r := range recs {
		items[i] = cloneItem(r.value)
	}
	return items, nil
}

// =============================================================================
// Helpers
// =============================================================================

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func cloneShop(s domain.Shop) domain.Shop {
	s.ShelfIDs = append([]uuid.UUID{}, s.ShelfIDs...)
	return s
}

func cloneShelf(s domain.Shelf) domain.Shelf {
	s.ProductIDs = append([]uuid.UUID{}, s.ProductIDs...)
	s.ServiceIDs = append([]uuid.UUID{}, s.ServiceIDs...)
	return s
}

func cloneItem(i domain.Item) domain.Item {
	if i.ShelfID != nil {
		id := *i.ShelfID
		i.ShelfID = &id
	}
	if i.ShelfOrder != nil {
		o := *i.ShelfOrder
		i.ShelfOrder = &o
	}
	i.MediaRefs = append([]string(nil), i.MediaRefs...)
	i.Tags = append([]string(nil), i.Tags...)
	i.Attributes = append(json.RawMessage(nil), i.Attributes...)
	return i
}
