package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errFault = errors.New("simulated store fault")

// =============================================================================
// Test Fixtures
// =============================================================================

type testEnv struct {
	mem       *store.Memory
	events    *recordingPublisher
	catalog   CatalogService
	accounts  AccountService
	quota     QuotaService
	shops     ShopService
	shelves   ShelfService
	items     ItemService
	reconcile ReconcileService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory(store.DefaultTiers()...)
	return newTestEnvWithStore(t, mem, mem)
}

// newTestEnvWithStore builds services on st; mem is the store underneath it
// for direct assertions.
func newTestEnvWithStore(t *testing.T, mem *store.Memory, st store.Store) *testEnv {
	t.Helper()
	logger := discardLogger()
	pub := &recordingPublisher{}

	catalog := NewCatalogService(st, nil, logger)
	quota := NewQuotaService(st, catalog, logger)
	shops, err := NewShopService(st, quota, pub, logger)
	require.NoError(t, err)

	return &testEnv{
		mem:       mem,
		events:    pub,
		catalog:   catalog,
		accounts:  NewAccountService(st, catalog, domain.TierFree, logger),
		quota:     quota,
		shops:     shops,
		shelves:   NewShelfService(st, quota, pub, logger),
		items:     NewItemService(st, quota, pub, logger),
		reconcile: NewReconcileService(st, logger),
	}
}

// owner creates an account on the given tier.
func (e *testEnv) owner(t *testing.T, tier string) *domain.Account {
	t.Helper()
	ctx := context.Background()
	account, err := e.accounts.Resolve(ctx, "subject-"+uuid.NewString())
	require.NoError(t, err)
	if tier != account.TierName {
		account, err = e.accounts.ChangeTier(ctx, account.ID, tier)
		require.NoError(t, err)
	}
	return account
}

// shop creates a shop for a fresh owner on the given tier.
func (e *testEnv) shop(t *testing.T, tier string) *domain.Shop {
	t.Helper()
	owner := e.owner(t, tier)
	shop, err := e.shops.Create(context.Background(), domain.CreateShopParams{OwnerID: owner.ID, Name: "Corner Store"})
	require.NoError(t, err)
	return shop
}

func (e *testEnv) shelf(t *testing.T, shopID uuid.UUID, name string) *domain.Shelf {
	t.Helper()
	shelf, err := e.shelves.Create(context.Background(), domain.CreateShelfParams{ShopID: shopID, Name: name})
	require.NoError(t, err)
	return shelf
}

func (e *testEnv) placeItem(t *testing.T, kind domain.ItemKind, shopID, shelfID uuid.UUID, name string) *domain.Item {
	t.Helper()
	item, err := e.items.Create(context.Background(), itemParams(kind, shopID, &shelfID, name))
	require.NoError(t, err)
	return item
}

func itemParams(kind domain.ItemKind, shopID uuid.UUID, shelfID *uuid.UUID, name string) domain.CreateItemParams {
	return domain.CreateItemParams{
		Kind:    kind,
		ShopID:  shopID,
		ShelfID: shelfID,
		ItemDetails: domain.ItemDetails{
			Name:       name,
			PriceCents: 1500,
		},
	}
}

// =============================================================================
// Fakes
// =============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// faultyStore fails the named parent-link write so the two-phase helper has
// to undo the child write that preceded it.
type faultyStore struct {
	store.Store
	failOn string
}

func (f *faultyStore) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.InTx(ctx, func(tx store.Store) error {
		return fn(&faultyStore{Store: tx, failOn: f.failOn})
	})
}

func (f *faultyStore) AppendShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error {
	if f.failOn == "AppendShopShelf" {
		return errFault
	}
	return f.Store.AppendShopShelf(ctx, shopID, shelfID)
}

func (f *faultyStore) AppendShelfItem(ctx context.Context, shelfID uuid.UUID, kind domain.ItemKind, itemID uuid.UUID) error {
	if f.failOn == "AppendShelfItem" {
		return errFault
	}
	return f.Store.AppendShelfItem(ctx, shelfID, kind, itemID)
}

func (f *faultyStore) RemoveShopShelf(ctx context.Context, shopID, shelfID uuid.UUID) error {
	if f.failOn == "RemoveShopShelf" {
		return errFault
	}
	return f.Store.RemoveShopShelf(ctx, shopID, shelfID)
}

func (f *faultyStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if f.failOn == "DeleteItem" {
		return errFault
	}
	return f.Store.DeleteItem(ctx, id)
}

type fakeTierCache struct {
	tiers       map[string]domain.SubscriptionTier
	hits        int
	invalidated []string
}

func newFakeTierCache() *fakeTierCache {
	return &fakeTierCache{tiers: map[string]domain.SubscriptionTier{}}
}

func (c *fakeTierCache) Get(ctx context.Context, name string) (*domain.SubscriptionTier, bool, error) {
	t, ok := c.tiers[name]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &t, true, nil
}

func (c *fakeTierCache) Set(ctx context.Context, tier domain.SubscriptionTier) error {
	c.tiers[tier.Name] = tier
	return nil
}

func (c *fakeTierCache) Invalidate(ctx context.Context, name string) error {
	delete(c.tiers, name)
	c.invalidated = append(c.invalidated, name)
	return nil
}
