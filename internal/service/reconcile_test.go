package service

import (
	"context"
	"testing"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileService_CleanShopNeedsNoRepairs(t *testing.T) {
	env := newTestEnv(t)
	shop := env.shop(t, domain.TierFree)
	shelf := env.shelf(t, shop.ID, "Front")
	env.placeItem(t, domain.ItemKindProduct, shop.ID, shelf.ID, "Mug")

	report, err := env.reconcile.Shop(context.Background(), shop.ID)
	require.NoError(t, err)
	assert.Zero(t, report.Repairs())
}

func TestReconcileService_RepairsOrphansAndDanglingRefs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	shop := env.shop(t, domain.TierFree)
	a := env.shelf(t, shop.ID, "A")
	b := env.shelf(t, shop.ID, "B")
	product := env.placeItem(t, domain.ItemKindProduct, shop.ID, a.ID, "Mug")
	service := env.placeItem(t, domain.ItemKindService, shop.ID, a.ID, "Engraving")

	// Simulate partially-applied mutations.
	ghostShelf, ghostItem := uuid.New(), uuid.New()
	require.NoError(t, env.mem.SetShopShelves(ctx, shop.ID, []uuid.UUID{ghostShelf, b.ID}))
	require.NoError(t, env.mem.SetShelfItems(ctx, a.ID, []uuid.UUID{ghostItem}, nil))

	report, err := env.reconcile.Shop(ctx, shop.ID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{a.ID}, report.OrphanShelves)
	assert.Equal(t, []uuid.UUID{ghostShelf}, report.DanglingShelves)
	assert.ElementsMatch(t, []uuid.UUID{product.ID, service.ID}, report.OrphanItems)
	assert.Equal(t, []uuid.UUID{ghostItem}, report.DanglingItems)

	got, err := env.shops.Get(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, got.ShelfIDs)

	shelf, err := env.shelves.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{product.ID}, shelf.ProductIDs)
	assert.Equal(t, []uuid.UUID{service.ID}, shelf.ServiceIDs)
}

func TestReconcileService_MissingShop(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reconcile.Shop(context.Background(), uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestRebuild(t *testing.T) {
	a, b, c, ghost := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	result, orphans, dangling := rebuild([]uuid.UUID{b, ghost, b}, []uuid.UUID{a, b, c})
	assert.Equal(t, []uuid.UUID{b, a, c}, result)
	assert.Equal(t, []uuid.UUID{a, c}, orphans)
	assert.Equal(t, []uuid.UUID{ghost, b}, dangling)
}
