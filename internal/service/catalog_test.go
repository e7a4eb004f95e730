package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_GetMissingTierFailsClosed(t *testing.T) {
	env := newTestEnv(t)

	tier, err := env.catalog.Get(context.Background(), "platinum")
	assert.Nil(t, tier)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestCatalogService_ReadThroughCache(t *testing.T) {
	mem := store.NewMemory(store.DefaultTiers()...)
	cache := newFakeTierCache()
	catalog := NewCatalogService(mem, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	first, err := catalog.Get(ctx, domain.TierPro)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
	assert.Contains(t, cache.tiers, domain.TierPro)

	second, err := catalog.Get(ctx, domain.TierPro)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}

func TestCatalogService_UpsertInvalidatesCache(t *testing.T) {
	mem := store.NewMemory(store.DefaultTiers()...)
	cache := newFakeTierCache()
	catalog := NewCatalogService(mem, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	_, err := catalog.Get(ctx, domain.TierFree)
	require.NoError(t, err)

	_, err = catalog.Upsert(ctx, domain.SubscriptionTier{
		Name: domain.TierFree, DisplayName: "Free", MaxShops: 2, MaxShelvesPerShop: 3, MaxItemsPerShelf: 3, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.TierFree}, cache.invalidated)

	tier, err := catalog.Get(ctx, domain.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 2, tier.MaxShops)
}

func TestCatalogService_UpsertValidates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.Upsert(context.Background(), domain.SubscriptionTier{Name: "broken", MaxShops: -1})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "max_shops")
}

func TestCatalogService_List(t *testing.T) {
	env := newTestEnv(t)

	tiers, err := env.catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, domain.TierFree, tiers[0].Name)
}
