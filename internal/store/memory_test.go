package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShop(t *testing.T, m *Memory) *domain.Shop {
	t.Helper()
	ctx := context.Background()

	account := &domain.Account{ID: uuid.New(), Subject: "sub-" + uuid.NewString(), TierName: domain.TierFree}
	require.NoError(t, m.CreateAccount(ctx, account))

	shop := &domain.Shop{ID: uuid.New(), OwnerID: account.ID, Slug: uuid.NewString(), Name: "Corner Store", Status: domain.ShopStatusPendingApproval}
	require.NoError(t, m.CreateShop(ctx, shop))
	return shop
}

func TestMemory_InTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(DefaultTiers()...)
	shop := seedShop(t, m)

	boom := errors.New("boom")
	shelfID := uuid.New()
	err := m.InTx(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateShelf(ctx, &domain.Shelf{ID: shelfID, ShopID: shop.ID, Name: "A", ShelfOrder: 1}))
		require.NoError(t, tx.AppendShopShelf(ctx, shop.ID, shelfID))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = m.GetShelf(ctx, shelfID)
	assert.True(t, IsNotFound(err))

	got, err := m.GetShop(ctx, shop.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ShelfIDs)
}

func TestMemory_InTxCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shop := seedShop(t, m)

	shelfID := uuid.New()
	err := m.InTx(ctx, func(tx Store) error {
		if err := tx.CreateShelf(ctx, &domain.Shelf{ID: shelfID, ShopID: shop.ID, Name: "A", ShelfOrder: 1}); err != nil {
			return err
		}
		// Nested transactions join the outer one.
		return tx.InTx(ctx, func(inner Store) error {
			return inner.AppendShopShelf(ctx, shop.ID, shelfID)
		})
	})
	require.NoError(t, err)

	got, err := m.GetShop(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{shelfID}, got.ShelfIDs)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shop := seedShop(t, m)

	got, err := m.GetShop(ctx, shop.ID)
	require.NoError(t, err)
	got.ShelfIDs = append(got.ShelfIDs, uuid.New())

	again, err := m.GetShop(ctx, shop.ID)
	require.NoError(t, err)
	assert.Empty(t, again.ShelfIDs)
}

func TestMemory_ListShelvesByShopOrdersByShelfOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shop := seedShop(t, m)

	for i, order := range []int{3, 1, 2} {
		name := string(rune('A' + i))
		require.NoError(t, m.CreateShelf(ctx, &domain.Shelf{ID: uuid.New(), ShopID: shop.ID, Name: name, ShelfOrder: order}))
	}

	shelves, err := m.ListShelvesByShop(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, shelves, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{shelves[0].Name, shelves[1].Name, shelves[2].Name})
}

func TestMemory_ShelfItemArraysByKind(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shop := seedShop(t, m)

	shelf := &domain.Shelf{ID: uuid.New(), ShopID: shop.ID, Name: "A", ShelfOrder: 1}
	require.NoError(t, m.CreateShelf(ctx, shelf))

	product, service := uuid.New(), uuid.New()
	require.NoError(t, m.AppendShelfItem(ctx, shelf.ID, domain.ItemKindProduct, product))
	require.NoError(t, m.AppendShelfItem(ctx, shelf.ID, domain.ItemKindService, service))

	got, err := m.GetShelf(ctx, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{product}, got.ProductIDs)
	assert.Equal(t, []uuid.UUID{service}, got.ServiceIDs)

	require.NoError(t, m.RemoveShelfItem(ctx, shelf.ID, domain.ItemKindService, service))
	got, err = m.GetShelf(ctx, shelf.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ServiceIDs)
	assert.Equal(t, 1, got.ItemCount())

	assert.True(t, IsNotFound(m.AppendShelfItem(ctx, uuid.New(), domain.ItemKindProduct, product)))
}
