package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
)

// ReconcileReport lists the reference array repairs made for one shop.
type ReconcileReport struct {
	ShopID uuid.UUID `json:"shop_id"`
	// OrphanShelves were missing from Shop.ShelfIDs and have been appended.
	OrphanShelves []uuid.UUID `json:"orphan_shelves"`
	// DanglingShelves were referenced without a matching shelf and have been dropped.
	DanglingShelves []uuid.UUID `json:"dangling_shelves"`
	// OrphanItems were missing from their shelf's arrays and have been appended.
	OrphanItems []uuid.UUID `json:"orphan_items"`
	// DanglingItems were referenced from a shelf without a matching item.
	DanglingItems []uuid.UUID `json:"dangling_items"`
}

// Repairs is the total number of fixed references.
func (r *ReconcileReport) Repairs() int {
	return len(r.OrphanShelves) + len(r.DanglingShelves) + len(r.OrphanItems) + len(r.DanglingItems)
}

// ReconcileService repairs parent reference arrays after a partially-applied
// multi-record mutation. It only runs on demand.
type ReconcileService interface {
	Shop(ctx context.Context, shopID uuid.UUID) (*ReconcileReport, error)
}

type reconcileService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(st store.Store, logger *slog.Logger) ReconcileService {
	return &reconcileService{store: st, logger: logger}
}

// Shop rebuilds Shop.ShelfIDs from the shelves that point at the shop and each
// shelf's item arrays from the items that point at the shelf. Existing order
// is kept; orphans are appended in shelfOrder order.
func (s *reconcileService) Shop(ctx context.Context, shopID uuid.UUID) (*ReconcileReport, error) {
	const op = "ReconcileService.Shop"

	report := &ReconcileReport{
		ShopID:          shopID,
		OrphanShelves:   []uuid.UUID{},
		DanglingShelves: []uuid.UUID{},
		OrphanItems:     []uuid.UUID{},
		DanglingItems:   []uuid.UUID{},
	}

	err := runTx(ctx, s.store, s.logger, op, "Failed to reconcile shop", func(tx store.Store) error {
		shop, err := tx.LockShop(ctx, shopID)
		if err != nil {
			if store.IsNotFound(err) {
				return domain.NotFound(op, "shop", shopID.String())
			}
			return err
		}

		shelves, err := tx.ListShelvesByShop(ctx, shopID)
		if err != nil {
			return err
		}
		actual := make([]uuid.UUID, len(shelves))
		for i := range shelves {
			actual[i] = shelves[i].ID
		}
		shelfIDs, orphans, dangling := rebuild(shop.ShelfIDs, actual)
		if len(orphans)+len(dangling) > 0 {
			if err := tx.SetShopShelves(ctx, shopID, shelfIDs); err != nil {
				return err
			}
			report.OrphanShelves = append(report.OrphanShelves, orphans...)
			report.DanglingShelves = append(report.DanglingShelves, dangling...)
		}

		for i := range shelves {
			shelf := &shelves[i]
			items, err := tx.ListItemsByShelf(ctx, shelf.ID)
			if err != nil {
				return err
			}
			var products, services []uuid.UUID
			for _, item := range items {
				if item.Kind == domain.ItemKindService {
					services = append(services, item.ID)
				} else {
					products = append(products, item.ID)
				}
			}
			newProducts, po, pd := rebuild(shelf.ProductIDs, products)
			newServices, so, sd := rebuild(shelf.ServiceIDs, services)
			if len(po)+len(pd)+len(so)+len(sd) == 0 {
				continue
			}
			if err := tx.SetShelfItems(ctx, shelf.ID, newProducts, newServices); err != nil {
				return err
			}
			report.OrphanItems = append(append(report.OrphanItems, po...), so...)
			report.DanglingItems = append(append(report.DanglingItems, pd...), sd...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Repaired(len(report.OrphanShelves)+len(report.OrphanItems), len(report.DanglingShelves)+len(report.DanglingItems))
	if report.Repairs() > 0 {
		s.logger.Warn("shop references repaired",
			"shop_id", shopID,
			"orphan_shelves", len(report.OrphanShelves),
			"dangling_shelves", len(report.DanglingShelves),
			"orphan_items", len(report.OrphanItems),
			"dangling_items", len(report.DanglingItems),
		)
	}
	return report, nil
}

// rebuild returns refs with stale and repeated ids dropped and ids of actual
// missing from refs appended in the order actual lists them.
func rebuild(refs, actual []uuid.UUID) (result, orphans, dangling []uuid.UUID) {
	exists := make(map[uuid.UUID]bool, len(actual))
	for _, id := range actual {
		exists[id] = true
	}
	referenced := make(map[uuid.UUID]bool, len(refs))
	result = make([]uuid.UUID, 0, len(actual))
	for _, id := range refs {
		if !exists[id] || referenced[id] {
			dangling = append(dangling, id)
			continue
		}
		referenced[id] = true
		result = append(result, id)
	}
	for _, id := range actual {
		if !referenced[id] {
			orphans = append(orphans, id)
			result = append(result, id)
		}
	}
	return result, orphans, dangling
}
