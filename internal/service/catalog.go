package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/store"
)

// TierCache is an optional read-through cache in front of the catalog.
type TierCache interface {
	Get(ctx context.Context, name string) (*domain.SubscriptionTier, bool, error)
	Set(ctx context.Context, tier domain.SubscriptionTier) error
	Invalidate(ctx context.Context, name string) error
}

// CatalogService reads and edits the subscription catalog.
type CatalogService interface {
	// Get returns the named tier. A missing tier is NotFound, never unlimited.
	Get(ctx context.Context, name string) (*domain.SubscriptionTier, error)

	// List returns every tier, smallest caps first.
	List(ctx context.Context) ([]domain.SubscriptionTier, error)

	// Upsert creates or replaces a tier (admin catalog edit).
	Upsert(ctx context.Context, tier domain.SubscriptionTier) (*domain.SubscriptionTier, error)
}

type catalogService struct {
	tiers  store.TierStore
	cache  TierCache
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService. cache may be nil.
func NewCatalogService(tiers store.TierStore, cache TierCache, logger *slog.Logger) CatalogService {
	return &catalogService{
		tiers:  tiers,
		cache:  cache,
		logger: logger,
	}
}

func (s *catalogService) Get(ctx context.Context, name string) (*domain.SubscriptionTier, error) {
	const op = "CatalogService.Get"

	if s.cache != nil {
		tier, ok, err := s.cache.Get(ctx, name)
		switch {
		case err != nil:
			metrics.TierCacheLookupsTotal.WithLabelValues("error").Inc()
			s.logger.Warn("tier cache lookup failed", "error", err, "tier", name)
		case ok:
			metrics.TierCacheLookupsTotal.WithLabelValues("hit").Inc()
			return tier, nil
		default:
			metrics.TierCacheLookupsTotal.WithLabelValues("miss").Inc()
		}
	}

	tier, err := s.tiers.GetTier(ctx, name)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "subscription tier", name)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, *tier); err != nil {
			s.logger.Warn("tier cache store failed", "error", err, "tier", name)
		}
	}
	return tier, nil
}

func (s *catalogService) List(ctx context.Context) ([]domain.SubscriptionTier, error) {
	const op = "CatalogService.List"

	tiers, err := s.tiers.ListTiers(ctx)
	if err != nil {
		s.logger.Error("failed to list tiers", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to list subscription tiers")
	}
	return tiers, nil
}

func (s *catalogService) Upsert(ctx context.Context, tier domain.SubscriptionTier) (*domain.SubscriptionTier, error) {
	const op = "CatalogService.Upsert"

	tier.Name = strings.TrimSpace(tier.Name)
	tier.DisplayName = strings.TrimSpace(tier.DisplayName)
	if err := tier.Validate(op); err != nil {
		return nil, err
	}

	if err := s.tiers.UpsertTier(ctx, tier); err != nil {
		s.logger.Error("failed to store tier", "error", err, "op", op, "tier", tier.Name)
		return nil, domain.Internal(err, op, "Failed to save subscription tier")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tier.Name); err != nil {
			s.logger.Warn("tier cache invalidation failed", "error", err, "tier", tier.Name)
		}
	}

	s.logger.Info("subscription tier saved",
		"tier", tier.Name,
		"max_shops", tier.MaxShops,
		"max_shelves_per_shop", tier.MaxShelvesPerShop,
		"max_items_per_shelf", tier.MaxItemsPerShelf,
		"is_active", tier.IsActive,
	)
	return &tier, nil
}
