package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService resolves an owner's tier and applies the quota enforcer.
type QuotaService interface {
	// TierForAccount resolves the account's current tier. Both a missing
	// account and a missing tier are NotFound.
	TierForAccount(ctx context.Context, accountID uuid.UUID) (*domain.SubscriptionTier, error)

	// Check applies CanPlace and records denials.
	// Returns nil if allowed, or a QuotaExceeded error if not. Approvals are
	// recorded by the caller once the placement commits.
	Check(op string, tier *domain.SubscriptionTier, currentCount int, kind domain.QuotaKind) error

	// Usage reports the account's consumption against its tier.
	Usage(ctx context.Context, accountID uuid.UUID) (*domain.QuotaUsage, error)
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	store   store.Store
	catalog CatalogService
	logger  *slog.Logger
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(st store.Store, catalog CatalogService, logger *slog.Logger) QuotaService {
	return &quotaService{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *quotaService) TierForAccount(ctx context.Context, accountID uuid.UUID) (*domain.SubscriptionTier, error) {
	const op = "QuotaService.TierForAccount"

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if store.IsNotFound(err) {
			s.logger.Error("owner account missing", "op", op, "account_id", accountID)
		}
		return nil, lookupErr(s.logger, err, op, "account", accountID.String())
	}

	tier, err := s.catalog.Get(ctx, account.TierName)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			s.logger.Warn("account references unknown tier",
				"op", op,
				"account_id", accountID,
				"tier", account.TierName,
			)
		}
		return nil, err
	}
	return tier, nil
}

func (s *quotaService) Check(op string, tier *domain.SubscriptionTier, currentCount int, kind domain.QuotaKind) error {
	err := domain.CanPlace(op, tier, currentCount, kind)
	if err == nil {
		return nil
	}

	metrics.QuotaDenied(kind)
	if tier != nil {
		s.logger.Info("quota exceeded",
			"op", op,
			"kind", kind,
			"tier", tier.Name,
			"used", currentCount,
			"limit", tier.Cap(kind),
		)
	}
	return err
}

func (s *quotaService) Usage(ctx context.Context, accountID uuid.UUID) (*domain.QuotaUsage, error) {
	const op = "QuotaService.Usage"

	tier, err := s.TierForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	shops, err := s.store.ListShopsByOwner(ctx, accountID)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list shops")
	}

	usage := &domain.QuotaUsage{
		Tier:       *tier,
		ShopsUsed:  len(shops),
		ShopsLimit: tier.MaxShops,
		Shops:      make([]domain.ShopUsage, 0, len(shops)),
	}

	for _, shop := range shops {
		shelves, err := s.store.ListShelvesByShop(ctx, shop.ID)
		if err != nil {
			return nil, domain.Internal(err, op, "Failed to list shelves")
		}
		su := domain.ShopUsage{
			ShopID:       shop.ID,
			ShelvesUsed:  len(shelves),
			ShelvesLimit: tier.MaxShelvesPerShop,
		}
		for i := range shelves {
			if shelves[i].ItemCount() >= tier.MaxItemsPerShelf {
				su.FullShelves++
			}
		}
		usage.Shops = append(usage.Shops, su)
	}

	return usage, nil
}
