package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/events"
	"github.com/DukeRupert/bazaar/internal/metrics"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	maxShopNameLength = 120
	slugSuffixLength  = 8
	slugAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ShopService manages shop creation and moderation.
type ShopService interface {
	// Create opens a shop for the owner, subject to the tier's maxShops cap.
	// New shops start in pending_approval with no shelves.
	Create(ctx context.Context, params domain.CreateShopParams) (*domain.Shop, error)

	// Get retrieves a shop by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Shop, error)

	// ListByOwner returns the owner's shops in creation order.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Shop, error)

	// Moderate applies an approval, rejection, suspension or reinstatement.
	// Disallowed transitions return a Conflict.
	Moderate(ctx context.Context, id uuid.UUID, action domain.ModerationAction) (*domain.Shop, error)
}

// =============================================================================
// Implementation
// =============================================================================

type shopService struct {
	store   store.Store
	quota   QuotaService
	events  publisher
	newSlug func() string
	logger  *slog.Logger
}

// NewShopService creates a new ShopService.
func NewShopService(st store.Store, quota QuotaService, pub events.Publisher, logger *slog.Logger) (ShopService, error) {
	gen, err := nanoid.CustomASCII(slugAlphabet, slugSuffixLength)
	if err != nil {
		return nil, err
	}
	return &shopService{
		store:   st,
		quota:   quota,
		events:  publisher{events: pub, logger: logger},
		newSlug: gen,
		logger:  logger,
	}, nil
}

func (s *shopService) Create(ctx context.Context, params domain.CreateShopParams) (*domain.Shop, error) {
	const op = "ShopService.Create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "Shop name is required")
	}
	if len(name) > maxShopNameLength {
		return nil, domain.NewValidationError(op, "name", "Shop name is too long")
	}

	tier, err := s.quota.TierForAccount(ctx, params.OwnerID)
	if err != nil {
		return nil, err
	}

	shop := &domain.Shop{
		ID:          uuid.New(),
		OwnerID:     params.OwnerID,
		Slug:        slugify(name) + "-" + s.newSlug(),
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		Status:      domain.ShopStatusPendingApproval,
		ShelfIDs:    []uuid.UUID{},
	}

	err = runTx(ctx, s.store, s.logger, op, "Failed to create shop", func(tx store.Store) error {
		if _, err := tx.LockAccount(ctx, params.OwnerID); err != nil {
			if store.IsNotFound(err) {
				return domain.NotFound(op, "account", params.OwnerID.String())
			}
			return err
		}
		count, err := tx.CountShopsByOwner(ctx, params.OwnerID)
		if err != nil {
			return err
		}
		if err := s.quota.Check(op, tier, count, domain.QuotaShops); err != nil {
			return err
		}
		return tx.CreateShop(ctx, shop)
	})
	if err != nil {
		return nil, err
	}

	metrics.QuotaAllowed(domain.QuotaShops)
	metrics.ShopsCreated.Inc()
	s.logger.Info("shop created", "shop_id", shop.ID, "owner_id", shop.OwnerID, "slug", shop.Slug)
	s.events.publish(ctx, domain.Event{
		Type:    domain.EventShopCreated,
		ShopID:  shop.ID,
		OwnerID: shop.OwnerID,
	})
	return shop, nil
}

func (s *shopService) Get(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	const op = "ShopService.Get"

	shop, err := s.store.GetShop(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "shop", id.String())
	}
	return shop, nil
}

func (s *shopService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Shop, error) {
	const op = "ShopService.ListByOwner"

	shops, err := s.store.ListShopsByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list shops", "error", err, "op", op, "owner_id", ownerID)
		return nil, domain.Internal(err, op, "Failed to list shops")
	}
	return shops, nil
}

func (s *shopService) Moderate(ctx context.Context, id uuid.UUID, action domain.ModerationAction) (*domain.Shop, error) {
	const op = "ShopService.Moderate"

	target, ok := action.Target()
	if !ok {
		return nil, domain.Invalid(op, "Unknown moderation action")
	}

	var shop *domain.Shop
	var from domain.ShopStatus
	err := runTx(ctx, s.store, s.logger, op, "Failed to update shop status", func(tx store.Store) error {
		var err error
		shop, err = tx.LockShop(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				return domain.NotFound(op, "shop", id.String())
			}
			return err
		}
		// reinstate only applies to suspended shops, approve only to pending ones
		if (action == domain.ModerationReinstate && shop.Status != domain.ShopStatusSuspended) ||
			(action == domain.ModerationApprove && shop.Status != domain.ShopStatusPendingApproval) {
			return domain.Conflict(op, "Cannot "+string(action)+" a shop that is "+string(shop.Status))
		}
		from = shop.Status
		if err := shop.TransitionTo(target); err != nil {
			return domain.Conflict(op, err.Error())
		}
		return tx.SetShopStatus(ctx, id, target)
	})
	if err != nil {
		return nil, err
	}

	metrics.ShopTransitioned(target)
	s.logger.Info("shop status changed", "shop_id", id, "from", from, "to", target)
	s.events.publish(ctx, domain.Event{
		Type:       domain.EventShopStatusChanged,
		ShopID:     shop.ID,
		OwnerID:    shop.OwnerID,
		Attributes: map[string]string{"from": string(from), "to": string(target)},
	})
	return shop, nil
}

// slugify lowercases the name and joins its alphanumeric runs with dashes.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "shop"
	}
	if len(slug) > 48 {
		slug = strings.TrimSuffix(slug[:48], "-")
	}
	return slug
}
