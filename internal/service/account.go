package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/store"
	"github.com/google/uuid"
)

// AccountService maps external identities onto accounts and assigns tiers.
type AccountService interface {
	// Resolve returns the account for an identity-provider subject,
	// creating it with the default tier on first access.
	Resolve(ctx context.Context, subject string) (*domain.Account, error)

	// GetByID retrieves an account.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// ChangeTier points the account at another tier. Existing shops, shelves
	// and items are kept even when they exceed the new caps.
	ChangeTier(ctx context.Context, id uuid.UUID, tierName string) (*domain.Account, error)
}

type accountService struct {
	store       store.Store
	catalog     CatalogService
	defaultTier string
	logger      *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(st store.Store, catalog CatalogService, defaultTier string, logger *slog.Logger) AccountService {
	return &accountService{
		store:       st,
		catalog:     catalog,
		defaultTier: defaultTier,
		logger:      logger,
	}
}

func (s *accountService) Resolve(ctx context.Context, subject string) (*domain.Account, error) {
	const op = "AccountService.Resolve"

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, domain.Unauthorized(op, "Missing identity")
	}

	account, err := s.store.GetAccountBySubject(ctx, subject)
	if err == nil {
		return account, nil
	}
	if !store.IsNotFound(err) {
		return nil, lookupErr(s.logger, err, op, "account", subject)
	}

	tier, err := s.catalog.Get(ctx, s.defaultTier)
	if err != nil {
		return nil, err
	}
	if !tier.IsActive {
		s.logger.Warn("default tier is inactive", "op", op, "tier", tier.Name)
		return nil, domain.Conflict(op, "Tier "+tier.Label()+" is not available")
	}

	now := time.Now().UTC()
	account = &domain.Account{
		ID:        uuid.New(),
		Subject:   subject,
		TierName:  tier.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		// A concurrent first request may have created it.
		if domain.IsCode(err, domain.ECONFLICT) {
			existing, getErr := s.store.GetAccountBySubject(ctx, subject)
			if getErr == nil {
				return existing, nil
			}
		}
		s.logger.Error("failed to create account", "error", err, "op", op)
		return nil, domain.Internal(err, op, "Failed to create account")
	}

	s.logger.Info("account created", "account_id", account.ID, "tier", account.TierName)
	return account, nil
}

func (s *accountService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const op = "AccountService.GetByID"

	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "account", id.String())
	}
	return account, nil
}

func (s *accountService) ChangeTier(ctx context.Context, id uuid.UUID, tierName string) (*domain.Account, error) {
	const op = "AccountService.ChangeTier"

	tier, err := s.catalog.Get(ctx, strings.TrimSpace(tierName))
	if err != nil {
		return nil, err
	}
	if !tier.IsActive {
		return nil, domain.Conflict(op, "Tier "+tier.Label()+" is not available")
	}

	if err := s.store.SetAccountTier(ctx, id, tier.Name); err != nil {
		return nil, lookupErr(s.logger, err, op, "account", id.String())
	}

	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, op, "account", id.String())
	}

	s.logger.Info("account tier changed", "account_id", id, "tier", tier.Name)
	return account, nil
}
