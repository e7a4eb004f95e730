// Package handler contains the HTTP handlers of the inventory API.
//
// Routes:
//   - GET  /api/tiers                     -> ListTiers
//   - PUT  /api/admin/tiers/{name}        -> UpsertTier (admin)
//   - GET  /api/me                        -> Me
//   - PUT  /api/admin/accounts/{id}/tier  -> ChangeTier (admin)
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/bazaar/internal/auth"
	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/service"
)

// AccountHandler serves the subscription catalog and account endpoints.
type AccountHandler struct {
	catalog  service.CatalogService
	accounts service.AccountService
	quota    service.QuotaService
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	catalog service.CatalogService,
	accounts service.AccountService,
	quota service.QuotaService,
	logger *slog.Logger,
) *AccountHandler {
	return &AccountHandler{
		catalog:  catalog,
		accounts: accounts,
		quota:    quota,
		logger:   logger,
	}
}

// RegisterRoutes registers catalog and account routes with the provided middleware.
func (h *AccountHandler) RegisterRoutes(
	mux *http.ServeMux,
	requireActor func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	mux.Handle("GET /api/tiers", requireActor(http.HandlerFunc(h.ListTiers)))
	mux.Handle("GET /api/me", requireActor(http.HandlerFunc(h.Me)))
	mux.Handle("PUT /api/admin/tiers/{name}", requireAdmin(http.HandlerFunc(h.UpsertTier)))
	mux.Handle("PUT /api/admin/accounts/{id}/tier", requireAdmin(http.HandlerFunc(h.ChangeTier)))
}

// ListTiers returns the subscription catalog.
func (h *AccountHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.catalog.List(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]tierResponse, len(tiers))
	for i, t := range tiers {
		out[i] = toTierResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tiers": out})
}

// UpsertTier creates or replaces a tier.
func (h *AccountHandler) UpsertTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	tier, err := h.catalog.Upsert(r.Context(), domain.SubscriptionTier{
		Name:              r.PathValue("name"),
		DisplayName:       req.DisplayName,
		MaxShops:          req.MaxShops,
		MaxShelvesPerShop: req.MaxShelvesPerShop,
		MaxItemsPerShelf:  req.MaxItemsPerShelf,
		IsActive:          req.IsActive,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTierResponse(*tier))
}

// Me returns the caller's account and quota usage.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetActorFromRequest(r)

	usage, err := h.quota.Usage(r.Context(), actor.Account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Account: toAccountResponse(actor.Account),
		IsAdmin: actor.IsAdmin,
		Usage:   toUsageResponse(usage),
	})
}

// ChangeTier moves an account to another tier.
func (h *AccountHandler) ChangeTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req changeTierRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.ChangeTier(r.Context(), id, req.Tier)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}
