package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/bazaar/internal/auth"
	"github.com/DukeRupert/bazaar/internal/domain"
	"github.com/DukeRupert/bazaar/internal/service"
	"github.com/google/uuid"
)

// InventoryHandler serves shops, shelves and items.
//
// Reads require an identity; mutations additionally require that the caller
// owns the shop, unless the caller is an admin.
type InventoryHandler struct {
	shops     service.ShopService
	shelves   service.ShelfService
	items     service.ItemService
	reconcile service.ReconcileService
	logger    *slog.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(
	shops service.ShopService,
	shelves service.ShelfService,
	items service.ItemService,
	reconcile service.ReconcileService,
	logger *slog.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		shops:     shops,
		shelves:   shelves,
		items:     items,
		reconcile: reconcile,
		logger:    logger,
	}
}

// RegisterRoutes registers inventory routes with the provided middleware.
func (h *InventoryHandler) RegisterRoutes(
	mux *http.ServeMux,
	requireActor func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	// Shops
	mux.Handle("POST /api/shops", requireActor(http.HandlerFunc(h.CreateShop)))
	mux.Handle("GET /api/shops", requireActor(http.HandlerFunc(h.ListShops)))
	mux.Handle("GET /api/shops/{id}", requireActor(http.HandlerFunc(h.GetShop)))
	mux.Handle("POST /api/admin/shops/{id}/reconcile", requireAdmin(http.HandlerFunc(h.ReconcileShop)))
	mux.Handle("POST /api/admin/shops/{id}/{action}", requireAdmin(http.HandlerFunc(h.ModerateShop)))

	// Shelves
	mux.Handle("POST /api/shops/{id}/shelves", requireActor(http.HandlerFunc(h.CreateShelf)))
	mux.Handle("GET /api/shops/{id}/shelves", requireActor(http.HandlerFunc(h.ListShelves)))
	mux.Handle("PUT /api/shops/{id}/shelves/order", requireActor(http.HandlerFunc(h.ReorderShelves)))
	mux.Handle("PATCH /api/shelves/{id}", requireActor(http.HandlerFunc(h.UpdateShelf)))
	mux.Handle("DELETE /api/shelves/{id}", requireActor(http.HandlerFunc(h.DeleteShelf)))
	mux.Handle("GET /api/shelves/{id}/items", requireActor(http.HandlerFunc(h.ListShelfItems)))

	// Items
	mux.Handle("POST /api/shops/{id}/items", requireActor(http.HandlerFunc(h.CreateItem)))
	mux.Handle("GET /api/shops/{id}/items/unplaced", requireActor(http.HandlerFunc(h.ListUnplacedItems)))
	mux.Handle("GET /api/items/{id}", requireActor(http.HandlerFunc(h.GetItem)))
	mux.Handle("PATCH /api/items/{id}", requireActor(http.HandlerFunc(h.UpdateItem)))
	mux.Handle("DELETE /api/items/{id}", requireActor(http.HandlerFunc(h.DeleteItem)))
	mux.Handle("POST /api/items/{id}/move", requireActor(http.HandlerFunc(h.MoveItem)))
}

// =============================================================================
// Ownership Checks
// =============================================================================

// authorizeShop loads the shop and checks the caller may mutate it.
func (h *InventoryHandler) authorizeShop(ctx context.Context, actor *domain.Actor, shopID uuid.UUID) (*domain.Shop, error) {
	const op = "InventoryHandler.authorizeShop"

	shop, err := h.shops.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.CanManage(shop.OwnerID) {
		h.logger.Warn("inventory mutation denied",
			"op", op,
			"shop_id", shopID,
			"owner_id", shop.OwnerID,
		)
		return nil, domain.Forbidden(op, "You don't own this shop")
	}
	return shop, nil
}

// authorizeShelf resolves the shelf's shop and checks ownership.
func (h *InventoryHandler) authorizeShelf(ctx context.Context, actor *domain.Actor, shelfID uuid.UUID) (*domain.Shelf, error) {
	shelf, err := h.shelves.Get(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if _, err := h.authorizeShop(ctx, actor, shelf.ShopID); err != nil {
		return nil, err
	}
	return shelf, nil
}

// authorizeItem resolves the item's shop and checks ownership.
func (h *InventoryHandler) authorizeItem(ctx context.Context, actor *domain.Actor, itemID uuid.UUID) (*domain.Item, error) {
	item, err := h.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := h.authorizeShop(ctx, actor, item.ShopID); err != nil {
		return nil, err
	}
	return item, nil
}

// =============================================================================
// Shops
// =============================================================================

// CreateShop opens a shop owned by the caller.
func (h *InventoryHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetActorFromRequest(r)

	var req createShopRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shop, err := h.shops.Create(r.Context(), domain.CreateShopParams{
		OwnerID:     actor.Account.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShopResponse(shop))
}

// ListShops returns the caller's shops.
func (h *InventoryHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	actor := auth.GetActorFromRequest(r)

	shops, err := h.shops.ListByOwner(r.Context(), actor.Account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]shopResponse, len(shops))
	for i := range shops {
		out[i] = toShopResponse(&shops[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"shops": out})
}

// GetShop returns one shop.
func (h *InventoryHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shop, err := h.shops.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toShopResponse(shop))
}

// ModerateShop applies approve, reject, suspend or reinstate.
func (h *InventoryHandler) ModerateShop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shop, err := h.shops.Moderate(r.Context(), id, domain.ModerationAction(r.PathValue("action")))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toShopResponse(shop))
}

// ReconcileShop runs the consistency sweep for one shop.
func (h *InventoryHandler) ReconcileShop(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	report, err := h.reconcile.Shop(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
