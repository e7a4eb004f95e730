package handler

import (
	"net/http"

	"github.com/DukeRupert/bazaar/internal/auth"
	"github.com/DukeRupert/bazaar/internal/domain"
)

// CreateShelf appends a shelf to the shop.
func (h *InventoryHandler) CreateShelf(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createShelfRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeShop(r.Context(), auth.GetActorFromRequest(r), shopID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shelf, err := h.shelves.Create(r.Context(), domain.CreateShelfParams{
		ShopID:      shopID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShelfResponse(shelf))
}

// ListShelves returns the shop's shelves in display order.
func (h *InventoryHandler) ListShelves(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shelves, err := h.shelves.List(r.Context(), shopID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shelves": toShelvesResponse(shelves)})
}

// ReorderShelves assigns new positions to shelves of the shop.
func (h *InventoryHandler) ReorderShelves(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req reorderShelvesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeShop(r.Context(), auth.GetActorFromRequest(r), shopID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	positions := make([]domain.ShelfPosition, len(req.Positions))
	for i, p := range req.Positions {
		positions[i] = domain.ShelfPosition{ShelfID: p.ShelfID, NewOrder: p.NewOrder}
	}

	shelves, err := h.shelves.Reorder(r.Context(), shopID, positions)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shelves": toShelvesResponse(shelves)})
}

// UpdateShelf renames or re-describes a shelf.
func (h *InventoryHandler) UpdateShelf(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateShelfRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeShelf(r.Context(), auth.GetActorFromRequest(r), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	shelf, err := h.shelves.Update(r.Context(), domain.UpdateShelfParams{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toShelfResponse(shelf))
}

// DeleteShelf removes an empty shelf.
func (h *InventoryHandler) DeleteShelf(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeShelf(r.Context(), auth.GetActorFromRequest(r), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.shelves.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListShelfItems returns the shelf's items in display order.
func (h *InventoryHandler) ListShelfItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	items, err := h.items.ListByShelf(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toItemsResponse(items)})
}
