package handler

import (
	"net/http"

	"github.com/DukeRupert/bazaar/internal/auth"
	"github.com/DukeRupert/bazaar/internal/domain"
)

// CreateItem adds a product or service to the shop, optionally on a shelf.
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeShop(r.Context(), auth.GetActorFromRequest(r), shopID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	item, err := h.items.Create(r.Context(), domain.CreateItemParams{
		Kind:    domain.ItemKind(req.Kind),
		ShopID:  shopID,
		ShelfID: req.ShelfID,
		ItemDetails: domain.ItemDetails{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Currency:    req.Currency,
			MediaRefs:   req.MediaRefs,
			Tags:        req.Tags,
			Attributes:  req.Attributes,
		},
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// ListUnplacedItems returns the shop's items that sit on no shelf.
func (h *InventoryHandler) ListUnplacedItems(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	items, err := h.items.ListUnplaced(r.Context(), shopID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toItemsResponse(items)})
}

// GetItem returns one item.
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// UpdateItem changes descriptive fields of an item.
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeItem(r.Context(), auth.GetActorFromRequest(r), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	item, err := h.items.Update(r.Context(), domain.UpdateItemParams{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		MediaRefs:   req.MediaRefs,
		Tags:        req.Tags,
		Attributes:  req.Attributes,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// DeleteItem removes an item and unlinks it from its shelf.
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeItem(r.Context(), auth.GetActorFromRequest(r), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveItem re-creates the item on another shelf of its shop, or unplaced.
func (h *InventoryHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req moveItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if _, err := h.authorizeItem(r.Context(), auth.GetActorFromRequest(r), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	item, err := h.items.Move(r.Context(), id, req.ShelfID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}
