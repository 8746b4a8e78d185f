package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handler) listShopItems(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	items, err := h.Shop.Items(ctx, uid)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *handler) purchaseShopItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	p, err := h.Shop.Purchase(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
