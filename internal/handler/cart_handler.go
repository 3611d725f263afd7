package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests. Every route requires a signed-in user.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// Add handles POST /api/cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.Add(r.Context(), p.UserID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT /api/cart/update/:id.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	id, err := pathID(ps, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.Update(r.Context(), p.UserID, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Remove handles DELETE /api/cart/remove/:id.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	id, err := pathID(ps, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Remove(r.Context(), p.UserID, id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// Clear handles DELETE /api/cart/clear.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), p.UserID); err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// Count handles GET /api/cart/count.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	n, err := h.service.Count(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Validate handles POST /api/cart/validate.
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	result, err := h.service.Validate(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
