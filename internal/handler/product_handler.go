package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, true)
}

// AdminList handles GET /api/admin/products, which includes inactive products.
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, false)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	limit, offset := page(r)
	list, err := h.service.List(r.Context(), model.ProductFilter{
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: activeOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Get(r.Context(), id, true)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/admin/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input model.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &input)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/admin/products/:id.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var input model.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &input)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// LowStock handles GET /api/admin/products/low-stock.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.service.LowStock(r.Context(), limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}
