package handler

import (
	"bytes"
	"net/http"
	"strings"

	"storefront/internal/invoice"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), p.UserID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders for the caller's own orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	filter, err := orderFilter(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	filter.UserID = &p.UserID

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.owned(r, ps)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetByNumber handles GET /api/orders/by-number/:number.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByNumberForUser(r.Context(), p.UserID, ps.ByName("number"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Track handles GET /api/orders/:id/track.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	tracking, err := h.service.Track(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tracking)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	order, err := h.service.Cancel(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Invoice handles GET /api/orders/:id/invoice and streams a PDF.
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	order, err := h.owned(r, ps)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := invoice.Render(&buf, order); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", invoice.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename(order)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to write invoice")
	}
}

// AdminList handles GET /api/admin/orders.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := orderFilter(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	filter.Search = strings.TrimSpace(r.URL.Query().Get("search"))

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AdminGet handles GET /api/admin/orders/:id.
func (h *OrderHandler) AdminGet(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/admin/orders/:id/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	var update model.StatusUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, &update, p.Email)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) owned(r *http.Request, ps httprouter.Params) (*model.Order, error) {
	p, err := caller(r)
	if err != nil {
		return nil, err
	}
	id, err := pathID(ps, "id")
	if err != nil {
		return nil, err
	}
	return h.service.GetForUser(r.Context(), p.UserID, id)
}

func orderFilter(r *http.Request) (model.OrderFilter, error) {
	var filter model.OrderFilter
	filter.Limit, filter.Offset = page(r)

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}
