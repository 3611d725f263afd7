package handler

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// AppointmentHandler handles booking HTTP requests.
type AppointmentHandler struct {
	service service.AppointmentService
	logger  zerolog.Logger
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(service service.AppointmentService, logger zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		logger:  logger.With().Str("handler", "appointment").Logger(),
	}
}

// Create handles POST /api/appointments. Guests may book without signing in.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	var userID *uuid.UUID
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		userID = &p.UserID
	}

	appt, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// List handles GET /api/appointments.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	filter := appointmentFilter(r)
	filter.UserID = &p.UserID

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/appointments/:id.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	appt, err := h.service.GetForUser(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Update handles PUT /api/appointments/:id.
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	var update model.AppointmentUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, err, h.logger)
		return
	}

	appt, err := h.service.Update(r.Context(), p.UserID, id, &update)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Cancel handles DELETE /api/appointments/:id.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	appt, err := h.service.Cancel(r.Context(), p.UserID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// AdminList handles GET /api/admin/appointments.
func (h *AppointmentHandler) AdminList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := h.service.List(r.Context(), appointmentFilter(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SetStatus handles PUT /api/admin/appointments/:id/status.
func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.AppointmentStatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, model.NewMissingField("status"), h.logger)
		return
	}

	appt, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func appointmentFilter(r *http.Request) model.AppointmentFilter {
	var filter model.AppointmentFilter
	filter.Limit, filter.Offset = page(r)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.AppointmentStatus(raw)
		filter.Status = &status
	}
	return filter
}
