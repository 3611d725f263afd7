package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/service"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the admin overview.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Get handles GET /api/admin/dashboard?days=N.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	dashboard, err := h.service.Get(r.Context(), days)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
