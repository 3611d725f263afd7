package handler

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// AuthHandler handles account HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new account handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from the
// body, or from the Authorization header when the body carries none.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RefreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err, h.logger)
			return
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	}
	if req.RefreshToken == "" {
		writeError(w, model.NewMissingField("refresh_token"), h.logger)
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p, err := caller(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.service.Profile(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// Users handles GET /api/admin/users.
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset := page(r)
	filter := model.UserFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := model.Role(strings.ToLower(raw))
		filter.Role = &role
	}

	list, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
