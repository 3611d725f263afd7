package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errInvalidJSON = model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid JSON body")

// statusFor maps a domain error code onto an HTTP status.
var statusFor = map[string]int{
	model.ErrCodeNotFound:          http.StatusNotFound,
	model.ErrCodeOrderNotFound:     http.StatusNotFound,
	model.ErrCodeProductNotFound:   http.StatusNotFound,
	model.ErrCodeCartItemNotFound:  http.StatusNotFound,
	model.ErrCodeInvalidStatus:     http.StatusBadRequest,
	model.ErrCodeIllegalTransition: http.StatusBadRequest,
	model.ErrCodeInsufficientStock: http.StatusBadRequest,
	model.ErrCodeCartEmpty:         http.StatusBadRequest,
	model.ErrCodeMissingField:      http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:   http.StatusBadRequest,
	model.ErrCodeInvalidPromoCode:  http.StatusBadRequest,
	model.ErrCodeValidationFailed:  http.StatusBadRequest,
	model.ErrCodeInvalidJSON:       http.StatusBadRequest,
	model.ErrCodeUnauthorised:      http.StatusUnauthorized,
	model.ErrCodeForbidden:         http.StatusForbidden,
	model.ErrCodeConflict:          http.StatusConflict,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError translates err into a JSON error response. Domain errors carry
// their code and details; anything else is logged and reported as a 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		status, ok := statusFor[de.Code]
		if ok {
			logger.Debug().Str("code", de.Code).Int("status", status).Msg("request rejected")
			writeJSON(w, status, model.ErrorResponse{Error: de.Message, Code: de.Code, Details: de.Details})
			return
		}
	}

	logger.Error().Err(err).Msg("handler error")

	resp := model.ErrorResponse{Error: "Internal server error", Code: model.ErrCodeInternalError}
	if de != nil {
		resp = model.ErrorResponse{Error: de.Message, Code: de.Code}
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// pathID parses a UUID route parameter.
func pathID(ps httprouter.Params, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ps.ByName(name))
	if err != nil {
		return uuid.Nil, model.NewValidationError("Invalid " + name + " format")
	}
	return id, nil
}

// caller returns the authenticated principal put in place by the route guard.
func caller(r *http.Request) (auth.Principal, error) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, model.ErrUnauthorised
	}
	return p, nil
}

// page reads limit and offset query parameters. Missing or malformed values are
// left at zero so that the service applies its defaults.
func page(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 && offset == 0 {
		size := limit
		if size <= 0 {
			size = 20
		}
		offset = (p - 1) * size
	}
	return limit, offset
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
