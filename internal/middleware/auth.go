package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// UserLookup loads the current state of an account.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Auth guards routes with bearer access tokens. Admin routes re-read the
// caller's role from users so a demotion takes effect before the token expires.
type Auth struct {
	tokens *auth.TokenManager
	users  UserLookup
	logger zerolog.Logger
}

// NewAuth creates the route guards.
func NewAuth(tokens *auth.TokenManager, users UserLookup, logger zerolog.Logger) *Auth {
	return &Auth{
		tokens: tokens,
		users:  users,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// RequireUser admits any signed-in user.
func (a *Auth) RequireUser(next httprouter.Handle) httprouter.Handle {
	return a.require(auth.AccessUser, next)
}

// RequireAdmin admits admins and super admins.
func (a *Auth) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return a.require(auth.AccessAdmin, next)
}

// Optional attaches the principal when a valid token is present and
// proceeds either way.
func (a *Auth) Optional(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if token, ok := bearerToken(r); ok {
			if principal, err := a.principal(token); err == nil {
				r = r.WithContext(auth.WithPrincipal(r.Context(), principal))
			}
		}
		next(w, r, ps)
	}
}

func (a *Auth) require(level auth.Access, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := r.Context()
		if token, ok := bearerToken(r); ok {
			principal, err := a.principal(token)
			switch {
			case err != nil:
				a.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected token")
			case level == auth.AccessAdmin:
				current, found, err := a.reload(ctx, principal)
				if err != nil {
					writeError(w, http.StatusInternalServerError, model.ErrorResponse{
						Error: "Internal server error",
						Code:  model.ErrCodeInternalError,
					})
					return
				}
				if found {
					ctx = auth.WithPrincipal(ctx, current)
				}
			default:
				ctx = auth.WithPrincipal(ctx, principal)
			}
		}

		if _, err := auth.Authorize(ctx, level); err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, model.ErrForbidden) {
				status = http.StatusForbidden
				a.logger.Warn().Str("path", r.URL.Path).Msg("admin route refused")
			}
			var de *model.DomainError
			errors.As(err, &de)
			writeError(w, status, model.ErrorResponse{Error: de.Message, Code: de.Code})
			return
		}

		next(w, r.WithContext(ctx), ps)
	}
}

// reload replaces the role and email carried by the token with the stored
// ones. found is false when the account no longer exists.
func (a *Auth) reload(ctx context.Context, p auth.Principal) (auth.Principal, bool, error) {
	user, err := a.users.GetByID(ctx, p.UserID)
	if err != nil {
		a.logger.Error().Err(err).Str("user_id", p.UserID.String()).Msg("failed to load user for admin check")
		return auth.Principal{}, false, err
	}
	if user == nil {
		a.logger.Warn().Str("user_id", p.UserID.String()).Msg("token for deleted account")
		return auth.Principal{}, false, nil
	}
	if user.Role != p.Role {
		a.logger.Info().
			Str("user_id", p.UserID.String()).
			Str("token_role", string(p.Role)).
			Str("stored_role", string(user.Role)).
			Msg("role changed since token issue")
	}
	p.Role = user.Role
	p.Email = user.Email
	return p, true, nil
}

func (a *Auth) principal(token string) (auth.Principal, error) {
	claims, err := a.tokens.Parse(token, auth.TokenAccess)
	if err != nil {
		return auth.Principal{}, err
	}
	return claims.Principal()
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
