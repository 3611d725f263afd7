package auth

import (
	"context"

	"github.com/google/uuid"

	"storefront/internal/model"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Access is the level a route requires.
type Access int

const (
	AccessPublic Access = iota
	AccessUser
	AccessAdmin
)

// Authorize decides whether the caller in ctx satisfies level.
// It returns model.ErrUnauthorised when no principal is present and
// model.ErrForbidden when the principal lacks the role.
func Authorize(ctx context.Context, level Access) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	switch level {
	case AccessPublic:
		return p, nil
	case AccessUser:
		if !ok {
			return Principal{}, model.ErrUnauthorised
		}
		return p, nil
	default:
		if !ok {
			return Principal{}, model.ErrUnauthorised
		}
		if !p.Role.IsAdmin() {
			return p, model.ErrForbidden
		}
		return p, nil
	}
}
