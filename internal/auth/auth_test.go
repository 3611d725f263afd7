package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "valid", password: "Secr3t!pass"},
		{name: "too short", password: "Ab1!", wantErr: "at least 8"},
		{name: "no upper", password: "secr3t!pass", wantErr: "uppercase"},
		{name: "no lower", password: "SECR3T!PASS", wantErr: "lowercase"},
		{name: "no digit", password: "Secret!pass", wantErr: "number"},
		{name: "no special", password: "Secr3tpass", wantErr: "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secr3t!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!pass", hash)

	assert.NoError(t, CheckPassword(hash, "Secr3t!pass"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), model.ErrBadCredentials)
	assert.Error(t, CheckPassword("not-a-hash", "Secr3t!pass"))
}

func testUser(role model.Role) *model.User {
	return &model.User{ID: uuid.New(), Email: "jane@example.com", Role: role}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 24*time.Hour)
	user := testUser(model.RoleAdmin)

	access, refresh, err := m.IssuePair(user)
	require.NoError(t, err)

	claims, err := m.Parse(access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	p, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)

	_, err = m.Parse(refresh, TokenRefresh)
	require.NoError(t, err)
}

func TestTokenManager_Parse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, 24*time.Hour)
	user := testUser(model.RoleCustomer)

	access, refresh, err := m.IssuePair(user)
	require.NoError(t, err)

	expired := NewTokenManager("test-secret", time.Hour, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.IssueAccess(user)
	require.NoError(t, err)

	other := NewTokenManager("other-secret", time.Hour, time.Hour)
	foreign, err := other.IssueAccess(user)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: user.ID.String(), Type: TokenAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  TokenType
	}{
		{name: "refresh used as access", token: refresh, want: TokenAccess},
		{name: "access used as refresh", token: access, want: TokenRefresh},
		{name: "expired", token: stale, want: TokenAccess},
		{name: "wrong secret", token: foreign, want: TokenAccess},
		{name: "unsigned", token: none, want: TokenAccess},
		{name: "garbage", token: "not.a.token", want: TokenAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token, tt.want)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthorize(t *testing.T) {
	customer := Principal{UserID: uuid.New(), Role: model.RoleCustomer}
	admin := Principal{UserID: uuid.New(), Role: model.RoleSuperAdmin}

	tests := []struct {
		name      string
		principal *Principal
		level     Access
		wantErr   error
	}{
		{name: "public anonymous", level: AccessPublic},
		{name: "user anonymous", level: AccessUser, wantErr: model.ErrUnauthorised},
		{name: "user customer", principal: &customer, level: AccessUser},
		{name: "admin anonymous", level: AccessAdmin, wantErr: model.ErrUnauthorised},
		{name: "admin customer", principal: &customer, level: AccessAdmin, wantErr: model.ErrForbidden},
		{name: "admin super admin", principal: &admin, level: AccessAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.principal != nil {
				ctx = WithPrincipal(ctx, *tt.principal)
			}

			p, err := Authorize(ctx, tt.level)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.principal != nil {
				assert.Equal(t, tt.principal.UserID, p.UserID)
			}
		})
	}
}
