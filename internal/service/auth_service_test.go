package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*MockUserRepository, *auth.TokenManager, AuthService) {
	users := new(MockUserRepository)
	tokens := auth.NewTokenManager("test-secret-that-is-long-enough", 15*time.Minute, 24*time.Hour)
	return users, tokens, NewAuthService(users, tokens, zerolog.Nop())
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	valid := func() *model.RegisterRequest {
		return &model.RegisterRequest{
			Email:     "  Jane@Example.com ",
			Password:  "Sup3r$ecret",
			FirstName: "Jane",
			LastName:  "Doe",
		}
	}

	tests := []struct {
		name    string
		mutate  func(req *model.RegisterRequest)
		repoErr error
		wantErr error
	}{
		{name: "success"},
		{name: "missing email", mutate: func(r *model.RegisterRequest) { r.Email = "" }, wantErr: model.ErrMissingField},
		{name: "bad email", mutate: func(r *model.RegisterRequest) { r.Email = "jane@localhost" }, wantErr: model.ErrValidation},
		{name: "missing first name", mutate: func(r *model.RegisterRequest) { r.FirstName = " " }, wantErr: model.ErrMissingField},
		{name: "weak password", mutate: func(r *model.RegisterRequest) { r.Password = "password" }, wantErr: model.ErrValidation},
		{name: "duplicate email", repoErr: repository.ErrDuplicate, wantErr: model.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, tokens, svc := newAuthFixture()
			users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(tt.repoErr).Maybe()

			req := valid()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			resp, err := svc.Register(ctx, req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "jane@example.com", resp.User.Email)
			assert.Equal(t, model.RoleCustomer, resp.User.Role)
			assert.NotEqual(t, "Sup3r$ecret", resp.User.PasswordHash)
			require.NoError(t, auth.CheckPassword(resp.User.PasswordHash, "Sup3r$ecret"))

			claims, err := tokens.Parse(resp.AccessToken, auth.TokenAccess)
			require.NoError(t, err)
			assert.Equal(t, resp.User.ID.String(), claims.UserID)

			_, err = tokens.Parse(resp.RefreshToken, auth.TokenRefresh)
			require.NoError(t, err)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("Sup3r$ecret")
	require.NoError(t, err)

	user := &model.User{ID: uuid.New(), Email: "jane@example.com", PasswordHash: hash, Role: model.RoleAdmin}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "success", email: "JANE@example.com", password: "Sup3r$ecret"},
		{name: "wrong password", email: "jane@example.com", password: "nope", wantErr: model.ErrBadCredentials},
		{name: "unknown email", email: "who@example.com", password: "Sup3r$ecret", wantErr: model.ErrBadCredentials},
		{name: "empty", wantErr: model.ErrBadCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, tokens, svc := newAuthFixture()
			users.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Maybe()
			users.On("GetByEmail", ctx, "who@example.com").Return(nil, nil).Maybe()

			resp, err := svc.Login(ctx, &model.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			claims, err := tokens.Parse(resp.AccessToken, auth.TokenAccess)
			require.NoError(t, err)
			assert.Equal(t, model.RoleAdmin, claims.Role)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	users, tokens, svc := newAuthFixture()

	user := &model.User{ID: uuid.New(), Email: "jane@example.com", Role: model.RoleCustomer}
	users.On("GetByID", ctx, user.ID).Return(user, nil)

	access, refresh, err := tokens.IssuePair(user)
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)

	_, err = svc.Refresh(ctx, access)
	assert.ErrorIs(t, err, model.ErrUnauthorised)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, model.ErrUnauthorised)
}

func TestAuthService_ProfileAndUsers(t *testing.T) {
	ctx := context.Background()
	users, _, svc := newAuthFixture()

	known, unknown := uuid.New(), uuid.New()
	users.On("GetByID", ctx, known).Return(&model.User{ID: known}, nil)
	users.On("GetByID", ctx, unknown).Return(nil, nil)
	users.On("List", ctx, model.UserFilter{Search: "jane", Limit: 20}).Return([]model.User{{ID: known}}, 1, nil)

	user, err := svc.Profile(ctx, known)
	require.NoError(t, err)
	assert.Equal(t, known, user.ID)

	_, err = svc.Profile(ctx, unknown)
	assert.ErrorIs(t, err, model.ErrNotFound)

	list, err := svc.ListUsers(ctx, model.UserFilter{Search: " jane "})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 20, list.Limit)
}
