package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   zerolog.Logger
}

// NewAuthService creates a new account service.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates a customer account and signs it in.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, model.ErrValidation
	}

	email, err := normaliseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, model.NewMissingField("first_name")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, model.NewMissingField("last_name")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         model.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflict("Email already registered")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.signIn(user)
}

// Login verifies credentials and issues tokens.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, model.ErrBadCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, model.ErrBadCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, model.ErrBadCredentials) {
			s.logger.Warn().Str("user_id", user.ID.String()).Msg("failed login attempt")
		}
		return nil, err
	}

	return s.signIn(user)
}

// Refresh exchanges a refresh token for a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, model.ErrUnauthorised
	}
	principal, err := claims.Principal()
	if err != nil {
		return nil, model.ErrUnauthorised
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, AccessToken: access}, nil
}

// Profile returns the user's account.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrNotFound
	}
	return user, nil
}

// ListUsers retrieves a page of accounts.
func (s *authService) ListUsers(ctx context.Context, filter model.UserFilter) (*model.UserList, error) {
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &model.UserList{Users: users, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *authService) signIn(user *model.User) (*model.AuthResponse, error) {
	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// normaliseEmail validates and lower-cases an email address.
func normaliseEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", model.NewMissingField("email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", model.NewValidationError("Invalid email format")
	}
	return email, nil
}
