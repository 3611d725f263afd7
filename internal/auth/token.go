package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/internal/model"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// ErrInvalidToken is returned for malformed, expired, or mistyped tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued to users.
type Claims struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	Type   TokenType  `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair returns a fresh access and refresh token for user.
func (m *TokenManager) IssuePair(user *model.User) (access, refresh string, err error) {
	access, err = m.issue(user, TokenAccess, m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.issue(user, TokenRefresh, m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// IssueAccess returns a fresh access token for user.
func (m *TokenManager) IssueAccess(user *model.User) (string, error) {
	return m.issue(user, TokenAccess, m.accessTTL)
}

func (m *TokenManager) issue(user *model.User, typ TokenType, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse verifies tokenString and checks that it is of type want.
func (m *TokenManager) Parse(tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	return claims, nil
}

// Principal converts verified claims into a request principal.
func (c *Claims) Principal() (Principal, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return Principal{UserID: id, Email: c.Email, Role: c.Role}, nil
}
