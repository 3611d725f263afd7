package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/model"
)

const minPasswordLength = 8

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches hash.
// A mismatch yields model.ErrBadCredentials.
func CheckPassword(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return model.ErrBadCredentials
	}
	return fmt.Errorf("failed to compare password: %w", err)
}

// ValidatePassword enforces the password policy: at least eight characters
// with upper case, lower case, a digit and a special character.
func ValidatePassword(plain string) error {
	if len(plain) < minPasswordLength {
		return model.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}

	var upper, lower, digit, special bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return model.NewValidationError("Password must contain at least one uppercase letter")
	case !lower:
		return model.NewValidationError("Password must contain at least one lowercase letter")
	case !digit:
		return model.NewValidationError("Password must contain at least one number")
	case !special:
		return model.NewValidationError("Password must contain at least one special character")
	}
	return nil
}
