// Package promo validates checkout promo codes against gzipped code lists and
// prices the discount they grant.
package promo

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
)

// Book validates promo codes and reports the discount they grant.
type Book interface {
	// Discount returns the percentage of the subtotal taken off by code.
	// Unknown codes yield model.ErrInvalidPromoCode.
	Discount(ctx context.Context, code string) (decimal.Decimal, error)

	// Close releases resources held by the book.
	Close() error
}

// CodeSet is a read-only set of promo codes.
type CodeSet interface {
	// Contains checks if a code exists in the set.
	Contains(code string) bool

	// Size returns the number of codes in the set.
	Size() int
}

// Source opens a named, gzipped, newline separated code list.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
