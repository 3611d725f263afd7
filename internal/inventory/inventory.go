// Package inventory applies stock movements caused by order lifecycle
// transitions. Movements are plain additions and subtractions executed inside
// the caller's transaction; products that do not track inventory are skipped.
package inventory

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Level is the stock position of a product or variant as seen inside a transaction.
type Level struct {
	Found    bool
	Tracked  bool
	Quantity int
}

// Store reads and moves stock counters. Variant levels report the parent
// product's tracking flag.
type Store interface {
	ProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (Level, error)
	VariantStock(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (Level, error)
	AdjustProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, delta int) error
	AdjustVariantStock(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, delta int) error
}

// Adjuster moves stock for the lines of an order.
type Adjuster interface {
	// Reserve decrements stock for every tracked line. A line whose stock
	// cannot cover its quantity is reported as a shortfall and left untouched.
	Reserve(ctx context.Context, tx pgx.Tx, items []model.OrderItem) ([]Shortfall, error)

	// Restore increments stock for every tracked line.
	Restore(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error
}

// Shortfall describes a line that could not be decremented.
type Shortfall struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Requested int
	Available int
}

type adjuster struct {
	store  Store
	logger zerolog.Logger
}

// NewAdjuster creates an Adjuster backed by store.
func NewAdjuster(store Store, logger zerolog.Logger) Adjuster {
	return &adjuster{
		store:  store,
		logger: logger.With().Str("component", "inventory").Logger(),
	}
}

func (a *adjuster) Reserve(ctx context.Context, tx pgx.Tx, items []model.OrderItem) ([]Shortfall, error) {
	var shortfalls []Shortfall

	for _, item := range items {
		level, err := a.store.ProductStock(ctx, tx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock for product %s: %w", item.ProductID, err)
		}
		if !level.Found || !level.Tracked {
			continue
		}

		if level.Quantity >= item.Quantity {
			if err := a.store.AdjustProductStock(ctx, tx, item.ProductID, -item.Quantity); err != nil {
				return nil, fmt.Errorf("failed to reduce stock for product %s: %w", item.ProductID, err)
			}
			a.logger.Info().
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("reduced product stock")
		} else {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: level.Quantity,
			})
			a.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Int("requested", item.Quantity).
				Int("available", level.Quantity).
				Msg("insufficient product stock, line not reduced")
		}

		if item.ProductVariantID == nil {
			continue
		}

		variant, err := a.store.VariantStock(ctx, tx, *item.ProductVariantID)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock for variant %s: %w", item.ProductVariantID, err)
		}
		if !variant.Found {
			continue
		}

		if variant.Quantity >= item.Quantity {
			if err := a.store.AdjustVariantStock(ctx, tx, *item.ProductVariantID, -item.Quantity); err != nil {
				return nil, fmt.Errorf("failed to reduce stock for variant %s: %w", item.ProductVariantID, err)
			}
		} else {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: item.ProductID,
				VariantID: item.ProductVariantID,
				Requested: item.Quantity,
				Available: variant.Quantity,
			})
			a.logger.Warn().
				Str("variant_id", item.ProductVariantID.String()).
				Int("requested", item.Quantity).
				Int("available", variant.Quantity).
				Msg("insufficient variant stock, line not reduced")
		}
	}

	return shortfalls, nil
}

func (a *adjuster) Restore(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	for _, item := range items {
		level, err := a.store.ProductStock(ctx, tx, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to read stock for product %s: %w", item.ProductID, err)
		}
		if !level.Found || !level.Tracked {
			continue
		}

		if err := a.store.AdjustProductStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock for product %s: %w", item.ProductID, err)
		}
		a.logger.Info().
			Str("product_id", item.ProductID.String()).
			Int("quantity", item.Quantity).
			Msg("restored product stock")

		if item.ProductVariantID == nil {
			continue
		}

		variant, err := a.store.VariantStock(ctx, tx, *item.ProductVariantID)
		if err != nil {
			return fmt.Errorf("failed to read stock for variant %s: %w", item.ProductVariantID, err)
		}
		if !variant.Found {
			continue
		}
		if err := a.store.AdjustVariantStock(ctx, tx, *item.ProductVariantID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock for variant %s: %w", item.ProductVariantID, err)
		}
	}

	return nil
}
