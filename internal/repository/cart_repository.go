package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const cartSelect = `
	SELECT c.id, c.user_id, c.product_id, c.product_variant_id, c.prescription_id, c.quantity,
		c.unit_price, c.special_instructions, c.created_at, c.updated_at,
		p.name, COALESCE(v.sku, p.sku), p.is_active AND COALESCE(v.is_active, TRUE),
		p.track_inventory, COALESCE(v.stock_quantity, p.stock_quantity)
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	LEFT JOIN product_variants v ON v.id = c.product_variant_id
`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func scanCartItem(row pgx.Row) (*model.CartItem, error) {
	var c model.CartItem
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.ProductID,
		&c.ProductVariantID,
		&c.PrescriptionID,
		&c.Quantity,
		&c.UnitPrice,
		&c.SpecialInstructions,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ProductName,
		&c.ProductSKU,
		&c.ProductActive,
		&c.TrackInventory,
		&c.StockQuantity,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List retrieves the user's cart lines, oldest first.
func (r *cartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx, cartSelect+` WHERE c.user_id = $1 ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetByID retrieves one of the user's cart lines.
func (r *cartRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.CartItem, error) {
	item, err := scanCartItem(r.pool.QueryRow(ctx, cartSelect+` WHERE c.user_id = $1 AND c.id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	return item, nil
}

// FindLine retrieves the line with the same product, variant and prescription.
func (r *cartRepository) FindLine(ctx context.Context, userID, productID uuid.UUID, variantID, prescriptionID *uuid.UUID) (*model.CartItem, error) {
	query := cartSelect + `
		WHERE c.user_id = $1
			AND c.product_id = $2
			AND c.product_variant_id IS NOT DISTINCT FROM $3
			AND c.prescription_id IS NOT DISTINCT FROM $4
	`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, userID, productID, variantID, prescriptionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query cart line")
		return nil, fmt.Errorf("failed to query cart line: %w", err)
	}
	return item, nil
}

// Create inserts a new cart line.
func (r *cartRepository) Create(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, product_variant_id, prescription_id,
			quantity, unit_price, special_instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.UserID, item.ProductID, item.ProductVariantID, item.PrescriptionID,
		item.Quantity, item.UnitPrice, item.SpecialInstructions, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", item.UserID.String()).Msg("failed to create cart item")
		return fmt.Errorf("failed to create cart item: %w", err)
	}

	return nil
}

// Update persists quantity and special instructions of a line.
func (r *cartRepository) Update(ctx context.Context, item *model.CartItem) error {
	query := `
		UPDATE cart_items
		SET quantity = $3, special_instructions = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`

	_, err := r.pool.Exec(ctx, query, item.ID, item.UserID, item.Quantity, item.SpecialInstructions, item.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", item.ID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return nil
}

// Delete removes one of the user's lines.
func (r *cartRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to delete cart item")
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Clear removes all of the user's lines.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Count returns the number of lines in the user's cart.
func (r *cartRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

// DeleteItems removes the given lines within the provided transaction.
func (r *cartRepository) DeleteItems(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Int("count", len(ids)).Msg("failed to delete cart items")
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	if tag.RowsAffected() != int64(len(ids)) {
		r.logger.Warn().
			Str("user_id", userID.String()).
			Int("expected", len(ids)).
			Int64("deleted", tag.RowsAffected()).
			Msg("cart lines already removed")
		return ErrCartChanged
	}

	return nil
}
