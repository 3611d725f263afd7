package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/inventory"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, sku, name, description, price, stock_quantity, track_inventory,
	low_stock_threshold, is_active, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.TrackInventory,
		&p.LowStockThreshold,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List retrieves a page of products with optional search and active filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	var (
		conds []string
		args  []any
	)

	if filter.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetVariants retrieves the variants of a product ordered by name.
func (r *productRepository) GetVariants(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	query := `
		SELECT id, product_id, sku, name, price, stock_quantity, is_active
		FROM product_variants
		WHERE product_id = $1
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	variants := []model.ProductVariant{}
	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Price, &v.StockQuantity, &v.IsActive); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// GetVariant retrieves a single variant by its ID.
func (r *productRepository) GetVariant(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	query := `
		SELECT id, product_id, sku, name, price, stock_quantity, is_active
		FROM product_variants
		WHERE id = $1
	`

	var v model.ProductVariant
	err := r.pool.QueryRow(ctx, query, id).Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Price, &v.StockQuantity, &v.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id.String()).Msg("failed to query variant")
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}

	return &v, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.StockQuantity, p.TrackInventory,
		p.LowStockThreshold, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error().Err(err).Str("sku", p.SKU).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created successfully")
	return nil
}

// Update persists every mutable field of a product.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET sku = $2, name = $3, description = $4, price = $5, stock_quantity = $6,
			track_inventory = $7, low_stock_threshold = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.StockQuantity,
		p.TrackInventory, p.LowStockThreshold, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// ListLowStock retrieves active tracked products at or below their low stock threshold.
func (r *productRepository) ListLowStock(ctx context.Context, limit int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE AND track_inventory = TRUE AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity, name
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query low stock products")
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}

	return r.collect(rows)
}

// ProductStock reads a product's stock position within tx.
func (r *productRepository) ProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (inventory.Level, error) {
	var level inventory.Level
	err := tx.QueryRow(ctx,
		`SELECT stock_quantity, track_inventory FROM products WHERE id = $1`,
		productID,
	).Scan(&level.Quantity, &level.Tracked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.Level{}, nil
		}
		return inventory.Level{}, fmt.Errorf("failed to query product stock: %w", err)
	}

	level.Found = true
	return level, nil
}

// VariantStock reads a variant's stock position within tx, tracked per its parent product.
func (r *productRepository) VariantStock(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (inventory.Level, error) {
	var level inventory.Level
	err := tx.QueryRow(ctx, `
		SELECT v.stock_quantity, p.track_inventory
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`, variantID).Scan(&level.Quantity, &level.Tracked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.Level{}, nil
		}
		return inventory.Level{}, fmt.Errorf("failed to query variant stock: %w", err)
	}

	level.Found = true
	return level, nil
}

// AdjustProductStock adds delta to a product's stock counter within tx.
func (r *productRepository) AdjustProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW() WHERE id = $1`,
		productID, delta,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Int("delta", delta).Msg("failed to adjust product stock")
		return fmt.Errorf("failed to adjust product stock: %w", err)
	}
	return nil
}

// AdjustVariantStock adds delta to a variant's stock counter within tx.
func (r *productRepository) AdjustVariantStock(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE product_variants SET stock_quantity = stock_quantity + $2 WHERE id = $1`,
		variantID, delta,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("variant_id", variantID.String()).Int("delta", delta).Msg("failed to adjust variant stock")
		return fmt.Errorf("failed to adjust variant stock: %w", err)
	}
	return nil
}
