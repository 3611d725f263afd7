package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_number, user_id, status, payment_status, payment_method,
	subtotal, tax_amount, shipping_amount, discount_amount, total_amount, coupon_code,
	customer_email, customer_phone, shipping_address, billing_address, notes, admin_notes,
	tracking_number, shipping_method, shipped_at, delivered_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.Subtotal,
		&o.TaxAmount,
		&o.ShippingAmount,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.CouponCode,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.ShippingAddress,
		&o.BillingAddress,
		&o.Notes,
		&o.AdminNotes,
		&o.TrackingNumber,
		&o.ShippingMethod,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.Subtotal,
		order.TaxAmount,
		order.ShippingAmount,
		order.DiscountAmount,
		order.TotalAmount,
		order.CouponCode,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ShippingAddress,
		order.BillingAddress,
		order.Notes,
		order.AdminNotes,
		order.TrackingNumber,
		order.ShippingMethod,
		order.ShippedAt,
		order.DeliveredAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_variant_id, prescription_id,
			product_name, product_sku, quantity, unit_price, total_price, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductVariantID, item.PrescriptionID,
			item.ProductName, item.ProductSKU, item.Quantity, item.UnitPrice, item.TotalPrice,
			item.SpecialInstructions,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getWithItems(ctx, r.pool, `id = $1`, id)
}

// GetByIDTx retrieves an order and its items within the provided transaction.
func (r *orderRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.getWithItems(ctx, tx, `id = $1`, id)
}

// GetByNumber retrieves an order by its order number along with its items.
func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.getWithItems(ctx, r.pool, `order_number = $1`, number)
}

func (r *orderRepository) getWithItems(ctx context.Context, q querier, cond string, arg any) (*model.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.items(ctx, q, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) items(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_variant_id, prescription_id, product_name,
			product_sku, quantity, unit_price, total_price, special_instructions
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductVariantID,
			&item.PrescriptionID,
			&item.ProductName,
			&item.ProductSKU,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.SpecialInstructions,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// List retrieves a page of orders, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	var (
		conds []string
		args  []any
	)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(order_number ILIKE $%d OR customer_email ILIKE $%d)", n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// UpdateFulfilment persists the lifecycle fields of an order within the provided transaction.
func (r *orderRepository) UpdateFulfilment(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, tracking_number = $4, shipping_method = $5,
			shipped_at = $6, delivered_at = $7, admin_notes = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		order.ID,
		order.Status,
		order.PaymentStatus,
		order.TrackingNumber,
		order.ShippingMethod,
		order.ShippedAt,
		order.DeliveredAt,
		order.AdminNotes,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update order: order %s no longer exists", order.ID)
	}

	return nil
}
