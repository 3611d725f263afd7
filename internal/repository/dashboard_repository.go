package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dashboardRepository implements the DashboardRepository interface using PostgreSQL.
type dashboardRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDashboardRepository creates a new PostgreSQL-backed dashboard repository.
func NewDashboardRepository(pool *pgxpool.Pool, logger zerolog.Logger) DashboardRepository {
	return &dashboardRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dashboard").Logger(),
	}
}

// Stats computes headline figures. Revenue counts delivered orders only.
func (r *dashboardRepository) Stats(ctx context.Context, since time.Time) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders
				WHERE status = 'DELIVERED' AND created_at >= $1),
			(SELECT COUNT(*) FROM orders WHERE created_at >= $1),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM products
				WHERE is_active = TRUE AND track_inventory = TRUE AND stock_quantity <= low_stock_threshold),
			(SELECT COUNT(*) FROM users WHERE role = 'customer'),
			(SELECT COUNT(*) FROM users WHERE role = 'customer' AND created_at >= $1),
			(SELECT COUNT(*) FROM orders WHERE status IN ('PENDING', 'CONFIRMED'))
	`

	var stats model.DashboardStats
	err := r.pool.QueryRow(ctx, query, since).Scan(
		&stats.TotalRevenue,
		&stats.TotalOrders,
		&stats.TotalProducts,
		&stats.LowStockProducts,
		&stats.TotalCustomers,
		&stats.NewCustomers,
		&stats.PendingOrders,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query dashboard stats")
		return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.
			Div(decimal.NewFromInt(int64(stats.TotalOrders))).
			Round(2)
	}

	return &stats, nil
}

// RecentOrders retrieves the most recently placed orders.
func (r *dashboardRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query recent orders")
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent orders: %w", err)
	}

	return orders, nil
}

// TopProducts retrieves the best sellers among delivered orders.
func (r *dashboardRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]model.TopProduct, error) {
	query := `
		SELECT oi.product_name, SUM(oi.quantity), SUM(oi.total_price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'DELIVERED' AND o.created_at >= $1
		GROUP BY oi.product_name
		ORDER BY SUM(oi.quantity) DESC, oi.product_name
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	products := []model.TopProduct{}
	for rows.Next() {
		var p model.TopProduct
		if err := rows.Scan(&p.Name, &p.TotalSold, &p.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return products, nil
}
