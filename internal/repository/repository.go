package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/inventory"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// ErrCartChanged is returned when cart lines being converted into an order
// were already removed by another transaction.
var ErrCartChanged = errors.New("cart changed during checkout")

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *model.User) error

	// GetByID retrieves a user by ID. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by lower-cased email. Returns nil when not found.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// List retrieves a page of users and the unpaged total.
	List(ctx context.Context, filter model.UserFilter) ([]model.User, int, error)
}

// ProductRepository defines the interface for catalogue data access operations.
// It is also the stock store used by the inventory adjuster.
type ProductRepository interface {
	inventory.Store

	// List retrieves a page of products and the unpaged total.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)

	// GetByID retrieves a single product by its ID. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetVariants retrieves the variants of a product.
	GetVariants(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)

	// GetVariant retrieves a single variant. Returns nil when not found.
	GetVariant(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)

	// Create inserts a new product. Returns ErrDuplicate when the SKU is taken.
	Create(ctx context.Context, product *model.Product) error

	// Update persists every mutable field of product.
	Update(ctx context.Context, product *model.Product) error

	// ListLowStock retrieves active tracked products at or below their threshold.
	ListLowStock(ctx context.Context, limit int) ([]model.Product, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// List retrieves the user's cart lines joined with product details.
	List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// GetByID retrieves one of the user's cart lines. Returns nil when not found.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.CartItem, error)

	// FindLine retrieves the line holding the same product, variant and prescription.
	FindLine(ctx context.Context, userID, productID uuid.UUID, variantID, prescriptionID *uuid.UUID) (*model.CartItem, error)

	// Create inserts a new cart line.
	Create(ctx context.Context, item *model.CartItem) error

	// Update persists quantity and special instructions of a line.
	Update(ctx context.Context, item *model.CartItem) error

	// Delete removes one of the user's lines. Reports whether a row was removed.
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)

	// Clear removes all of the user's lines.
	Clear(ctx context.Context, userID uuid.UUID) error

	// Count returns the number of lines in the user's cart.
	Count(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteItems removes the given lines within the provided transaction.
	// Returns ErrCartChanged when any of them is already gone.
	DeleteItems(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIDTx retrieves an order and its items within the provided transaction.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetByNumber retrieves an order by its order number along with its items.
	GetByNumber(ctx context.Context, number string) (*model.Order, error)

	// List retrieves a page of orders without items and the unpaged total.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)

	// UpdateFulfilment persists the lifecycle fields of an order within the provided transaction.
	UpdateFulfilment(ctx context.Context, tx pgx.Tx, order *model.Order) error
}

// AppointmentRepository defines the interface for appointment data access operations.
type AppointmentRepository interface {
	// Create inserts a new appointment.
	Create(ctx context.Context, appt *model.Appointment) error

	// GetByID retrieves an appointment. Returns nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// List retrieves a page of appointments and the unpaged total.
	List(ctx context.Context, filter model.AppointmentFilter) ([]model.Appointment, int, error)

	// Update persists date, time, notes and status of an appointment.
	Update(ctx context.Context, appt *model.Appointment) error
}

// DashboardRepository defines the aggregate queries behind the admin dashboard.
type DashboardRepository interface {
	// Stats computes the headline figures for orders and customers since the given time.
	Stats(ctx context.Context, since time.Time) (*model.DashboardStats, error)

	// RecentOrders retrieves the most recently placed orders.
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)

	// TopProducts retrieves the best selling products among delivered orders since the given time.
	TopProducts(ctx context.Context, since time.Time, limit int) ([]model.TopProduct, error)
}
