package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalisePage clamps pagination parameters to sane bounds.
func normalisePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves a page of products. Public callers only see active products.
	List(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error)

	// Get retrieves a product with its variants. With activeOnly set, inactive
	// products are reported as not found.
	Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*model.Product, error)

	// Create adds a product. SKU, name and price are required.
	Create(ctx context.Context, input *model.ProductInput) (*model.Product, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error)

	// LowStock lists active tracked products at or below their threshold.
	LowStock(ctx context.Context, limit int) ([]model.Product, error)
}

// CartService defines operations on a user's cart.
type CartService interface {
	// Get returns the user's cart with totals.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Add puts a product in the cart, merging with an identical line.
	Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error)

	// Update changes quantity or special instructions of a line.
	Update(ctx context.Context, userID, itemID uuid.UUID, req *model.UpdateCartItemRequest) (*model.CartItem, error)

	// Remove deletes a line.
	Remove(ctx context.Context, userID, itemID uuid.UUID) error

	// Clear empties the cart.
	Clear(ctx context.Context, userID uuid.UUID) error

	// Count returns the number of lines in the cart.
	Count(ctx context.Context, userID uuid.UUID) (int, error)

	// Validate reports lines that would not survive checkout as-is.
	Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error)
}

// OrderService defines operations for order placement and fulfilment.
type OrderService interface {
	// CreateOrder converts the user's cart (or inline items when the cart is
	// empty) into a PENDING order.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error)

	// UpdateStatus applies an administrative status transition and its stock
	// and timestamp side effects in one transaction.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, update *model.StatusUpdate, actor string) (*model.Order, error)

	// Cancel cancels one of the user's own orders while it is PENDING or CONFIRMED.
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// List retrieves a page of orders.
	List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error)

	// Get retrieves any order with its items.
	Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// GetForUser retrieves one of the user's own orders.
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)

	// GetByNumberForUser retrieves one of the user's own orders by order number.
	GetByNumberForUser(ctx context.Context, userID uuid.UUID, number string) (*model.Order, error)

	// Track builds the tracking timeline of one of the user's own orders.
	Track(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderTracking, error)
}

// AuthService defines account operations.
type AuthService interface {
	// Register creates a customer account and signs it in.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and issues tokens.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error)

	// Profile returns the user's account.
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)

	// ListUsers retrieves a page of accounts.
	ListUsers(ctx context.Context, filter model.UserFilter) (*model.UserList, error)
}

// AppointmentService defines booking operations.
type AppointmentService interface {
	// Create books an appointment for a user, or for a guest when userID is nil.
	Create(ctx context.Context, userID *uuid.UUID, req *model.AppointmentRequest) (*model.Appointment, error)

	// List retrieves a page of appointments.
	List(ctx context.Context, filter model.AppointmentFilter) (*model.AppointmentList, error)

	// GetForUser retrieves one of the user's own appointments.
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)

	// Update changes one of the user's own appointments.
	Update(ctx context.Context, userID, id uuid.UUID, update *model.AppointmentUpdate) (*model.Appointment, error)

	// Cancel cancels one of the user's own appointments.
	Cancel(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)

	// SetStatus changes the status of any appointment.
	SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
}

// DashboardService builds the admin overview.
type DashboardService interface {
	// Get returns the dashboard over the last days days.
	Get(ctx context.Context, days int) (*model.Dashboard, error)
}
