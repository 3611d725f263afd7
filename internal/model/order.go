package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusReturned  OrderStatus = "RETURNED"
)

// OrderStatuses lists every valid order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// ParseOrderStatus normalises a client-supplied status string.
// Unknown values yield an INVALID_STATUS error listing the accepted values.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, valid := range OrderStatuses {
		if s == valid {
			return s, nil
		}
	}

	names := make([]string, len(OrderStatuses))
	for i, st := range OrderStatuses {
		names[i] = string(st)
	}
	return "", NewInvalidStatus(names)
}

// IsTerminal reports whether no further lifecycle progress is expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusReturned
}

// CustomerCancellable reports whether the customer may cancel an order in this status.
func (s OrderStatus) CustomerCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// PaymentStatus is the settlement state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethodCard is the only method that is settled asynchronously.
const PaymentMethodCard = "card"

// Order represents a customer order.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     string          `json:"order_number" db:"order_number"`
	UserID          *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount" db:"shipping_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	CouponCode      *string         `json:"coupon_code,omitempty" db:"coupon_code"`
	CustomerEmail   string          `json:"customer_email" db:"customer_email"`
	CustomerPhone   string          `json:"customer_phone,omitempty" db:"customer_phone"`
	ShippingAddress json.RawMessage `json:"shipping_address" db:"shipping_address"`
	BillingAddress  json.RawMessage `json:"billing_address" db:"billing_address"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	AdminNotes      string          `json:"admin_notes,omitempty" db:"admin_notes"`
	TrackingNumber  string          `json:"tracking_number,omitempty" db:"tracking_number"`
	ShippingMethod  string          `json:"shipping_method,omitempty" db:"shipping_method"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty" db:"shipped_at"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Items           []OrderItem     `json:"items,omitempty" db:"-"`
}

// OrderItem is a line of an order, snapshotted from the cart at checkout.
type OrderItem struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderID             uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID           uuid.UUID       `json:"product_id" db:"product_id"`
	ProductVariantID    *uuid.UUID      `json:"product_variant_id,omitempty" db:"product_variant_id"`
	PrescriptionID      *uuid.UUID      `json:"prescription_id,omitempty" db:"prescription_id"`
	ProductName         string          `json:"product_name" db:"product_name"`
	ProductSKU          string          `json:"product_sku" db:"product_sku"`
	Quantity            int             `json:"quantity" db:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice          decimal.Decimal `json:"total_price" db:"total_price"`
	SpecialInstructions string          `json:"special_instructions,omitempty" db:"special_instructions"`
}

// CheckoutRequest is the payload for placing an order.
type CheckoutRequest struct {
	ShippingAddress json.RawMessage    `json:"shipping_address"`
	BillingAddress  json.RawMessage    `json:"billing_address,omitempty"`
	PaymentMethod   string             `json:"payment_method"`
	Notes           string             `json:"notes,omitempty"`
	CouponCode      *string            `json:"coupon_code,omitempty"`
	Items           []CheckoutLineItem `json:"items,omitempty"`
}

// CheckoutLineItem is an inline order line, used only when the persisted cart is empty.
type CheckoutLineItem struct {
	ProductID           uuid.UUID  `json:"product_id"`
	ProductVariantID    *uuid.UUID `json:"product_variant_id,omitempty"`
	PrescriptionID      *uuid.UUID `json:"prescription_id,omitempty"`
	Quantity            int        `json:"quantity"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
}

// StatusUpdate is the payload of an administrative status transition.
type StatusUpdate struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	ShippingMethod *string `json:"shipping_method,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Search string
	Limit  int
	Offset int
}

// OrderList is a page of orders plus the unpaged total.
type OrderList struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// TrackingEvent is one milestone of an order's timeline.
type TrackingEvent struct {
	Status    string     `json:"status"`
	Completed bool       `json:"completed"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// OrderTracking is the customer-facing tracking view of an order.
type OrderTracking struct {
	OrderNumber    string          `json:"order_number"`
	Status         OrderStatus     `json:"status"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	ShippingMethod string          `json:"shipping_method,omitempty"`
	Timeline       []TrackingEvent `json:"timeline"`
}
