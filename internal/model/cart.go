package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a staged line of a user's cart. UnitPrice is captured when the line is added.
type CartItem struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	UserID              uuid.UUID       `json:"user_id" db:"user_id"`
	ProductID           uuid.UUID       `json:"product_id" db:"product_id"`
	ProductVariantID    *uuid.UUID      `json:"product_variant_id,omitempty" db:"product_variant_id"`
	PrescriptionID      *uuid.UUID      `json:"prescription_id,omitempty" db:"prescription_id"`
	Quantity            int             `json:"quantity" db:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price" db:"unit_price"`
	SpecialInstructions string          `json:"special_instructions,omitempty" db:"special_instructions"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`

	// Joined from products for display and order snapshots.
	ProductName    string `json:"product_name" db:"-"`
	ProductSKU     string `json:"product_sku" db:"-"`
	ProductActive  bool   `json:"-" db:"-"`
	TrackInventory bool   `json:"-" db:"-"`
	StockQuantity  int    `json:"-" db:"-"`
}

// LineTotal is the captured unit price times quantity.
func (c *CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// AddToCartRequest is the payload for adding a line to the cart.
type AddToCartRequest struct {
	ProductID           uuid.UUID  `json:"product_id"`
	ProductVariantID    *uuid.UUID `json:"product_variant_id,omitempty"`
	PrescriptionID      *uuid.UUID `json:"prescription_id,omitempty"`
	Quantity            int        `json:"quantity"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
}

// UpdateCartItemRequest is the payload for changing a cart line.
type UpdateCartItemRequest struct {
	Quantity            *int    `json:"quantity,omitempty"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

// Cart is the summary view of a user's cart.
type Cart struct {
	Items       []CartItem      `json:"items"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CartIssue describes a cart line that would not survive checkout as-is.
type CartIssue struct {
	CartItemID uuid.UUID `json:"cart_item_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Available  *int      `json:"available_stock,omitempty"`
}

// CartValidation is the result of checking every cart line.
type CartValidation struct {
	Valid  bool        `json:"valid"`
	Issues []CartIssue `json:"issues"`
}
