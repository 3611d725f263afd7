package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item in the catalogue.
type Product struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	SKU               string           `json:"sku" db:"sku"`
	Name              string           `json:"name" db:"name"`
	Description       string           `json:"description,omitempty" db:"description"`
	Price             decimal.Decimal  `json:"price" db:"price"`
	StockQuantity     int              `json:"stock_quantity" db:"stock_quantity"`
	TrackInventory    bool             `json:"track_inventory" db:"track_inventory"`
	LowStockThreshold int              `json:"low_stock_threshold" db:"low_stock_threshold"`
	IsActive          bool             `json:"is_active" db:"is_active"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
	Variants          []ProductVariant `json:"variants,omitempty" db:"-"`
}

// InStock reports whether quantity units can be supplied.
func (p *Product) InStock(quantity int) bool {
	return !p.TrackInventory || p.StockQuantity >= quantity
}

// ProductVariant is a purchasable option of a product, such as a colour.
type ProductVariant struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	ProductID     uuid.UUID        `json:"product_id" db:"product_id"`
	SKU           string           `json:"sku" db:"sku"`
	Name          string           `json:"name" db:"name"`
	Price         *decimal.Decimal `json:"price,omitempty" db:"price"`
	StockQuantity int              `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool             `json:"is_active" db:"is_active"`
}

// ProductInput carries the fields of a product create or partial update.
// Nil fields are left untouched on update.
type ProductInput struct {
	SKU               *string          `json:"sku,omitempty"`
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty"`
	TrackInventory    *bool            `json:"track_inventory,omitempty"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductList is a page of products plus the unpaged total.
type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
