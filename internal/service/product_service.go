package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultLowStockLimit = 50

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves a page of products.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error) {
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)
	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("total", total).
		Msg("retrieved products")

	return &model.ProductList{
		Products: products,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

// Get retrieves a product with its variants.
func (s *productService) Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil || (activeOnly && !product.IsActive) {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	variants, err := s.productRepo.GetVariants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product variants: %w", err)
	}
	if activeOnly {
		active := variants[:0]
		for _, v := range variants {
			if v.IsActive {
				active = append(active, v)
			}
		}
		variants = active
	}
	product.Variants = variants

	return product, nil
}

// Create adds a product.
func (s *productService) Create(ctx context.Context, input *model.ProductInput) (*model.Product, error) {
	if input == nil {
		return nil, model.ErrValidation
	}
	if input.SKU == nil || strings.TrimSpace(*input.SKU) == "" {
		return nil, model.NewMissingField("sku")
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, model.NewMissingField("name")
	}
	if input.Price == nil {
		return nil, model.NewMissingField("price")
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:             uuid.New(),
		TrackInventory: true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflict("A product with this SKU already exists")
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("sku", product.SKU).
		Msg("product created")

	return product, nil
}

// Update applies a partial update to a product.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error) {
	if input == nil {
		return nil, model.ErrValidation
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflict("A product with this SKU already exists")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")
	return product, nil
}

// LowStock lists active tracked products at or below their threshold.
func (s *productService) LowStock(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultLowStockLimit
	}

	products, err := s.productRepo.ListLowStock(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list low stock products")
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

func applyProductInput(p *model.Product, in *model.ProductInput) error {
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return model.NewValidationError("Price cannot be negative")
		}
		p.Price = in.Price.Round(2)
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return model.NewValidationError("Stock quantity cannot be negative")
		}
		p.StockQuantity = *in.StockQuantity
	}
	if in.TrackInventory != nil {
		p.TrackInventory = *in.TrackInventory
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return model.NewValidationError("Low stock threshold cannot be negative")
		}
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}
