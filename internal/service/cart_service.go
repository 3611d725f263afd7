package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the user's cart with totals.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}

	return &model.Cart{
		Items:       items,
		ItemCount:   len(items),
		TotalAmount: total.Round(2),
	}, nil
}

// stockFor resolves the purchasable target of a line: the product, the
// variant when one is named, the unit price, and the stock that bounds it.
type stockFor struct {
	product   *model.Product
	variant   *model.ProductVariant
	price     decimal.Decimal
	tracked   bool
	available int
}

func (s *cartService) resolve(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*stockFor, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}

	res := &stockFor{
		product:   product,
		price:     product.Price,
		tracked:   product.TrackInventory,
		available: product.StockQuantity,
	}

	if variantID != nil {
		variant, err := s.productRepo.GetVariant(ctx, *variantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get variant: %w", err)
		}
		if variant == nil || variant.ProductID != product.ID || !variant.IsActive {
			return nil, model.ErrProductNotFound.WithDetail("product_variant_id", variantID.String())
		}
		res.variant = variant
		res.available = variant.StockQuantity
		if variant.Price != nil {
			res.price = *variant.Price
		}
	}

	return res, nil
}

func (r *stockFor) check(quantity int) error {
	if r.tracked && r.available < quantity {
		return model.NewInsufficientStock(r.available)
	}
	return nil
}

// Add puts a product in the cart, merging with an identical line.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error) {
	if req == nil || req.ProductID == uuid.Nil {
		return nil, model.NewMissingField("product_id")
	}
	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	target, err := s.resolve(ctx, req.ProductID, req.ProductVariantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.FindLine(ctx, userID, req.ProductID, req.ProductVariantID, req.PrescriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cart line: %w", err)
	}

	now := time.Now().UTC()
	if existing != nil {
		merged := existing.Quantity + req.Quantity
		if err := target.check(merged); err != nil {
			return nil, err
		}
		existing.Quantity = merged
		if req.SpecialInstructions != "" {
			existing.SpecialInstructions = req.SpecialInstructions
		}
		existing.UpdatedAt = now
		if err := s.cartRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update cart line: %w", err)
		}
		s.logger.Debug().
			Str("cart_item_id", existing.ID.String()).
			Int("quantity", merged).
			Msg("merged cart line")
		return existing, nil
	}

	if err := target.check(req.Quantity); err != nil {
		return nil, err
	}

	item := &model.CartItem{
		ID:                  uuid.New(),
		UserID:              userID,
		ProductID:           req.ProductID,
		ProductVariantID:    req.ProductVariantID,
		PrescriptionID:      req.PrescriptionID,
		Quantity:            req.Quantity,
		UnitPrice:           target.price,
		SpecialInstructions: req.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
		ProductName:         target.product.Name,
		ProductSKU:          target.product.SKU,
		ProductActive:       target.product.IsActive,
		TrackInventory:      target.product.TrackInventory,
		StockQuantity:       target.available,
	}
	if err := s.cartRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Debug().
		Str("cart_item_id", item.ID.String()).
		Str("product_id", item.ProductID.String()).
		Int("quantity", item.Quantity).
		Msg("added cart line")

	return item, nil
}

// Update changes quantity or special instructions of a line.
func (s *cartService) Update(ctx context.Context, userID, itemID uuid.UUID, req *model.UpdateCartItemRequest) (*model.CartItem, error) {
	if req == nil {
		return nil, model.ErrValidation
	}

	item, err := s.cartRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		target, err := s.resolve(ctx, item.ProductID, item.ProductVariantID)
		if err != nil {
			return nil, err
		}
		if err := target.check(*req.Quantity); err != nil {
			return nil, err
		}
		item.Quantity = *req.Quantity
	}
	if req.SpecialInstructions != nil {
		item.SpecialInstructions = *req.SpecialInstructions
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.cartRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	return item, nil
}

// Remove deletes a line.
func (s *cartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	removed, err := s.cartRepo.Delete(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	if !removed {
		return model.ErrCartItemNotFound
	}
	return nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Count returns the number of lines in the cart.
func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.cartRepo.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart: %w", err)
	}
	return n, nil
}

// Validate reports lines that would not survive checkout as-is. The result is
// advisory; stock is only moved when an order is confirmed.
func (s *cartService) Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	issues := []model.CartIssue{}
	for _, item := range items {
		if !item.ProductActive {
			issues = append(issues, model.CartIssue{
				CartItemID: item.ID,
				ProductID:  item.ProductID,
				Code:       model.ErrCodeProductNotFound,
				Message:    fmt.Sprintf("%s is no longer available", item.ProductName),
			})
			continue
		}
		if item.TrackInventory && item.StockQuantity < item.Quantity {
			available := item.StockQuantity
			issues = append(issues, model.CartIssue{
				CartItemID: item.ID,
				ProductID:  item.ProductID,
				Code:       model.ErrCodeInsufficientStock,
				Message:    fmt.Sprintf("Only %d of %s in stock", available, item.ProductName),
				Available:  &available,
			})
		}
	}

	return &model.CartValidation{Valid: len(issues) == 0, Issues: issues}, nil
}
