package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/inventory"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/promo"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Pricing holds the checkout charges applied on top of the subtotal.
type Pricing struct {
	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	adjuster    inventory.Adjuster
	promos      promo.Book
	notifier    notify.Notifier
	pricing     Pricing
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	adjuster inventory.Adjuster,
	promos promo.Book,
	notifier notify.Notifier,
	pricing Pricing,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		adjuster:    adjuster,
		promos:      promos,
		notifier:    notifier,
		pricing:     pricing,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder converts the user's cart into a PENDING order.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}

	cart, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var (
		items   []model.OrderItem
		cartIDs []uuid.UUID
	)
	switch {
	case len(cart) > 0:
		items = make([]model.OrderItem, len(cart))
		cartIDs = make([]uuid.UUID, len(cart))
		for i, line := range cart {
			items[i] = orderItemFromCart(line)
			cartIDs[i] = line.ID
		}
	case len(req.Items) > 0:
		items, err = s.resolveInlineItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
	default:
		return nil, model.ErrCartEmpty
	}

	discountPercent := decimal.Zero
	var couponCode *string
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		code := strings.TrimSpace(*req.CouponCode)
		discountPercent, err = s.promos.Discount(ctx, code)
		if err != nil {
			s.logger.Warn().Str("coupon_code", code).Err(err).Msg("invalid coupon code")
			return nil, err
		}
		couponCode = &code
	}

	now := s.now()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(now),
		UserID:          &userID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   paymentStatusFor(req.PaymentMethod),
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      couponCode,
		CustomerEmail:   user.Email,
		CustomerPhone:   user.Phone,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if isEmptyJSON(order.BillingAddress) {
		order.BillingAddress = order.ShippingAddress
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	s.price(order, items, discountPercent)

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if len(cartIDs) > 0 {
		if err = s.cartRepo.DeleteItems(ctx, tx, userID, cartIDs); err != nil {
			if errors.Is(err, repository.ErrCartChanged) {
				return nil, model.NewConflict("Cart changed during checkout, please retry")
			}
			return nil, fmt.Errorf("failed to clear cart: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order created successfully")

	s.notifier.Notify(ctx, notify.OrderEvent(notify.KindOrderConfirmation, order))

	return order, nil
}

// price fills the line totals and order amounts, each rounded to cents.
func (s *orderService) price(order *model.Order, items []model.OrderItem, discountPercent decimal.Decimal) {
	subtotal := decimal.Zero
	for i := range items {
		items[i].TotalPrice = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(items[i].TotalPrice)
	}

	order.Subtotal = subtotal.Round(2)
	order.TaxAmount = subtotal.Mul(s.pricing.TaxRate).Round(2)
	order.ShippingAmount = s.pricing.ShippingFee.Round(2)
	order.DiscountAmount = subtotal.Mul(discountPercent).Div(hundred).Round(2)
	order.TotalAmount = order.Subtotal.
		Add(order.TaxAmount).
		Add(order.ShippingAmount).
		Sub(order.DiscountAmount).
		Round(2)
}

// resolveInlineItems prices request lines against the live catalogue.
func (s *orderService) resolveInlineItems(ctx context.Context, lines []model.CheckoutLineItem) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(lines))

	for i, line := range lines {
		if line.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", line.ProductID.String()).
				Int("quantity", line.Quantity).
				Msg("invalid quantity")
			return nil, model.ErrInvalidQuantity
		}

		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil || !product.IsActive {
			return nil, model.ErrProductNotFound.WithDetail("product_id", line.ProductID.String())
		}

		price := product.Price
		sku := product.SKU
		if line.ProductVariantID != nil {
			variant, err := s.productRepo.GetVariant(ctx, *line.ProductVariantID)
			if err != nil {
				return nil, fmt.Errorf("failed to get variant: %w", err)
			}
			if variant == nil || variant.ProductID != product.ID || !variant.IsActive {
				return nil, model.ErrProductNotFound.WithDetail("product_variant_id", line.ProductVariantID.String())
			}
			if variant.Price != nil {
				price = *variant.Price
			}
			sku = variant.SKU
		}

		items = append(items, model.OrderItem{
			ID:                  uuid.New(),
			ProductID:           product.ID,
			ProductVariantID:    line.ProductVariantID,
			PrescriptionID:      line.PrescriptionID,
			ProductName:         product.Name,
			ProductSKU:          sku,
			Quantity:            line.Quantity,
			UnitPrice:           price,
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	return items, nil
}

func orderItemFromCart(line model.CartItem) model.OrderItem {
	return model.OrderItem{
		ID:                  uuid.New(),
		ProductID:           line.ProductID,
		ProductVariantID:    line.ProductVariantID,
		PrescriptionID:      line.PrescriptionID,
		ProductName:         line.ProductName,
		ProductSKU:          line.ProductSKU,
		Quantity:            line.Quantity,
		UnitPrice:           line.UnitPrice,
		SpecialInstructions: line.SpecialInstructions,
	}
}

func validateCheckout(req *model.CheckoutRequest) error {
	if req == nil {
		return model.ErrValidation
	}
	if isEmptyJSON(req.ShippingAddress) {
		return model.NewMissingField("shipping_address")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return model.NewMissingField("payment_method")
	}
	return nil
}

func isEmptyJSON(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// paymentStatusFor returns PENDING for card payments and COMPLETED otherwise.
func paymentStatusFor(method string) model.PaymentStatus {
	if strings.EqualFold(strings.TrimSpace(method), model.PaymentMethodCard) {
		return model.PaymentStatusPending
	}
	return model.PaymentStatusCompleted
}

// newOrderNumber returns ORD-YYYYMMDD-XXXXXXXX.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// List retrieves a page of orders.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	filter.Limit, filter.Offset = normalisePage(filter.Limit, filter.Offset)

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderList{
		Orders: orders,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Get retrieves any order with its items.
func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_id", orderID.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// GetForUser retrieves one of the user's own orders. Orders of other users
// are reported as not found.
func (s *orderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(order, userID) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// GetByNumberForUser retrieves one of the user's own orders by order number.
func (s *orderService) GetByNumberForUser(ctx context.Context, userID uuid.UUID, number string) (*model.Order, error) {
	order, err := s.orderRepo.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", number).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !ownedBy(order, userID) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// Track builds the tracking timeline of one of the user's own orders.
func (s *orderService) Track(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderTracking, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return trackingFor(order), nil
}

func trackingFor(order *model.Order) *model.OrderTracking {
	reached := func(statuses ...model.OrderStatus) bool {
		for _, st := range statuses {
			if order.Status == st {
				return true
			}
		}
		return false
	}

	placed := order.CreatedAt
	return &model.OrderTracking{
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		TrackingNumber: order.TrackingNumber,
		ShippingMethod: order.ShippingMethod,
		Timeline: []model.TrackingEvent{
			{Status: "Order Placed", Completed: true, Timestamp: &placed},
			{
				Status:    "Order Confirmed",
				Completed: reached(model.OrderStatusConfirmed, model.OrderStatusShipped, model.OrderStatusDelivered),
			},
			{
				Status:    "Shipped",
				Completed: reached(model.OrderStatusShipped, model.OrderStatusDelivered),
				Timestamp: order.ShippedAt,
			},
			{
				Status:    "Delivered",
				Completed: reached(model.OrderStatusDelivered),
				Timestamp: order.DeliveredAt,
			},
		},
	}
}

func ownedBy(order *model.Order, userID uuid.UUID) bool {
	return order.UserID != nil && *order.UserID == userID
}

// isDomainError reports whether err carries a client-facing code.
func isDomainError(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de)
}
