package handler

import (
	"context"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	args := m.Called(ctx, userID, req)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, update *model.StatusUpdate, actor string) (*model.Order, error) {
	args := m.Called(ctx, orderID, update, actor)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).(*model.OrderList)
	return list, args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) GetByNumberForUser(ctx context.Context, userID uuid.UUID, number string) (*model.Order, error) {
	args := m.Called(ctx, userID, number)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) Track(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderTracking, error) {
	args := m.Called(ctx, userID, orderID)
	tracking, _ := args.Get(0).(*model.OrderTracking)
	return tracking, args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) (*model.ProductList, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).(*model.ProductList)
	return list, args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*model.Product, error) {
	args := m.Called(ctx, id, activeOnly)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, input)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, id, input)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductService) LowStock(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*model.Cart)
	return cart, args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error) {
	args := m.Called(ctx, userID, req)
	item, _ := args.Get(0).(*model.CartItem)
	return item, args.Error(1)
}

func (m *MockCartService) Update(ctx context.Context, userID, itemID uuid.UUID, req *model.UpdateCartItemRequest) (*model.CartItem, error) {
	args := m.Called(ctx, userID, itemID, req)
	item, _ := args.Get(0).(*model.CartItem)
	return item, args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCartService) Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*model.CartValidation)
	return result, args.Error(1)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*model.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockAuthService) ListUsers(ctx context.Context, filter model.UserFilter) (*model.UserList, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).(*model.UserList)
	return list, args.Error(1)
}

// MockAppointmentService is a mock implementation of AppointmentService.
type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Create(ctx context.Context, userID *uuid.UUID, req *model.AppointmentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, userID, req)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

func (m *MockAppointmentService) List(ctx context.Context, filter model.AppointmentFilter) (*model.AppointmentList, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).(*model.AppointmentList)
	return list, args.Error(1)
}

func (m *MockAppointmentService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, userID, id)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

func (m *MockAppointmentService) Update(ctx context.Context, userID, id uuid.UUID, update *model.AppointmentUpdate) (*model.Appointment, error) {
	args := m.Called(ctx, userID, id, update)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

func (m *MockAppointmentService) Cancel(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, userID, id)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

func (m *MockAppointmentService) SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	args := m.Called(ctx, id, status)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

// MockDashboardService is a mock implementation of DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Get(ctx context.Context, days int) (*model.Dashboard, error) {
	args := m.Called(ctx, days)
	dashboard, _ := args.Get(0).(*model.Dashboard)
	return dashboard, args.Error(1)
}

// asUser attaches a principal to the request as the route guard would.
func asUser(r *http.Request, id uuid.UUID, role model.Role) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{
		UserID: id,
		Email:  "jane@example.com",
		Role:   role,
	}))
}
