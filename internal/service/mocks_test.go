package service

import (
	"context"
	"sync"
	"time"

	"storefront/internal/inventory"
	"storefront/internal/model"
	"storefront/internal/notify"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	args := m.Called(ctx, number)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) UpdateFulfilment(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) List(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *MockCartRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.CartItem, error) {
	args := m.Called(ctx, userID, id)
	item, _ := args.Get(0).(*model.CartItem)
	return item, args.Error(1)
}

func (m *MockCartRepository) FindLine(ctx context.Context, userID, productID uuid.UUID, variantID, prescriptionID *uuid.UUID) (*model.CartItem, error) {
	args := m.Called(ctx, userID, productID, variantID, prescriptionID)
	item, _ := args.Get(0).(*model.CartItem)
	return item, args.Error(1)
}

func (m *MockCartRepository) Create(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartRepository) Update(ctx context.Context, item *model.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCartRepository) DeleteItems(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, tx, userID, ids).Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Int(1), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*model.Product)
	return product, args.Error(1)
}

func (m *MockProductRepository) GetVariants(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	args := m.Called(ctx, productID)
	variants, _ := args.Get(0).([]model.ProductVariant)
	return variants, args.Error(1)
}

func (m *MockProductRepository) GetVariant(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	args := m.Called(ctx, id)
	variant, _ := args.Get(0).(*model.ProductVariant)
	return variant, args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *model.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) ListLowStock(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) ProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (inventory.Level, error) {
	args := m.Called(ctx, tx, productID)
	return args.Get(0).(inventory.Level), args.Error(1)
}

func (m *MockProductRepository) VariantStock(ctx context.Context, tx pgx.Tx, variantID uuid.UUID) (inventory.Level, error) {
	args := m.Called(ctx, tx, variantID)
	return args.Get(0).(inventory.Level), args.Error(1)
}

func (m *MockProductRepository) AdjustProductStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, delta int) error {
	return m.Called(ctx, tx, productID, delta).Error(0)
}

func (m *MockProductRepository) AdjustVariantStock(ctx context.Context, tx pgx.Tx, variantID uuid.UUID, delta int) error {
	return m.Called(ctx, tx, variantID, delta).Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter model.UserFilter) ([]model.User, int, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]model.User)
	return users, args.Int(1), args.Error(2)
}

// MockAppointmentRepository is a mock implementation of AppointmentRepository.
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	appt, _ := args.Get(0).(*model.Appointment)
	return appt, args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]model.Appointment, int, error) {
	args := m.Called(ctx, filter)
	appts, _ := args.Get(0).([]model.Appointment)
	return appts, args.Int(1), args.Error(2)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}

// MockDashboardRepository is a mock implementation of DashboardRepository.
type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) Stats(ctx context.Context, since time.Time) (*model.DashboardStats, error) {
	args := m.Called(ctx, since)
	stats, _ := args.Get(0).(*model.DashboardStats)
	return stats, args.Error(1)
}

func (m *MockDashboardRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	args := m.Called(ctx, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *MockDashboardRepository) TopProducts(ctx context.Context, since time.Time, limit int) ([]model.TopProduct, error) {
	args := m.Called(ctx, since, limit)
	top, _ := args.Get(0).([]model.TopProduct)
	return top, args.Error(1)
}

// MockPromoBook is a mock implementation of promo.Book.
type MockPromoBook struct {
	mock.Mock
}

func (m *MockPromoBook) Discount(ctx context.Context, code string) (decimal.Decimal, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPromoBook) Close() error {
	return m.Called().Error(0)
}

// recordingNotifier captures dispatched events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]notify.Kind, len(n.events))
	for i, ev := range n.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx; stock and order SQL goes through the repository mocks.
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
