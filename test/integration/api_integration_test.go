package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/inventory"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/promo"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	http.Handler
	tokens *auth.TokenManager
}

func setupTestServer(t *testing.T, testDB *TestDB) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	pool := testDB.Pool

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	apptRepo := repository.NewAppointmentRepository(pool, logger)
	dashboardRepo := repository.NewDashboardRepository(pool, logger)

	tokens := auth.NewTokenManager("integration-secret", time.Hour, 24*time.Hour)
	pricing := service.Pricing{TaxRate: decimal.Zero, ShippingFee: decimal.NewFromInt(5)}

	orderService := service.NewOrderService(
		orderRepo, cartRepo, productRepo, userRepo,
		inventory.NewAdjuster(productRepo, logger),
		promo.NewDisabledBook(),
		notify.Discard{},
		pricing,
		logger,
	)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, logger), logger),
		Products:    handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Cart:        handler.NewCartHandler(service.NewCartService(cartRepo, productRepo, logger), logger),
		Orders:      handler.NewOrderHandler(orderService, logger),
		Appointment: handler.NewAppointmentHandler(service.NewAppointmentService(apptRepo, userRepo, notify.Discard{}, logger), logger),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(dashboardRepo, logger), logger),
	}

	return &testServer{
		Handler: router.New(h, router.Options{
			Guards:         middleware.NewAuth(tokens, userRepo, logger),
			AuthLimiter:    middleware.NewRateLimiter(1000, 1000),
			AllowedOrigins: []string{"http://localhost:3000"},
		}, logger),
		tokens: tokens,
	}
}

func (s *testServer) tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := s.tokens.IssueAccess(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) model.Order {
	t.Helper()
	var order model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	return order
}

var address = map[string]string{"line1": "1 High St", "city": "Leeds", "postcode": "LS1 1AA"}

func TestOrderLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("checkout, confirm and cancel leave stock where it started", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customer := SeedUser(t, testDB.Pool, "jane@example.com", model.RoleCustomer)
		admin := SeedUser(t, testDB.Pool, "admin@example.com", model.RoleAdmin)
		frame := SeedProduct(t, testDB.Pool, "AV-001", "15.00", 10, true)
		userToken := server.tokenFor(t, customer)
		adminToken := server.tokenFor(t, admin)

		w := server.do(t, http.MethodPost, "/api/cart/add", userToken, map[string]interface{}{
			"product_id": frame.ID, "quantity": 2,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = server.do(t, http.MethodPost, "/api/orders", userToken, map[string]interface{}{
			"shipping_address": address,
			"payment_method":   "cash_on_delivery",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		order := decodeOrder(t, w)

		assert.Equal(t, model.OrderStatusPending, order.Status)
		assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
		assert.True(t, decimal.RequireFromString("35").Equal(order.TotalAmount), "total %s", order.TotalAmount)
		assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)
		assert.JSONEq(t, string(order.ShippingAddress), string(order.BillingAddress))
		assert.Equal(t, 10, StockOf(t, testDB.Pool, frame.ID), "placing an order does not move stock")

		w = server.do(t, http.MethodGet, "/api/cart/count", userToken, nil)
		assert.JSONEq(t, `{"count":0}`, w.Body.String())

		path := "/api/admin/orders/" + order.ID.String() + "/status"
		w = server.do(t, http.MethodPut, path, adminToken, map[string]string{"status": "confirmed"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 8, StockOf(t, testDB.Pool, frame.ID))

		w = server.do(t, http.MethodPut, path, adminToken, map[string]string{"status": "CANCELLED", "notes": "customer called"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		cancelled := decodeOrder(t, w)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
		assert.Contains(t, cancelled.AdminNotes, "Status changed from CONFIRMED to CANCELLED by admin@example.com")
		assert.Contains(t, cancelled.AdminNotes, "customer called")
		assert.Equal(t, 10, StockOf(t, testDB.Pool, frame.ID))
	})

	t.Run("shipping records tracking and blocks customer cancellation", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customer := SeedUser(t, testDB.Pool, "sam@example.com", model.RoleCustomer)
		admin := SeedUser(t, testDB.Pool, "ops@example.com", model.RoleAdmin)
		frame := SeedProduct(t, testDB.Pool, "RT-204", "89.50", 3, true)
		userToken := server.tokenFor(t, customer)
		adminToken := server.tokenFor(t, admin)

		w := server.do(t, http.MethodPost, "/api/orders", userToken, map[string]interface{}{
			"shipping_address": address,
			"payment_method":   "card",
			"items":            []map[string]interface{}{{"product_id": frame.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		order := decodeOrder(t, w)
		assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)

		path := "/api/admin/orders/" + order.ID.String() + "/status"
		w = server.do(t, http.MethodPut, path, adminToken, map[string]string{"status": "CONFIRMED"})
		require.Equal(t, http.StatusOK, w.Code)
		w = server.do(t, http.MethodPut, path, adminToken, map[string]string{
			"status": "SHIPPED", "tracking_number": "1Z999AA1", "shipping_method": "UPS",
		})
		require.Equal(t, http.StatusOK, w.Code)
		shipped := decodeOrder(t, w)
		assert.Equal(t, "1Z999AA1", shipped.TrackingNumber)
		assert.NotNil(t, shipped.ShippedAt)

		w = server.do(t, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", userToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), model.ErrCodeIllegalTransition)

		w = server.do(t, http.MethodGet, "/api/orders/"+order.ID.String()+"/track", userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tracking model.OrderTracking
		require.NoError(t, json.NewDecoder(w.Body).Decode(&tracking))
		assert.Equal(t, "1Z999AA1", tracking.TrackingNumber)
		assert.Equal(t, 2, StockOf(t, testDB.Pool, frame.ID))
	})

	t.Run("customer cancels a pending order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customer := SeedUser(t, testDB.Pool, "lee@example.com", model.RoleCustomer)
		frame := SeedProduct(t, testDB.Pool, "CE-310", "49.00", 4, true)
		userToken := server.tokenFor(t, customer)

		w := server.do(t, http.MethodPost, "/api/orders", userToken, map[string]interface{}{
			"shipping_address": address,
			"payment_method":   "paypal",
			"items":            []map[string]interface{}{{"product_id": frame.ID, "quantity": 2}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		order := decodeOrder(t, w)

		w = server.do(t, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", userToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.OrderStatusCancelled, decodeOrder(t, w).Status)
		assert.Equal(t, 4, StockOf(t, testDB.Pool, frame.ID))
	})

	t.Run("checkout over stock stays pending and confirm skips the short line", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		customer := SeedUser(t, testDB.Pool, "max@example.com", model.RoleCustomer)
		admin := SeedUser(t, testDB.Pool, "stock@example.com", model.RoleAdmin)
		frame := SeedProduct(t, testDB.Pool, "KD-007", "39.00", 1, true)

		w := server.do(t, http.MethodPost, "/api/orders", server.tokenFor(t, customer), map[string]interface{}{
			"shipping_address": address,
			"payment_method":   "card",
			"items":            []map[string]interface{}{{"product_id": frame.ID, "quantity": 3}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		order := decodeOrder(t, w)
		assert.Equal(t, model.OrderStatusPending, order.Status)
		assert.Equal(t, 1, StockOf(t, testDB.Pool, frame.ID), "checkout reserves nothing")

		w = server.do(t, http.MethodPut, "/api/admin/orders/"+order.ID.String()+"/status",
			server.tokenFor(t, admin), map[string]string{"status": "CONFIRMED"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, model.OrderStatusConfirmed, decodeOrder(t, w).Status)
		assert.Equal(t, 1, StockOf(t, testDB.Pool, frame.ID), "short line is skipped")
	})
}

func TestOrderLookup_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	owner := SeedUser(t, testDB.Pool, "owner@example.com", model.RoleCustomer)
	stranger := SeedUser(t, testDB.Pool, "stranger@example.com", model.RoleCustomer)
	frame := SeedProduct(t, testDB.Pool, "AV-002", "120.00", 0, false)
	ownerToken := server.tokenFor(t, owner)

	w := server.do(t, http.MethodPost, "/api/orders", ownerToken, map[string]interface{}{
		"shipping_address": address,
		"payment_method":   "card",
		"items":            []map[string]interface{}{{"product_id": frame.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeOrder(t, w)

	t.Run("owner finds the order by number", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/orders/by-number/"+order.OrderNumber, ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.ID, decodeOrder(t, w).ID)
	})

	t.Run("other customers get not found", func(t *testing.T) {
		token := server.tokenFor(t, stranger)
		w := server.do(t, http.MethodGet, "/api/orders/by-number/"+order.OrderNumber, token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = server.do(t, http.MethodGet, "/api/orders/"+order.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invoice downloads as PDF", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/orders/"+order.ID.String()+"/invoice", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
	})

	t.Run("admin listing searches by number", func(t *testing.T) {
		admin := SeedUser(t, testDB.Pool, "lookup-admin@example.com", model.RoleAdmin)
		w := server.do(t, http.MethodGet, "/api/admin/orders?search="+order.OrderNumber, server.tokenFor(t, admin), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list model.OrderList
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Equal(t, 1, list.Total)
		assert.Equal(t, order.OrderNumber, list.Orders[0].OrderNumber)
	})

	t.Run("untracked products keep their counter", func(t *testing.T) {
		assert.Equal(t, 0, StockOf(t, testDB.Pool, frame.ID))
	})
}

func TestAuthAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	w := server.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "New.User@Example.com", "password": "S3cret-pass", "first_name": "New", "last_name": "User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = server.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new.user@example.com", "password": "S3cret-pass", "first_name": "New", "last_name": "User",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = server.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "new.user@example.com", "password": "S3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, model.RoleCustomer, resp.User.Role)

	w = server.do(t, http.MethodGet, "/api/auth/profile", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = server.do(t, http.MethodGet, "/api/admin/dashboard", resp.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = server.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": resp.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)

	admin := SeedUser(t, testDB.Pool, "demoted@example.com", model.RoleAdmin)
	adminToken := server.tokenFor(t, admin)
	w = server.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := testDB.Pool.Exec(t.Context(), `UPDATE users SET role = $1 WHERE id = $2`, model.RoleCustomer, admin.ID)
	require.NoError(t, err)
	w = server.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "demotion applies before the token expires")
}
