package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and applies the application schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedUser inserts a user with the given role and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool, email string, role model.Role) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("S3cret-pass")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
	}
	_, err = pool.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role,
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

// SeedProduct inserts an active product and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, sku, price string, stock int, tracked bool) *model.Product {
	t.Helper()

	p := &model.Product{
		ID:                uuid.New(),
		SKU:               sku,
		Name:              "Frame " + sku,
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		TrackInventory:    tracked,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, sku, name, price, stock_quantity, track_inventory, low_stock_threshold, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.SKU, p.Name, p.Price, p.StockQuantity, p.TrackInventory, p.LowStockThreshold, p.IsActive,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", sku, err)
	}
	return p
}

// StockOf reads the current stock counter of a product.
func StockOf(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var qty int
	err := pool.QueryRow(context.Background(), `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	if err != nil {
		t.Fatalf("failed to read stock of %s: %v", productID, err)
	}
	return qty
}

// CleanupDB removes all rows from the application tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "appointments", "product_variants", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
