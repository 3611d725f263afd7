package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and applies the application schema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Create schema
	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedUser inserts a customer and returns it.
func seedUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         model.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), u))
	return u
}

// seedProduct inserts a tracked, active product and returns it.
func seedProduct(t *testing.T, pool *pgxpool.Pool, sku string, price string, stock int) *model.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &model.Product{
		ID:                uuid.New(),
		SKU:               sku,
		Name:              "Frame " + sku,
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		TrackInventory:    true,
		LowStockThreshold: 5,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, NewProductRepository(pool, zerolog.Nop()).Create(context.Background(), p))
	return p
}

// seedVariant inserts a variant of productID and returns it.
func seedVariant(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, sku string, stock int) *model.ProductVariant {
	v := &model.ProductVariant{
		ID:            uuid.New(),
		ProductID:     productID,
		SKU:           sku,
		Name:          "Variant " + sku,
		StockQuantity: stock,
		IsActive:      true,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO product_variants (id, product_id, sku, name, price, stock_quantity, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.ProductID, v.SKU, v.Name, v.Price, v.StockQuantity, v.IsActive,
	)
	require.NoError(t, err)
	return v
}
