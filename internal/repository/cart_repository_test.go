package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_Lifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCartRepository(pool, zerolog.Nop())
	ctx := context.Background()

	user := seedUser(t, pool, "cart@example.com")
	product := seedProduct(t, pool, "SKU-001", "25.00", 10)
	variant := seedVariant(t, pool, product.ID, "SKU-001-BLK", 3)

	now := time.Now().UTC().Truncate(time.Microsecond)
	plain := &model.CartItem{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("25.00"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	withVariant := &model.CartItem{
		ID:               uuid.New(),
		UserID:           user.ID,
		ProductID:        product.ID,
		ProductVariantID: &variant.ID,
		Quantity:         1,
		UnitPrice:        decimal.RequireFromString("25.00"),
		CreatedAt:        now.Add(time.Second),
		UpdatedAt:        now.Add(time.Second),
	}
	require.NoError(t, repo.Create(ctx, plain))
	require.NoError(t, repo.Create(ctx, withVariant))

	items, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, plain.ID, items[0].ID)
	assert.Equal(t, product.Name, items[0].ProductName)
	assert.True(t, items[0].TrackInventory)
	assert.Equal(t, 10, items[0].StockQuantity)
	assert.Equal(t, "SKU-001-BLK", items[1].ProductSKU)
	assert.Equal(t, 3, items[1].StockQuantity)

	// FindLine distinguishes lines by variant.
	line, err := repo.FindLine(ctx, user.ID, product.ID, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, plain.ID, line.ID)

	line, err = repo.FindLine(ctx, user.ID, product.ID, &variant.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, withVariant.ID, line.ID)

	plain.Quantity = 5
	plain.SpecialInstructions = "gift wrap"
	require.NoError(t, repo.Update(ctx, plain))

	got, err := repo.GetByID(ctx, user.ID, plain.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "gift wrap", got.SpecialInstructions)

	count, err := repo.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Another user cannot see or delete the line.
	other := seedUser(t, pool, "other@example.com")
	got, err = repo.GetByID(ctx, other.ID, plain.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err := repo.Delete(ctx, other.ID, plain.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// DeleteItems runs in the caller's transaction.
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteItems(ctx, tx, user.ID, []uuid.UUID{withVariant.ID}))
	require.NoError(t, tx.Commit(ctx))

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.DeleteItems(ctx, tx, user.ID, []uuid.UUID{withVariant.ID, plain.ID}), ErrCartChanged)
	require.NoError(t, tx.Rollback(ctx))

	count, err = repo.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	deleted, err = repo.Delete(ctx, user.ID, plain.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, repo.Clear(ctx, user.ID))
	items, err = repo.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
