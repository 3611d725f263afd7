package main

import (
	"bytes"
	"testing"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	dashboard := &model.Dashboard{
		PeriodDays: 7,
		Stats: model.DashboardStats{
			TotalRevenue:      decimal.RequireFromString("1234.5"),
			TotalOrders:       12,
			AverageOrderValue: decimal.RequireFromString("102.875"),
			PendingOrders:     3,
		},
		TopProducts: []model.TopProduct{
			{Name: "Aviator Classic", TotalSold: 9, TotalRevenue: decimal.RequireFromString("1161")},
		},
	}
	low := []model.Product{
		{SKU: "RT-204", Name: "Round Tortoise", StockQuantity: 2, LowStockThreshold: 5},
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, dashboard, low))

	out := buf.String()
	assert.Contains(t, out, "Last 7 days")
	assert.Contains(t, out, "1234.50")
	assert.Contains(t, out, "102.88")
	assert.Contains(t, out, "Aviator Classic")
	assert.Contains(t, out, "RT-204")
	assert.Contains(t, out, "Round Tortoise")
}

func TestRender_NoLowStock(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, &model.Dashboard{PeriodDays: 30}, nil))

	out := buf.String()
	assert.Contains(t, out, "Low stock")
	assert.Contains(t, out, "none")
	assert.NotContains(t, out, "Top products")
}
