package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		days     int
		wantDays int
	}{
		{name: "explicit window", days: 7, wantDays: 7},
		{name: "default window", days: 0, wantDays: 30},
		{name: "window too large", days: 1000, wantDays: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDashboardRepository)
			svc := NewDashboardService(repo, zerolog.Nop()).(*dashboardService)
			svc.now = func() time.Time { return now }

			since := now.AddDate(0, 0, -tt.wantDays)
			stats := &model.DashboardStats{TotalRevenue: decimal.RequireFromString("1250.00"), TotalOrders: 12}
			repo.On("Stats", ctx, since).Return(stats, nil)
			repo.On("RecentOrders", ctx, 10).Return([]model.Order{{OrderNumber: "ORD-20250330-00000001"}}, nil)
			repo.On("TopProducts", ctx, since, 5).Return([]model.TopProduct{{Name: "Aviator", TotalSold: 4}}, nil)

			dashboard, err := svc.Get(ctx, tt.days)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, dashboard.PeriodDays)
			assert.Equal(t, 12, dashboard.Stats.TotalOrders)
			assert.Len(t, dashboard.RecentOrders, 1)
			assert.Len(t, dashboard.TopProducts, 1)
			repo.AssertExpectations(t)
		})
	}
}

func TestDashboardService_GetError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDashboardRepository)
	svc := NewDashboardService(repo, zerolog.Nop())

	repo.On("Stats", ctx, mock.Anything).Return(nil, errors.New("database error"))

	dashboard, err := svc.Get(ctx, 30)
	require.Error(t, err)
	assert.Nil(t, dashboard)
	repo.AssertNotCalled(t, "RecentOrders", mock.Anything, mock.Anything)
}
