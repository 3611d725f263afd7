package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultDashboardDays = 30
	recentOrdersLimit    = 10
	topProductsLimit     = 5
)

// dashboardService implements DashboardService.
type dashboardService struct {
	repo   repository.DashboardRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo repository.DashboardRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("service", "dashboard").Logger(),
	}
}

// Get returns the dashboard over the last days days.
func (s *dashboardService) Get(ctx context.Context, days int) (*model.Dashboard, error) {
	if days <= 0 || days > 365 {
		days = defaultDashboardDays
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	stats, err := s.repo.Stats(ctx, since)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute dashboard stats")
		return nil, fmt.Errorf("failed to compute dashboard: %w", err)
	}

	recent, err := s.repo.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}

	top, err := s.repo.TopProducts(ctx, since, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}

	return &model.Dashboard{
		PeriodDays:   days,
		Stats:        *stats,
		RecentOrders: recent,
		TopProducts:  top,
	}, nil
}
