// internal/service/dashboard_service.go
package service

import (
	"context"
	"time"

	"github.com/gustirama/shelfsense/internal/cache"
	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/gustirama/shelfsense/internal/repository"
	"github.com/rs/zerolog/log"
)

// DashboardService serves the read-only KPI and current-state views.
type DashboardService struct {
	dashboard repository.DashboardRepository
	inventory repository.InventoryRepository
	sales     repository.SaleRepository
	weather   repository.WeatherRepository
	cache     cache.DashboardCache
}

func NewDashboardService(
	dashboard repository.DashboardRepository,
	inventory repository.InventoryRepository,
	sales repository.SaleRepository,
	weather repository.WeatherRepository,
	cacheImpl cache.DashboardCache,
) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{
		dashboard: dashboard,
		inventory: inventory,
		sales:     sales,
		weather:   weather,
		cache:     cacheImpl,
	}
}

func (s *DashboardService) GetKpis(ctx context.Context) (*domain.Kpis, error) {
	if kpis, ok, err := s.cache.GetKpis(ctx); err == nil && ok {
		return kpis, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get kpis failed")
	}

	kpis, err := s.dashboard.GetKpis(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetKpis(ctx, kpis); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set kpis failed")
	}

	return kpis, nil
}

// GetData bundles in-stock inventory, the day's sales, and the latest
// weather observation.
func (s *DashboardService) GetData(ctx context.Context, day time.Time) (*domain.DashboardData, error) {
	day = domain.Midnight(day)

	inventory, err := s.inventory.ListInStock(ctx)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	weather, err := s.weather.Latest(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardData{
		Inventory:     inventory,
		TodaysSales:   sales,
		LatestWeather: weather,
	}, nil
}
