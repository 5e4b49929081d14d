// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
)

// ProductRepository reads the immutable product catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByProductID(ctx context.Context, productID string) (*domain.Product, error)
}

// InventoryRepository reads and mutates inventory batches. ApplyMarkdown only
// ever touches the current price field.
type InventoryRepository interface {
	ListInStock(ctx context.Context) ([]domain.InventoryBatch, error)
	ListInStockByProduct(ctx context.Context, productID string) ([]domain.InventoryBatch, error)
	InsertBatch(ctx context.Context, batch *domain.InventoryBatch) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	ApplyMarkdown(ctx context.Context, productID string, expiryCutoff time.Time, newPrice float64) (int64, error)
}

// SaleRepository reads and appends sale records.
type SaleRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.SaleRecord, error)
	ListByDate(ctx context.Context, day time.Time) ([]domain.SaleRecord, error)
	InsertMany(ctx context.Context, sales []domain.SaleRecord) error
}

// WeatherRepository reads and upserts daily weather observations. GetByDate
// returns (nil, nil) when no observation exists for the day.
type WeatherRepository interface {
	GetByDate(ctx context.Context, day time.Time) (*domain.WeatherObservation, error)
	Latest(ctx context.Context) (*domain.WeatherObservation, error)
	Upsert(ctx context.Context, obs *domain.WeatherObservation) error
}

// ForecastRepository persists demand predictions. ReplaceForDate removes any
// existing prediction set for the date and writes the new one in a single
// transaction, so readers never observe an empty forecast window.
type ForecastRepository interface {
	ReplaceForDate(ctx context.Context, day time.Time, predictions []domain.ForecastPrediction) error
	ListByDate(ctx context.Context, day time.Time) ([]domain.ForecastPrediction, error)
}

// AlertRepository records decisions and their lifecycle.
type AlertRepository interface {
	IgnoreAllPending(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, alerts []domain.Alert) error
	List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AlertStatus) error
}

// DashboardRepository aggregates KPI numbers for the dashboard layer.
type DashboardRepository interface {
	GetKpis(ctx context.Context) (*domain.Kpis, error)
}
