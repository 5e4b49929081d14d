// internal/domain/models.go
package domain

import (
	"time"

	"github.com/lib/pq"
)

// Product is immutable catalog reference data for the decision engine.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	ProductID     string    `json:"product_id" db:"product_id"`
	Name          string    `json:"name" db:"name"`
	Category      string    `json:"category" db:"category"`
	SellingPrice  float64   `json:"selling_price" db:"selling_price"`
	CostPrice     float64   `json:"cost_price" db:"cost_price"`
	IsPerishable  bool      `json:"is_perishable" db:"is_perishable"`
	ShelfLifeDays int       `json:"shelf_life_days" db:"shelf_life_days"`
	WeightKg      float64   `json:"weight_kg" db:"weight_kg"`
	CO2Factor     float64   `json:"co2_factor" db:"co2_factor"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryBatch is a discrete lot of stock for one product. Batches are the
// unit of FIFO-by-expiry consumption and of price assignment.
type InventoryBatch struct {
	ID           int64      `json:"id" db:"id"`
	ProductID    string     `json:"product_id" db:"product_id"`
	Quantity     int        `json:"quantity" db:"quantity"`
	ReceivedDate time.Time  `json:"received_date" db:"received_date"`
	ExpiryDate   *time.Time `json:"expiry_date" db:"expiry_date"`
	CurrentPrice float64    `json:"current_price" db:"current_price"`
	BatchID      string     `json:"batch_id" db:"batch_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// SaleRecord is an append-only record of units sold on a given day.
type SaleRecord struct {
	ID          int64     `json:"id" db:"id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	Date        time.Time `json:"date" db:"date"`
	UnitsSold   int       `json:"units_sold" db:"units_sold"`
	PriceAtSale float64   `json:"price_at_sale" db:"price_at_sale"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// WeatherObservation holds the single observation for a calendar day.
type WeatherObservation struct {
	ID              int64     `json:"id" db:"id"`
	Date            time.Time `json:"date" db:"date"`
	TemperatureC    float64   `json:"temperature_c" db:"temperature_c"`
	PrecipitationMM float64   `json:"precipitation_mm" db:"precipitation_mm"`
	Condition       string    `json:"weather_condition" db:"weather_condition"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ForecastPrediction is the stored predicted demand for a (product, date) pair.
// The full set for a date is replaced each engine run.
type ForecastPrediction struct {
	ID             int64     `json:"id" db:"id"`
	ProductID      string    `json:"product_id" db:"product_id"`
	Date           time.Time `json:"date" db:"date"`
	PredictedUnits int       `json:"predicted_units" db:"predicted_units"`
	ModelVersion   string    `json:"model_version" db:"model_version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type AlertType string

const (
	AlertTypeUnderstock AlertType = "understock"
	AlertTypeOverstock  AlertType = "overstock"
)

type AlertAction string

const (
	ActionReorder     AlertAction = "reorder"
	ActionReducePrice AlertAction = "reduce-price"
	ActionHold        AlertAction = "hold"
)

type AlertStatus string

const (
	StatusPending  AlertStatus = "pending"
	StatusExecuted AlertStatus = "executed"
	StatusIgnored  AlertStatus = "ignored"
)

// Alert is one decision for one product and run. Alerts are never mutated
// after creation except for the status transition.
type Alert struct {
	ID        int64          `json:"id" db:"id"`
	ProductID string         `json:"product_id" db:"product_id"`
	Date      time.Time      `json:"date" db:"date"`
	Type      AlertType      `json:"type" db:"type"`
	Action    AlertAction    `json:"action" db:"action"`
	Details   AlertDetails   `json:"details" db:"-"`
	Status    AlertStatus    `json:"status" db:"status"`
	Reasons   pq.StringArray `json:"reason" db:"reasons"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// AlertFilter narrows alert queries. Zero values mean "no filter".
type AlertFilter struct {
	Status AlertStatus
	Date   *time.Time
	Limit  int
}

// RunSummary is what a daily engine run reports back to the caller.
type RunSummary struct {
	RunDay            time.Time `json:"run_day"`
	TargetDay         time.Time `json:"target_day"`
	ForecastsSaved    int       `json:"forecasts_saved"`
	AlertsGenerated   int       `json:"alerts_generated"`
	AlertsSuperseded  int64     `json:"alerts_superseded"`
	SkippedProducts   []string  `json:"skipped_products,omitempty"`
}

// Kpis aggregates the dashboard headline numbers.
type Kpis struct {
	LossAvoided       float64 `json:"loss_avoided" db:"loss_avoided"`
	MarkdownProfit    float64 `json:"markdown_profit" db:"markdown_profit"`
	ReordersTriggered int     `json:"reorders_triggered" db:"reorders_triggered"`
}

// DashboardData bundles the current-state view the dashboard renders.
type DashboardData struct {
	Inventory     []InventoryBatch    `json:"inventory"`
	TodaysSales   []SaleRecord        `json:"todays_sales"`
	LatestWeather *WeatherObservation `json:"latest_weather"`
}

// Midnight truncates t to the start of its UTC day. All date-keyed records
// (sales, weather, forecasts, alerts) are stored at day granularity.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
