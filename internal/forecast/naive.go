// internal/forecast/naive.go
package forecast

import (
	"sort"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
)

const naiveModelVersion = "naive-v1"

// NaiveForecaster is a deterministic stand-in for the trained demand model.
// It blends the most recent observed sales with a short rolling mean and
// applies weekend, rain, and heat adjustments, which is enough to drive the
// decision engine in local and demo environments.
type NaiveForecaster struct {
	DefaultUnits float64
}

func NewNaiveForecaster() *NaiveForecaster {
	return &NaiveForecaster{DefaultUnits: 10}
}

// ModelVersion identifies this baseline in stored forecasts.
func (f *NaiveForecaster) ModelVersion() string { return naiveModelVersion }

// Predict produces one prediction per product for the day after the weather
// observation's date.
func (f *NaiveForecaster) Predict(req Request) []Prediction {
	tomorrow := domain.Midnight(req.WeatherForecast.Date).AddDate(0, 0, 1)

	byProduct := make(map[string][]domain.SaleRecord)
	for _, sale := range req.SalesHistory {
		byProduct[sale.ProductID] = append(byProduct[sale.ProductID], sale)
	}

	predictions := make([]Prediction, 0, len(req.Products))
	for _, product := range req.Products {
		history := byProduct[product.ProductID]
		sort.Slice(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

		base := f.baseline(history)
		units := f.adjust(base, product, tomorrow, req.WeatherForecast)
		if units < 0 {
			units = 0
		}

		predictions = append(predictions, Prediction{
			ProductID:      product.ProductID,
			PredictedUnits: units,
		})
	}

	return predictions
}

// baseline weighs the last observed day against a rolling mean of up to the
// trailing seven records.
func (f *NaiveForecaster) baseline(history []domain.SaleRecord) float64 {
	if len(history) == 0 {
		return f.DefaultUnits
	}

	lag1 := float64(history[len(history)-1].UnitsSold)

	window := history
	if len(window) > 7 {
		window = window[len(window)-7:]
	}
	var sum float64
	for _, sale := range window {
		sum += float64(sale.UnitsSold)
	}
	mean := sum / float64(len(window))

	return 0.6*lag1 + 0.4*mean
}

func (f *NaiveForecaster) adjust(units float64, product domain.Product, day time.Time, weather domain.WeatherObservation) float64 {
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		units *= 1.25
	}
	if weather.PrecipitationMM > 5 {
		units *= 0.7
	}
	if weather.TemperatureC > 30 && product.Category == "Beverages" {
		units *= 1.3
	}
	return units
}
