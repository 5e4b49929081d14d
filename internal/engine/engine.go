// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/gustirama/shelfsense/internal/forecast"
	"github.com/gustirama/shelfsense/internal/repository"
	"github.com/rs/zerolog/log"
)

// Engine failure kinds. Callers inspect these with errors.Is to decide
// whether a retry makes sense.
var (
	// ErrMissingWeather is a precondition failure: no observation exists for
	// the run day. Nothing has been written when it is returned.
	ErrMissingWeather = errors.New("missing weather data for target day")

	// ErrForecastService wraps transport or decode failures from the
	// forecasting collaborator. The run aborts before any forecast writes.
	ErrForecastService = errors.New("forecast service failure")
)

const defaultModelVersion = "v1.0"

// Forecaster is the external demand-forecasting collaborator.
type Forecaster interface {
	Forecast(ctx context.Context, req forecast.Request) ([]forecast.Prediction, error)
}

// Engine runs the once-per-day decision process: aggregate inputs, request
// and persist the demand forecast, classify every forecasted product, and
// record one explainable alert per actionable decision.
type Engine struct {
	products   repository.ProductRepository
	inventory  repository.InventoryRepository
	sales      repository.SaleRepository
	weather    repository.WeatherRepository
	forecasts  repository.ForecastRepository
	alerts     repository.AlertRepository
	forecaster Forecaster
}

func New(
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	sales repository.SaleRepository,
	weather repository.WeatherRepository,
	forecasts repository.ForecastRepository,
	alerts repository.AlertRepository,
	forecaster Forecaster,
) *Engine {
	return &Engine{
		products:   products,
		inventory:  inventory,
		sales:      sales,
		weather:    weather,
		forecasts:  forecasts,
		alerts:     alerts,
		forecaster: forecaster,
	}
}

type runInputs struct {
	sales    []domain.SaleRecord
	batches  []domain.InventoryBatch
	weather  *domain.WeatherObservation
	products []domain.Product
}

// Run executes the daily process for targetDay. Decisions target the next
// day: forecasts and alerts are dated targetDay+1. Concurrent runs must be
// serialized by the caller.
func (e *Engine) Run(ctx context.Context, targetDay time.Time) (*domain.RunSummary, error) {
	day := domain.Midnight(targetDay)
	next := day.AddDate(0, 0, 1)

	log.Info().Str("day", day.Format("2006-01-02")).Msg("starting daily decision run")

	in, err := e.aggregateInputs(ctx, day)
	if err != nil {
		return nil, err
	}

	predictions, err := e.forecaster.Forecast(ctx, forecast.Request{
		SalesHistory:    in.sales,
		WeatherForecast: *in.weather,
		Products:        in.products,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForecastService, err)
	}

	stored := make([]domain.ForecastPrediction, 0, len(predictions))
	for _, p := range predictions {
		stored = append(stored, domain.ForecastPrediction{
			ProductID:      p.ProductID,
			Date:           next,
			PredictedUnits: roundUnits(p.PredictedUnits),
			ModelVersion:   defaultModelVersion,
		})
	}
	if err := e.forecasts.ReplaceForDate(ctx, next, stored); err != nil {
		return nil, fmt.Errorf("failed to persist forecasts: %w", err)
	}
	log.Info().Int("count", len(stored)).Str("date", next.Format("2006-01-02")).Msg("forecasts saved")

	// Prior pendings describe conditions this run is about to recompute.
	superseded, err := e.alerts.IgnoreAllPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to supersede pending alerts: %w", err)
	}

	catalog := make(map[string]domain.Product, len(in.products))
	for _, p := range in.products {
		catalog[p.ProductID] = p
	}

	// One snapshot of batches per run; per-product stock never re-reads
	// inventory mid-loop.
	batchesByProduct := make(map[string][]domain.InventoryBatch)
	for _, b := range in.batches {
		batchesByProduct[b.ProductID] = append(batchesByProduct[b.ProductID], b)
	}

	var alerts []domain.Alert
	var skipped []string

	for _, p := range predictions {
		product, ok := catalog[p.ProductID]
		if !ok {
			log.Warn().Str("product_id", p.ProductID).Msg("forecasted product missing from catalog, skipping")
			skipped = append(skipped, p.ProductID)
			continue
		}

		batches := batchesByProduct[p.ProductID]
		currentStock := 0
		for _, b := range batches {
			currentStock += b.Quantity
		}

		d := decideProduct(product, batches, currentStock, p.PredictedUnits, day, in.weather)
		if d == nil {
			continue
		}

		if d.ApplyPrice {
			affected, err := e.inventory.ApplyMarkdown(ctx, p.ProductID, d.ExpiryCutoff, d.NewPrice)
			if err != nil {
				return nil, fmt.Errorf("failed to apply markdown for %s: %w", p.ProductID, err)
			}
			log.Info().
				Str("product_id", p.ProductID).
				Float64("new_price", d.NewPrice).
				Int64("batches", affected).
				Msg("markdown applied")
		}

		alerts = append(alerts, domain.Alert{
			ProductID: p.ProductID,
			Date:      next,
			Type:      d.Type,
			Action:    d.Action,
			Details:   d.Details,
			Status:    domain.StatusPending,
			Reasons:   d.Reasons,
		})
	}

	if err := e.alerts.InsertMany(ctx, alerts); err != nil {
		return nil, fmt.Errorf("failed to record alerts: %w", err)
	}

	log.Info().
		Int("alerts", len(alerts)).
		Int64("superseded", superseded).
		Int("skipped", len(skipped)).
		Msg("daily decision run complete")

	return &domain.RunSummary{
		RunDay:           day,
		TargetDay:        next,
		ForecastsSaved:   len(stored),
		AlertsGenerated:  len(alerts),
		AlertsSuperseded: superseded,
		SkippedProducts:  skipped,
	}, nil
}

// aggregateInputs gathers the trailing sales window, the inventory snapshot,
// the day's weather, and the catalog. Missing weather aborts before any
// writes happen.
func (e *Engine) aggregateInputs(ctx context.Context, day time.Time) (*runInputs, error) {
	sales, err := e.sales.ListBetween(ctx, day.AddDate(0, 0, -salesWindowDays), day)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}

	batches, err := e.inventory.ListInStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	weather, err := e.weather.GetByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load weather: %w", err)
	}
	if weather == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingWeather, day.Format("2006-01-02"))
	}

	products, err := e.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	return &runInputs{
		sales:    sales,
		batches:  batches,
		weather:  weather,
		products: products,
	}, nil
}
