// internal/simulation/service.go
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/gustirama/shelfsense/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrProductNotFound is returned when a supply request names an unknown product.
var ErrProductNotFound = errors.New("product not found")

// SalesResult summarizes one simulated sales day.
type SalesResult struct {
	Date       time.Time `json:"date"`
	Records    int       `json:"records"`
	TotalValue float64   `json:"total_value"`
}

// Service generates the demo-world inputs the engine consumes: provider
// deliveries, daily sales, and weather observations. It stands in for the
// real store systems and never makes decisions itself.
type Service struct {
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	sales     repository.SaleRepository
	weather   repository.WeatherRepository
	rng       *rand.Rand
}

func NewService(
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	sales repository.SaleRepository,
	weather repository.WeatherRepository,
) *Service {
	return &Service{
		products:  products,
		inventory: inventory,
		sales:     sales,
		weather:   weather,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Supply receives a new delivery batch at the catalog selling price. The
// batch gets an expiry only for perishable products.
func (s *Service) Supply(ctx context.Context, productID string, quantity int) (*domain.InventoryBatch, error) {
	product, err := s.products.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	now := time.Now().UTC()
	batch := &domain.InventoryBatch{
		ProductID:    productID,
		Quantity:     quantity,
		ReceivedDate: now,
		CurrentPrice: product.SellingPrice,
		BatchID:      fmt.Sprintf("BATCH-%s-%d", productID, now.UnixMilli()),
	}
	if product.IsPerishable {
		expiry := now.AddDate(0, 0, product.ShelfLifeDays)
		batch.ExpiryDate = &expiry
	}

	if err := s.inventory.InsertBatch(ctx, batch); err != nil {
		return nil, err
	}

	log.Info().Str("product_id", productID).Int("quantity", quantity).Str("batch_id", batch.BatchID).Msg("provider supply received")
	return batch, nil
}

// SimulateSales generates one day of sales, consuming inventory FIFO by
// expiry at each batch's current price. The price a unit actually sold at is
// what the KPI layer later compares against the catalog price.
func (s *Service) SimulateSales(ctx context.Context, day time.Time) (*SalesResult, error) {
	day = domain.Midnight(day)

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	weather, err := s.weather.GetByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	var records []domain.SaleRecord
	var totalValue float64

	for _, product := range products {
		demand := s.dailyDemand(product, day, weather)
		if demand <= 0 {
			continue
		}

		batches, err := s.inventory.ListInStockByProduct(ctx, product.ProductID)
		if err != nil {
			return nil, err
		}

		remaining := demand
		priceAtSale := product.SellingPrice
		for _, batch := range batches {
			if remaining <= 0 {
				break
			}
			priceAtSale = batch.CurrentPrice
			sold := remaining
			if sold > batch.Quantity {
				sold = batch.Quantity
			}
			if err := s.inventory.UpdateQuantity(ctx, batch.ID, batch.Quantity-sold); err != nil {
				return nil, err
			}
			remaining -= sold
		}

		actualSold := demand - remaining
		if actualSold > 0 {
			records = append(records, domain.SaleRecord{
				ProductID:   product.ProductID,
				Date:        day,
				UnitsSold:   actualSold,
				PriceAtSale: priceAtSale,
			})
			totalValue += float64(actualSold) * priceAtSale
		}
	}

	if err := s.sales.InsertMany(ctx, records); err != nil {
		return nil, err
	}

	log.Info().Str("date", day.Format("2006-01-02")).Int("records", len(records)).Float64("total_value", totalValue).Msg("daily sales simulated")
	return &SalesResult{Date: day, Records: len(records), TotalValue: math.Round(totalValue*100) / 100}, nil
}

func (s *Service) dailyDemand(product domain.Product, day time.Time, weather *domain.WeatherObservation) int {
	base := 15.0
	if product.Category == "Dairy" {
		base = 20.0
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		base *= 1.5
	}
	if weather != nil && weather.PrecipitationMM > 5 {
		base *= 0.7
	}
	return int(math.Floor(base * (0.8 + s.rng.Float64()*0.4)))
}

// GenerateWeather writes a random observation for the day; a second call for
// the same day returns the stored one untouched.
func (s *Service) GenerateWeather(ctx context.Context, day time.Time) (*domain.WeatherObservation, error) {
	day = domain.Midnight(day)

	temperature := 22 + s.rng.Float64()*13
	precipitation := 0.0
	if s.rng.Float64() > 0.7 {
		precipitation = s.rng.Float64() * 25
	}
	condition := "Sunny"
	switch {
	case precipitation > 10:
		condition = "Storm"
	case precipitation > 0:
		condition = "Rainy"
	}

	obs := &domain.WeatherObservation{
		Date:            day,
		TemperatureC:    math.Round(temperature*100) / 100,
		PrecipitationMM: math.Round(precipitation*100) / 100,
		Condition:       condition,
	}

	if err := s.weather.Upsert(ctx, obs); err != nil {
		return nil, err
	}

	return obs, nil
}
