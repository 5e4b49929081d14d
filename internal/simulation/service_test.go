package simulation

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
)

type fakeProducts struct{ products []domain.Product }

func (f *fakeProducts) List(ctx context.Context) ([]domain.Product, error) { return f.products, nil }

func (f *fakeProducts) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ProductID == productID {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

type fakeInventory struct{ batches []domain.InventoryBatch }

func (f *fakeInventory) ListInStock(ctx context.Context) ([]domain.InventoryBatch, error) {
	return f.batches, nil
}

// Returns batches in stored order; fixtures are arranged earliest expiry first.
func (f *fakeInventory) ListInStockByProduct(ctx context.Context, productID string) ([]domain.InventoryBatch, error) {
	var out []domain.InventoryBatch
	for _, b := range f.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeInventory) InsertBatch(ctx context.Context, batch *domain.InventoryBatch) error {
	batch.ID = int64(len(f.batches) + 1)
	f.batches = append(f.batches, *batch)
	return nil
}

func (f *fakeInventory) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	for i := range f.batches {
		if f.batches[i].ID == id {
			f.batches[i].Quantity = quantity
			return nil
		}
	}
	return errors.New("batch not found")
}

func (f *fakeInventory) ApplyMarkdown(ctx context.Context, productID string, expiryCutoff time.Time, newPrice float64) (int64, error) {
	return 0, nil
}

type fakeSales struct{ records []domain.SaleRecord }

func (f *fakeSales) ListBetween(ctx context.Context, from, to time.Time) ([]domain.SaleRecord, error) {
	return nil, nil
}

func (f *fakeSales) ListByDate(ctx context.Context, day time.Time) ([]domain.SaleRecord, error) {
	return nil, nil
}

func (f *fakeSales) InsertMany(ctx context.Context, sales []domain.SaleRecord) error {
	f.records = append(f.records, sales...)
	return nil
}

type fakeWeather struct{ byDate map[string]*domain.WeatherObservation }

func (f *fakeWeather) GetByDate(ctx context.Context, day time.Time) (*domain.WeatherObservation, error) {
	return f.byDate[day.Format("2006-01-02")], nil
}

func (f *fakeWeather) Latest(ctx context.Context) (*domain.WeatherObservation, error) {
	return nil, nil
}

func (f *fakeWeather) Upsert(ctx context.Context, obs *domain.WeatherObservation) error {
	key := obs.Date.Format("2006-01-02")
	if _, exists := f.byDate[key]; !exists {
		f.byDate[key] = obs
	}
	return nil
}

func newTestService(products *fakeProducts, inventory *fakeInventory, sales *fakeSales, weather *fakeWeather) *Service {
	svc := NewService(products, inventory, sales, weather)
	svc.rng = rand.New(rand.NewSource(1))
	return svc
}

func TestSupplyPerishableGetsExpiry(t *testing.T) {
	products := &fakeProducts{products: []domain.Product{
		{ProductID: "PROD-MILK", SellingPrice: 40, IsPerishable: true, ShelfLifeDays: 4},
	}}
	inventory := &fakeInventory{}
	svc := newTestService(products, inventory, &fakeSales{}, &fakeWeather{})

	batch, err := svc.Supply(context.Background(), "PROD-MILK", 30)
	if err != nil {
		t.Fatalf("Supply failed: %v", err)
	}

	if batch.Quantity != 30 || batch.CurrentPrice != 40 {
		t.Errorf("batch = %+v, want 30 units at the catalog price", batch)
	}
	if batch.ExpiryDate == nil {
		t.Fatal("perishable batch must carry an expiry date")
	}
	if got := int(batch.ExpiryDate.Sub(batch.ReceivedDate).Hours() / 24); got != 4 {
		t.Errorf("shelf life on batch = %d days, want 4", got)
	}
	if len(inventory.batches) != 1 {
		t.Errorf("inserted batches = %d, want 1", len(inventory.batches))
	}
}

func TestSupplyDurableHasNoExpiry(t *testing.T) {
	products := &fakeProducts{products: []domain.Product{
		{ProductID: "PROD-RICE", SellingPrice: 120, IsPerishable: false},
	}}
	svc := newTestService(products, &fakeInventory{}, &fakeSales{}, &fakeWeather{})

	batch, err := svc.Supply(context.Background(), "PROD-RICE", 50)
	if err != nil {
		t.Fatalf("Supply failed: %v", err)
	}
	if batch.ExpiryDate != nil {
		t.Errorf("durable batch expiry = %v, want none", batch.ExpiryDate)
	}
}

func TestSupplyUnknownProduct(t *testing.T) {
	svc := newTestService(&fakeProducts{}, &fakeInventory{}, &fakeSales{}, &fakeWeather{})

	_, err := svc.Supply(context.Background(), "PROD-GHOST", 10)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestSimulateSalesConsumesFIFO(t *testing.T) {
	day := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC) // a Wednesday
	near := day.AddDate(0, 0, 1)
	far := day.AddDate(0, 0, 5)

	products := &fakeProducts{products: []domain.Product{
		{ProductID: "PROD-MILK", Category: "Dairy", SellingPrice: 40, IsPerishable: true, ShelfLifeDays: 4},
	}}
	inventory := &fakeInventory{batches: []domain.InventoryBatch{
		{ID: 1, ProductID: "PROD-MILK", Quantity: 5, CurrentPrice: 21, ExpiryDate: &near, BatchID: "B-NEAR"},
		{ID: 2, ProductID: "PROD-MILK", Quantity: 100, CurrentPrice: 40, ExpiryDate: &far, BatchID: "B-FAR"},
	}}
	sales := &fakeSales{}
	svc := newTestService(products, inventory, sales, &fakeWeather{})

	result, err := svc.SimulateSales(context.Background(), day)
	if err != nil {
		t.Fatalf("SimulateSales failed: %v", err)
	}

	if result.Records != 1 {
		t.Fatalf("records = %d, want 1", result.Records)
	}
	if len(sales.records) != 1 {
		t.Fatalf("inserted sales = %d, want 1", len(sales.records))
	}

	sale := sales.records[0]
	// Dairy base is 20 and the random factor stays within [0.8, 1.2).
	if sale.UnitsSold < 16 || sale.UnitsSold > 23 {
		t.Errorf("units sold = %d, want within the weekday dairy demand band", sale.UnitsSold)
	}
	if !sale.Date.Equal(day) {
		t.Errorf("sale date = %v, want %v", sale.Date, day)
	}

	// The near-expiry batch drains before the fresh one is touched.
	if inventory.batches[0].Quantity != 0 {
		t.Errorf("near batch quantity = %d, want 0", inventory.batches[0].Quantity)
	}
	if drained := 100 - inventory.batches[1].Quantity; drained != sale.UnitsSold-5 {
		t.Errorf("far batch drained %d units, want %d", drained, sale.UnitsSold-5)
	}
}

func TestSimulateSalesCapsAtAvailableStock(t *testing.T) {
	day := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)

	products := &fakeProducts{products: []domain.Product{
		{ProductID: "PROD-MILK", Category: "Dairy", SellingPrice: 40},
	}}
	inventory := &fakeInventory{batches: []domain.InventoryBatch{
		{ID: 1, ProductID: "PROD-MILK", Quantity: 3, CurrentPrice: 40, BatchID: "B1"},
	}}
	sales := &fakeSales{}
	svc := newTestService(products, inventory, sales, &fakeWeather{})

	result, err := svc.SimulateSales(context.Background(), day)
	if err != nil {
		t.Fatalf("SimulateSales failed: %v", err)
	}

	if len(sales.records) != 1 || sales.records[0].UnitsSold != 3 {
		t.Fatalf("sales = %+v, want all 3 available units sold", sales.records)
	}
	if result.TotalValue != 120 {
		t.Errorf("total value = %v, want 120", result.TotalValue)
	}
	if inventory.batches[0].Quantity != 0 {
		t.Errorf("batch quantity = %d, want 0", inventory.batches[0].Quantity)
	}
}

func TestGenerateWeatherIsIdempotentPerDay(t *testing.T) {
	day := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	weather := &fakeWeather{byDate: map[string]*domain.WeatherObservation{}}
	svc := newTestService(&fakeProducts{}, &fakeInventory{}, &fakeSales{}, weather)

	first, err := svc.GenerateWeather(context.Background(), day)
	if err != nil {
		t.Fatalf("GenerateWeather failed: %v", err)
	}
	if _, err := svc.GenerateWeather(context.Background(), day); err != nil {
		t.Fatalf("second GenerateWeather failed: %v", err)
	}

	stored := weather.byDate[day.Format("2006-01-02")]
	if stored.TemperatureC != first.TemperatureC || stored.Condition != first.Condition {
		t.Errorf("stored observation = %+v, want the first write kept", stored)
	}
}
