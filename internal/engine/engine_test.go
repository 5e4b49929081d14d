package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/gustirama/shelfsense/internal/forecast"
)

type fakeProductRepo struct {
	products []domain.Product
}

func (f *fakeProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ProductID == productID {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

type fakeInventoryRepo struct {
	batches []domain.InventoryBatch
}

func (f *fakeInventoryRepo) ListInStock(ctx context.Context) ([]domain.InventoryBatch, error) {
	var out []domain.InventoryBatch
	for _, b := range f.batches {
		if b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) ListInStockByProduct(ctx context.Context, productID string) ([]domain.InventoryBatch, error) {
	var out []domain.InventoryBatch
	for _, b := range f.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) InsertBatch(ctx context.Context, batch *domain.InventoryBatch) error {
	batch.ID = int64(len(f.batches) + 1)
	f.batches = append(f.batches, *batch)
	return nil
}

func (f *fakeInventoryRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	for i := range f.batches {
		if f.batches[i].ID == id {
			f.batches[i].Quantity = quantity
			return nil
		}
	}
	return errors.New("batch not found")
}

func (f *fakeInventoryRepo) ApplyMarkdown(ctx context.Context, productID string, expiryCutoff time.Time, newPrice float64) (int64, error) {
	var affected int64
	for i := range f.batches {
		b := &f.batches[i]
		if b.ProductID != productID || b.ExpiryDate == nil {
			continue
		}
		if b.ExpiryDate.After(expiryCutoff) {
			continue
		}
		b.CurrentPrice = newPrice
		affected++
	}
	return affected, nil
}

type fakeSaleRepo struct {
	records []domain.SaleRecord
}

func (f *fakeSaleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]domain.SaleRecord, error) {
	var out []domain.SaleRecord
	for _, s := range f.records {
		if !s.Date.Before(from) && s.Date.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSaleRepo) ListByDate(ctx context.Context, day time.Time) ([]domain.SaleRecord, error) {
	var out []domain.SaleRecord
	for _, s := range f.records {
		if s.Date.Equal(day) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSaleRepo) InsertMany(ctx context.Context, sales []domain.SaleRecord) error {
	f.records = append(f.records, sales...)
	return nil
}

type fakeWeatherRepo struct {
	byDate map[string]*domain.WeatherObservation
}

func (f *fakeWeatherRepo) GetByDate(ctx context.Context, day time.Time) (*domain.WeatherObservation, error) {
	return f.byDate[day.Format("2006-01-02")], nil
}

func (f *fakeWeatherRepo) Latest(ctx context.Context) (*domain.WeatherObservation, error) {
	var latest *domain.WeatherObservation
	for _, obs := range f.byDate {
		if latest == nil || obs.Date.After(latest.Date) {
			latest = obs
		}
	}
	return latest, nil
}

func (f *fakeWeatherRepo) Upsert(ctx context.Context, obs *domain.WeatherObservation) error {
	key := obs.Date.Format("2006-01-02")
	if _, exists := f.byDate[key]; !exists {
		f.byDate[key] = obs
	}
	return nil
}

type fakeForecastRepo struct {
	byDate   map[string][]domain.ForecastPrediction
	replaces int
}

func (f *fakeForecastRepo) ReplaceForDate(ctx context.Context, day time.Time, predictions []domain.ForecastPrediction) error {
	if f.byDate == nil {
		f.byDate = make(map[string][]domain.ForecastPrediction)
	}
	f.byDate[day.Format("2006-01-02")] = predictions
	f.replaces++
	return nil
}

func (f *fakeForecastRepo) ListByDate(ctx context.Context, day time.Time) ([]domain.ForecastPrediction, error) {
	return f.byDate[day.Format("2006-01-02")], nil
}

type fakeAlertRepo struct {
	alerts []domain.Alert
	nextID int64
}

func (f *fakeAlertRepo) IgnoreAllPending(ctx context.Context) (int64, error) {
	var n int64
	for i := range f.alerts {
		if f.alerts[i].Status == domain.StatusPending {
			f.alerts[i].Status = domain.StatusIgnored
			n++
		}
	}
	return n, nil
}

func (f *fakeAlertRepo) InsertMany(ctx context.Context, alerts []domain.Alert) error {
	for _, a := range alerts {
		f.nextID++
		a.ID = f.nextID
		f.alerts = append(f.alerts, a)
	}
	return nil
}

func (f *fakeAlertRepo) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	var out []domain.Alert
	for _, a := range f.alerts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Date != nil && !a.Date.Equal(*filter.Date) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAlertRepo) UpdateStatus(ctx context.Context, id int64, status domain.AlertStatus) error {
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Status = status
			return nil
		}
	}
	return errors.New("alert not found")
}

func (f *fakeAlertRepo) pending() []domain.Alert {
	var out []domain.Alert
	for _, a := range f.alerts {
		if a.Status == domain.StatusPending {
			out = append(out, a)
		}
	}
	return out
}

type fakeForecaster struct {
	predictions []forecast.Prediction
	err         error
	lastRequest *forecast.Request
}

func (f *fakeForecaster) Forecast(ctx context.Context, req forecast.Request) ([]forecast.Prediction, error) {
	f.lastRequest = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.predictions, nil
}

type fixture struct {
	products  *fakeProductRepo
	inventory *fakeInventoryRepo
	sales     *fakeSaleRepo
	weather   *fakeWeatherRepo
	forecasts *fakeForecastRepo
	alerts    *fakeAlertRepo
	model     *fakeForecaster
	engine    *Engine
}

func newFixture() *fixture {
	f := &fixture{
		products:  &fakeProductRepo{},
		inventory: &fakeInventoryRepo{},
		sales:     &fakeSaleRepo{},
		weather:   &fakeWeatherRepo{byDate: map[string]*domain.WeatherObservation{}},
		forecasts: &fakeForecastRepo{},
		alerts:    &fakeAlertRepo{},
		model:     &fakeForecaster{},
	}
	f.engine = New(f.products, f.inventory, f.sales, f.weather, f.forecasts, f.alerts, f.model)
	return f
}

func (f *fixture) withWeather(day time.Time, precipitationMM float64) {
	f.weather.byDate[day.Format("2006-01-02")] = &domain.WeatherObservation{
		Date:            day,
		TemperatureC:    24,
		PrecipitationMM: precipitationMM,
		Condition:       "Sunny",
	}
}

func TestRunMissingWeatherAbortsBeforeAnyWrite(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")

	f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
	f.alerts.alerts = []domain.Alert{{ID: 1, ProductID: "PROD-TEST", Status: domain.StatusPending}}
	f.alerts.nextID = 1
	f.model.predictions = []forecast.Prediction{{ProductID: "PROD-TEST", PredictedUnits: 100}}

	_, err := f.engine.Run(context.Background(), runDay)
	if !errors.Is(err, ErrMissingWeather) {
		t.Fatalf("err = %v, want ErrMissingWeather", err)
	}
	if f.model.lastRequest != nil {
		t.Error("forecaster must not be called without weather")
	}
	if f.forecasts.replaces != 0 {
		t.Error("no forecasts may be written without weather")
	}
	if f.alerts.alerts[0].Status != domain.StatusPending {
		t.Error("prior pending alerts must survive an aborted run")
	}
}

func TestRunForecastFailureAbortsBeforeAnyWrite(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")

	f.withWeather(runDay, 0)
	f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
	f.alerts.alerts = []domain.Alert{{ID: 1, ProductID: "PROD-TEST", Status: domain.StatusPending}}
	f.alerts.nextID = 1
	f.model.err = errors.New("connection refused")

	_, err := f.engine.Run(context.Background(), runDay)
	if !errors.Is(err, ErrForecastService) {
		t.Fatalf("err = %v, want ErrForecastService", err)
	}
	if f.forecasts.replaces != 0 {
		t.Error("no forecasts may be written after a model failure")
	}
	if f.alerts.alerts[0].Status != domain.StatusPending {
		t.Error("prior pending alerts must survive an aborted run")
	}
}

func TestRunGeneratesAlertsAndForecasts(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")
	nextDay := runDay.AddDate(0, 0, 1)
	nearExpiry := runDay.AddDate(0, 0, 2)
	farExpiry := runDay.AddDate(0, 0, 9)

	f.withWeather(runDay, 0)
	f.products.products = []domain.Product{
		{ProductID: "PROD-MILK", Name: "Milk", SellingPrice: 40, CostPrice: 25, IsPerishable: true, ShelfLifeDays: 4},
		{ProductID: "PROD-YOG", Name: "Yogurt", SellingPrice: 35, CostPrice: 20, IsPerishable: true, ShelfLifeDays: 6},
		{ProductID: "PROD-COLA", Name: "Cola", SellingPrice: 90, CostPrice: 60, IsPerishable: false},
		{ProductID: "PROD-RICE", Name: "Rice", SellingPrice: 120, CostPrice: 90, IsPerishable: false},
	}
	f.inventory.batches = []domain.InventoryBatch{
		{ID: 1, ProductID: "PROD-MILK", Quantity: 60, CurrentPrice: 40, ExpiryDate: &nearExpiry, BatchID: "B-MILK"},
		{ID: 2, ProductID: "PROD-YOG", Quantity: 150, CurrentPrice: 35, ExpiryDate: &nearExpiry, BatchID: "B-YOG-NEAR"},
		{ID: 3, ProductID: "PROD-YOG", Quantity: 50, CurrentPrice: 35, ExpiryDate: &farExpiry, BatchID: "B-YOG-FAR"},
		{ID: 4, ProductID: "PROD-COLA", Quantity: 500, CurrentPrice: 90, BatchID: "B-COLA"},
		{ID: 5, ProductID: "PROD-RICE", Quantity: 110, CurrentPrice: 120, BatchID: "B-RICE"},
	}
	f.model.predictions = []forecast.Prediction{
		{ProductID: "PROD-MILK", PredictedUnits: 100.4},
		{ProductID: "PROD-YOG", PredictedUnits: 100},
		{ProductID: "PROD-COLA", PredictedUnits: 100},
		{ProductID: "PROD-RICE", PredictedUnits: 100},
	}

	summary, err := f.engine.Run(context.Background(), runDay)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if summary.ForecastsSaved != 4 {
		t.Errorf("forecasts saved = %d, want 4", summary.ForecastsSaved)
	}
	if summary.AlertsGenerated != 2 {
		t.Errorf("alerts generated = %d, want 2", summary.AlertsGenerated)
	}
	if !summary.TargetDay.Equal(nextDay) {
		t.Errorf("target day = %v, want %v", summary.TargetDay, nextDay)
	}

	stored, _ := f.forecasts.ListByDate(context.Background(), nextDay)
	if len(stored) != 4 {
		t.Fatalf("stored forecasts = %d, want 4", len(stored))
	}
	if stored[0].ProductID != "PROD-MILK" || stored[0].PredictedUnits != 100 {
		t.Errorf("stored forecast = %+v, want PROD-MILK with 100 units", stored[0])
	}
	if stored[0].ModelVersion == "" {
		t.Error("stored forecast missing model version")
	}

	byProduct := make(map[string]domain.Alert)
	for _, a := range f.alerts.pending() {
		byProduct[a.ProductID] = a
	}

	milk, ok := byProduct["PROD-MILK"]
	if !ok {
		t.Fatal("expected a reorder alert for PROD-MILK")
	}
	if milk.Action != domain.ActionReorder || milk.Type != domain.AlertTypeUnderstock {
		t.Errorf("milk alert = %s/%s, want understock/reorder", milk.Type, milk.Action)
	}
	if !milk.Date.Equal(nextDay) {
		t.Errorf("milk alert date = %v, want %v", milk.Date, nextDay)
	}

	yog, ok := byProduct["PROD-YOG"]
	if !ok {
		t.Fatal("expected a markdown alert for PROD-YOG")
	}
	if yog.Action != domain.ActionReducePrice {
		t.Errorf("yogurt alert action = %s, want reduce-price", yog.Action)
	}
	details, ok := yog.Details.(domain.MarkdownDetails)
	if !ok {
		t.Fatalf("yogurt details type %T, want MarkdownDetails", yog.Details)
	}
	if details.CurrentStock != 200 {
		t.Errorf("yogurt current stock = %d, want 200 (both batches)", details.CurrentStock)
	}

	// Markdown reprices the near-expiry batch and leaves the later one alone.
	if f.inventory.batches[1].CurrentPrice != details.NewPrice {
		t.Errorf("near batch price = %v, want %v", f.inventory.batches[1].CurrentPrice, details.NewPrice)
	}
	if f.inventory.batches[2].CurrentPrice != 35 {
		t.Errorf("far batch price = %v, want untouched 35", f.inventory.batches[2].CurrentPrice)
	}

	// Durable overstock and balanced durable stock stay silent.
	if _, ok := byProduct["PROD-COLA"]; ok {
		t.Error("durable overstock must not produce an alert")
	}
	if _, ok := byProduct["PROD-RICE"]; ok {
		t.Error("balanced stock must not produce an alert")
	}
}

func TestRunSupersedesPriorPendings(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")

	f.withWeather(runDay, 0)
	f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
	f.inventory.batches = []domain.InventoryBatch{{ID: 1, ProductID: "PROD-TEST", Quantity: 60, CurrentPrice: 40, BatchID: "B1"}}
	f.model.predictions = []forecast.Prediction{{ProductID: "PROD-TEST", PredictedUnits: 100}}

	first, err := f.engine.Run(context.Background(), runDay)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.AlertsSuperseded != 0 {
		t.Errorf("first run superseded = %d, want 0", first.AlertsSuperseded)
	}

	second, err := f.engine.Run(context.Background(), runDay)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.AlertsSuperseded != 1 {
		t.Errorf("second run superseded = %d, want 1", second.AlertsSuperseded)
	}

	pending := f.alerts.pending()
	if len(pending) != 1 {
		t.Fatalf("pending alerts after rerun = %d, want 1", len(pending))
	}
	if pending[0].ID != 2 {
		t.Errorf("pending alert ID = %d, want the second run's alert", pending[0].ID)
	}
	if f.alerts.alerts[0].Status != domain.StatusIgnored {
		t.Errorf("first alert status = %s, want ignored", f.alerts.alerts[0].Status)
	}

	// The forecast set for the target day is replaced, not accumulated.
	stored, _ := f.forecasts.ListByDate(context.Background(), runDay.AddDate(0, 0, 1))
	if len(stored) != 1 {
		t.Errorf("stored forecasts after rerun = %d, want 1", len(stored))
	}
}

func TestRunSkipsProductsMissingFromCatalog(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")

	f.withWeather(runDay, 0)
	f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
	f.inventory.batches = []domain.InventoryBatch{{ID: 1, ProductID: "PROD-TEST", Quantity: 60, CurrentPrice: 40, BatchID: "B1"}}
	f.model.predictions = []forecast.Prediction{
		{ProductID: "PROD-GHOST", PredictedUnits: 50},
		{ProductID: "PROD-TEST", PredictedUnits: 100},
	}

	summary, err := f.engine.Run(context.Background(), runDay)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(summary.SkippedProducts) != 1 || summary.SkippedProducts[0] != "PROD-GHOST" {
		t.Errorf("skipped = %v, want [PROD-GHOST]", summary.SkippedProducts)
	}
	if summary.AlertsGenerated != 1 {
		t.Errorf("alerts generated = %d, want 1 (the known product still runs)", summary.AlertsGenerated)
	}
}

func TestRunRainReasonThreshold(t *testing.T) {
	for _, tc := range []struct {
		name            string
		precipitationMM float64
		wantRainReason  bool
	}{
		{"above threshold", 6, true},
		{"at threshold", 5, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			runDay := day(t, "2025-07-10")
			nearExpiry := runDay.AddDate(0, 0, 2)

			f.withWeather(runDay, tc.precipitationMM)
			f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
			f.inventory.batches = []domain.InventoryBatch{
				{ID: 1, ProductID: "PROD-TEST", Quantity: 150, CurrentPrice: 40, ExpiryDate: &nearExpiry, BatchID: "B1"},
			}
			f.model.predictions = []forecast.Prediction{{ProductID: "PROD-TEST", PredictedUnits: 100}}

			if _, err := f.engine.Run(context.Background(), runDay); err != nil {
				t.Fatalf("run failed: %v", err)
			}

			pending := f.alerts.pending()
			if len(pending) != 1 {
				t.Fatalf("pending alerts = %d, want 1", len(pending))
			}
			if got := containsReason(pending[0].Reasons, rainyWeatherReason); got != tc.wantRainReason {
				t.Errorf("rain reason present = %v, want %v (reasons %v)", got, tc.wantRainReason, pending[0].Reasons)
			}
		})
	}
}

func TestRunExcludesEmptyBatchesFromStock(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")

	f.withWeather(runDay, 0)
	f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
	// 110 live units plus an empty batch that would tip the count to
	// overstock if it were included.
	f.inventory.batches = []domain.InventoryBatch{
		{ID: 1, ProductID: "PROD-TEST", Quantity: 110, CurrentPrice: 40, BatchID: "B-LIVE"},
		{ID: 2, ProductID: "PROD-TEST", Quantity: 0, CurrentPrice: 40, BatchID: "B-EMPTY"},
	}
	f.model.predictions = []forecast.Prediction{{ProductID: "PROD-TEST", PredictedUnits: 100}}

	summary, err := f.engine.Run(context.Background(), runDay)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.AlertsGenerated != 0 {
		t.Errorf("alerts generated = %d, want 0 for balanced live stock", summary.AlertsGenerated)
	}
}

func TestRunPassesSalesWindowToForecaster(t *testing.T) {
	f := newFixture()
	runDay := day(t, "2025-07-10")

	f.withWeather(runDay, 0)
	f.products.products = []domain.Product{perishableProduct(40, 25, 4)}
	f.sales.records = []domain.SaleRecord{
		{ProductID: "PROD-TEST", Date: day(t, "2025-07-06"), UnitsSold: 5},  // before the window
		{ProductID: "PROD-TEST", Date: day(t, "2025-07-07"), UnitsSold: 10}, // window start
		{ProductID: "PROD-TEST", Date: day(t, "2025-07-09"), UnitsSold: 12},
		{ProductID: "PROD-TEST", Date: day(t, "2025-07-10"), UnitsSold: 8}, // run day is excluded
	}
	f.model.predictions = nil

	if _, err := f.engine.Run(context.Background(), runDay); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if f.model.lastRequest == nil {
		t.Fatal("forecaster was not called")
	}
	if got := len(f.model.lastRequest.SalesHistory); got != 2 {
		t.Fatalf("sales history length = %d, want 2", got)
	}
	for _, s := range f.model.lastRequest.SalesHistory {
		if s.Date.Before(day(t, "2025-07-07")) || !s.Date.Before(runDay) {
			t.Errorf("sale dated %v is outside the trailing window", s.Date)
		}
	}
}
