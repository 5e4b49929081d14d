package main

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"
)

type productSeed struct {
	ProductID      string
	Name           string
	Category       string
	SellingPrice   float64
	CostPrice      float64
	IsPerishable   bool
	ShelfLifeDays  int
	BaseDailySales float64
	WeightKg       float64
	CO2Factor      float64
}

var productsData = []productSeed{
	{"PROD001", "Fresh Milk 1L", "Dairy", 50.0, 30.0, true, 7, 30, 1.0, 1.5},
	{"PROD002", "Whole Wheat Bread", "Bakery", 40.0, 25.0, true, 4, 25, 0.5, 0.8},
	{"PROD003", "Cheddar Cheese 200g", "Dairy", 150.0, 100.0, true, 30, 10, 0.2, 5.4},
	{"PROD004", "Cola 2L", "Beverages", 90.0, 60.0, false, 365, 40, 2.0, 0.5},
	{"PROD005", "Lays Chips Classic", "Snacks", 20.0, 12.0, false, 180, 50, 0.1, 0.7},
	{"PROD006", "Fresh Apples 1kg", "Produce", 120.0, 80.0, true, 10, 15, 1.0, 0.4},
	{"PROD007", "Detergent 1kg", "Household", 250.0, 180.0, false, 730, 8, 1.0, 3.0},
}

func runMaster(c *cli.Context) error {
	db := dbFrom(c)

	query := `
		INSERT INTO products (
			product_id, name, category, selling_price, cost_price,
			is_perishable, shelf_life_days, weight_kg, co2_factor, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (product_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			selling_price = EXCLUDED.selling_price,
			cost_price = EXCLUDED.cost_price,
			is_perishable = EXCLUDED.is_perishable,
			shelf_life_days = EXCLUDED.shelf_life_days,
			weight_kg = EXCLUDED.weight_kg,
			co2_factor = EXCLUDED.co2_factor,
			updated_at = NOW()
	`

	for _, p := range productsData {
		_, err := db.ExecContext(c.Context, query,
			p.ProductID, p.Name, p.Category, p.SellingPrice, p.CostPrice,
			p.IsPerishable, p.ShelfLifeDays, p.WeightKg, p.CO2Factor,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ProductID, err)
		}
	}

	log.Printf("seeded %d products", len(productsData))
	return nil
}

// runHistory generates trailing weather and sales relative to today,
// replacing any existing history so repeated seed runs stay consistent.
func runHistory(c *cli.Context) error {
	db := dbFrom(c)
	days := c.Int("days")
	if days <= 0 {
		days = 180
	}

	today := midnightUTC(time.Now())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if _, err := db.ExecContext(c.Context, `DELETE FROM sales`); err != nil {
		return fmt.Errorf("failed to clear sales: %w", err)
	}
	if _, err := db.ExecContext(c.Context, `DELETE FROM weather_observations`); err != nil {
		return fmt.Errorf("failed to clear weather: %w", err)
	}

	weatherStmt, err := db.PrepareContext(c.Context, `
		INSERT INTO weather_observations (date, temperature_c, precipitation_mm, weather_condition)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare weather insert: %w", err)
	}
	defer weatherStmt.Close()

	salesStmt, err := db.PrepareContext(c.Context, `
		INSERT INTO sales (product_id, date, units_sold, price_at_sale)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sales insert: %w", err)
	}
	defer salesStmt.Close()

	var weatherCount, salesCount int
	for i := days; i >= 1; i-- {
		date := today.AddDate(0, 0, -i)
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday

		temperature := 22 + rng.Float64()*13
		precipitation := 0.0
		if rng.Float64() > 0.7 {
			precipitation = rng.Float64() * 25
		}
		condition := "Sunny"
		switch {
		case precipitation > 10:
			condition = "Storm"
		case precipitation > 0:
			condition = "Rainy"
		}

		if _, err := weatherStmt.ExecContext(c.Context, date, temperature, precipitation, condition); err != nil {
			return fmt.Errorf("failed to insert weather for %s: %w", date.Format("2006-01-02"), err)
		}
		weatherCount++

		for _, p := range productsData {
			units := p.BaseDailySales
			if weekend {
				if p.Category == "Snacks" || p.Category == "Beverages" {
					units *= 1.8
				} else {
					units *= 1.3
				}
			}
			if temperature > 30 && p.Category == "Beverages" {
				units *= 1.5
			}
			if condition != "Sunny" {
				units *= 0.75
			}
			units *= 0.8 + rng.Float64()*0.4

			sold := int(math.Max(0, math.Floor(units)))
			if _, err := salesStmt.ExecContext(c.Context, p.ProductID, date, sold, p.SellingPrice); err != nil {
				return fmt.Errorf("failed to insert sale for %s: %w", p.ProductID, err)
			}
			salesCount++
		}
	}

	log.Printf("generated %d weather records and %d sales records", weatherCount, salesCount)
	return nil
}

// runScenarios engineers initial inventory so a first engine run produces
// every decision branch: a markdown, a hold, and a reorder.
func runScenarios(c *cli.Context) error {
	db := dbFrom(c)

	today := midnightUTC(time.Now())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"alerts", "forecasts", "inventory_batches"} {
		if _, err := db.ExecContext(c.Context, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	stmt, err := db.PrepareContext(c.Context, `
		INSERT INTO inventory_batches (product_id, quantity, received_date, expiry_date, current_price, batch_id)
		VALUES ($1, $2, NOW(), $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range productsData {
		var quantity int
		var expiry sql.NullTime

		switch p.ProductID {
		case "PROD002":
			// Overstock near expiry, should trigger a markdown.
			quantity = int(p.BaseDailySales * 10)
			expiry = sql.NullTime{Time: today.AddDate(0, 0, 2), Valid: true}
		case "PROD003":
			// Overstock far from expiry, should trigger a hold.
			quantity = int(p.BaseDailySales * 15)
			expiry = sql.NullTime{Time: today.AddDate(0, 0, 20), Valid: true}
		case "PROD006":
			// Understock, should trigger a reorder.
			quantity = int(p.BaseDailySales * 0.5)
			expiry = sql.NullTime{Time: today.AddDate(0, 0, p.ShelfLifeDays), Valid: true}
		default:
			quantity = int(p.BaseDailySales * (2 + rng.Float64()*2))
			if p.IsPerishable {
				expiry = sql.NullTime{Time: today.AddDate(0, 0, p.ShelfLifeDays), Valid: true}
			}
		}

		if quantity <= 0 {
			continue
		}

		batchID := fmt.Sprintf("BATCH-%s-INITIAL-%d", p.ProductID, rng.Intn(1_000_000))
		if _, err := stmt.ExecContext(c.Context, p.ProductID, quantity, expiry, p.SellingPrice, batchID); err != nil {
			return fmt.Errorf("failed to insert batch for %s: %w", p.ProductID, err)
		}
		inserted++
	}

	log.Printf("created initial stock for %d products", inserted)
	return nil
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
