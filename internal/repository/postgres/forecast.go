// internal/repository/postgres/forecast.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/jmoiron/sqlx"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) *forecastRepository {
	return &forecastRepository{db: db}
}

// ReplaceForDate swaps the full prediction set for a date inside one
// transaction. Re-running the engine for the same day is idempotent and no
// reader ever sees a half-written set.
func (r *forecastRepository) ReplaceForDate(ctx context.Context, day time.Time, predictions []domain.ForecastPrediction) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts WHERE date = $1`, day); err != nil {
			return fmt.Errorf("failed to clear forecasts for %s: %w", day.Format("2006-01-02"), err)
		}

		query := `
			INSERT INTO forecasts (product_id, date, predicted_units, model_version, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range predictions {
			_, err := stmt.ExecContext(ctx, p.ProductID, day, p.PredictedUnits, p.ModelVersion)
			if err != nil {
				return fmt.Errorf("failed to insert forecast for %s: %w", p.ProductID, err)
			}
		}

		return nil
	})
}

func (r *forecastRepository) ListByDate(ctx context.Context, day time.Time) ([]domain.ForecastPrediction, error) {
	query := `
		SELECT id, product_id, date, predicted_units, model_version, created_at
		FROM forecasts
		WHERE date = $1
		ORDER BY product_id
	`

	var predictions []domain.ForecastPrediction
	if err := sqlx.SelectContext(ctx, r.db, &predictions, query, day); err != nil {
		return nil, fmt.Errorf("failed to list forecasts for %s: %w", day.Format("2006-01-02"), err)
	}

	return predictions, nil
}
