// internal/repository/postgres/weather.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/jmoiron/sqlx"
)

type weatherRepository struct {
	db *DB
}

func NewWeatherRepository(db *DB) *weatherRepository {
	return &weatherRepository{db: db}
}

// GetByDate returns the observation for exactly the given day, or nil when
// none exists.
func (r *weatherRepository) GetByDate(ctx context.Context, day time.Time) (*domain.WeatherObservation, error) {
	query := `
		SELECT id, date, temperature_c, precipitation_mm, weather_condition, created_at
		FROM weather_observations
		WHERE date = $1
	`

	var obs domain.WeatherObservation
	if err := sqlx.GetContext(ctx, r.db, &obs, query, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weather for %s: %w", day.Format("2006-01-02"), err)
	}

	return &obs, nil
}

func (r *weatherRepository) Latest(ctx context.Context) (*domain.WeatherObservation, error) {
	query := `
		SELECT id, date, temperature_c, precipitation_mm, weather_condition, created_at
		FROM weather_observations
		ORDER BY date DESC
		LIMIT 1
	`

	var obs domain.WeatherObservation
	if err := sqlx.GetContext(ctx, r.db, &obs, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest weather: %w", err)
	}

	return &obs, nil
}

// Upsert keeps the first observation written for a day; a second write for
// the same date is a no-op, matching the one-observation-per-day invariant.
func (r *weatherRepository) Upsert(ctx context.Context, obs *domain.WeatherObservation) error {
	query := `
		INSERT INTO weather_observations (date, temperature_c, precipitation_mm, weather_condition, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (date) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query,
		obs.Date, obs.TemperatureC, obs.PrecipitationMM, obs.Condition,
	); err != nil {
		return fmt.Errorf("failed to upsert weather for %s: %w", obs.Date.Format("2006-01-02"), err)
	}

	stored, err := r.GetByDate(ctx, obs.Date)
	if err != nil {
		return err
	}
	if stored != nil {
		*obs = *stored
	}

	return nil
}
