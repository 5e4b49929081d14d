// internal/repository/postgres/alert.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) *alertRepository {
	return &alertRepository{db: db}
}

// alertRow is the scan target; details stay raw until the action is known.
type alertRow struct {
	ID        int64          `db:"id"`
	ProductID string         `db:"product_id"`
	Date      time.Time      `db:"date"`
	Type      string         `db:"type"`
	Action    string         `db:"action"`
	Details   []byte         `db:"details"`
	Status    string         `db:"status"`
	Reasons   pq.StringArray `db:"reasons"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row *alertRow) toDomain() (domain.Alert, error) {
	details, err := domain.DecodeAlertDetails(domain.AlertAction(row.Action), row.Details)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("alert %d: %w", row.ID, err)
	}

	return domain.Alert{
		ID:        row.ID,
		ProductID: row.ProductID,
		Date:      row.Date,
		Type:      domain.AlertType(row.Type),
		Action:    domain.AlertAction(row.Action),
		Details:   details,
		Status:    domain.AlertStatus(row.Status),
		Reasons:   row.Reasons,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// IgnoreAllPending supersedes every still-pending alert. Called at the start
// of each run's decision phase so at most one pending alert per product is
// actionable at a time.
func (r *alertRepository) IgnoreAllPending(ctx context.Context) (int64, error) {
	query := `
		UPDATE alerts
		SET status = 'ignored', updated_at = NOW()
		WHERE status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to ignore pending alerts: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count ignored alerts: %w", err)
	}

	return affected, nil
}

func (r *alertRepository) InsertMany(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO alerts (product_id, date, type, action, details, status, reasons, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, alert := range alerts {
			payload, err := json.Marshal(alert.Details)
			if err != nil {
				return fmt.Errorf("failed to encode details for %s: %w", alert.ProductID, err)
			}

			_, err = stmt.ExecContext(ctx,
				alert.ProductID, alert.Date, string(alert.Type), string(alert.Action),
				payload, string(alert.Status), pq.Array([]string(alert.Reasons)),
			)
			if err != nil {
				return fmt.Errorf("failed to insert alert for %s: %w", alert.ProductID, err)
			}
		}

		return nil
	})
}

// List returns alerts newest-first by target date, optionally filtered by
// status and date.
func (r *alertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	query := `
		SELECT id, product_id, date, type, action, details, status, reasons, created_at, updated_at
		FROM alerts
		WHERE 1=1
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, string(filter.Status))
		argCounter++
	}

	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", argCounter))
		args = append(args, *filter.Date)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCounter)
		args = append(args, filter.Limit)
	}

	var rows []alertRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(rows))
	for i := range rows {
		alert, err := rows[i].toDomain()
		if err != nil {
			// A malformed payload should not hide the rest of the list.
			log.Error().Err(err).Int64("alert_id", rows[i].ID).Msg("skipping undecodable alert")
			continue
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

func (r *alertRepository) UpdateStatus(ctx context.Context, id int64, status domain.AlertStatus) error {
	query := `
		UPDATE alerts
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update alert %d status: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm alert %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %d not found", id)
	}

	return nil
}
