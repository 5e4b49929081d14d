// internal/repository/postgres/sale.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/jmoiron/sqlx"
)

type saleRepository struct {
	db *DB
}

func NewSaleRepository(db *DB) *saleRepository {
	return &saleRepository{db: db}
}

// ListBetween returns sales in the half-open window [from, to).
func (r *saleRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.SaleRecord, error) {
	query := `
		SELECT id, product_id, date, units_sold, price_at_sale, created_at
		FROM sales
		WHERE date >= $1 AND date < $2
		ORDER BY date, product_id
	`

	var sales []domain.SaleRecord
	if err := sqlx.SelectContext(ctx, r.db, &sales, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list sales between %s and %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}

	return sales, nil
}

func (r *saleRepository) ListByDate(ctx context.Context, day time.Time) ([]domain.SaleRecord, error) {
	query := `
		SELECT id, product_id, date, units_sold, price_at_sale, created_at
		FROM sales
		WHERE date = $1
		ORDER BY product_id
	`

	var sales []domain.SaleRecord
	if err := sqlx.SelectContext(ctx, r.db, &sales, query, day); err != nil {
		return nil, fmt.Errorf("failed to list sales for %s: %w", day.Format("2006-01-02"), err)
	}

	return sales, nil
}

func (r *saleRepository) InsertMany(ctx context.Context, sales []domain.SaleRecord) error {
	if len(sales) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO sales (product_id, date, units_sold, price_at_sale, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, sale := range sales {
			_, err := stmt.ExecContext(ctx,
				sale.ProductID, sale.Date, sale.UnitsSold, sale.PriceAtSale,
			)
			if err != nil {
				return fmt.Errorf("failed to insert sale record: %w", err)
			}
		}

		return nil
	})
}
