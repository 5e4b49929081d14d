// internal/repository/postgres/inventory.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/jmoiron/sqlx"
)

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListInStock(ctx context.Context) ([]domain.InventoryBatch, error) {
	query := `
		SELECT id, product_id, quantity, received_date, expiry_date,
		       current_price, batch_id, created_at, updated_at
		FROM inventory_batches
		WHERE quantity > 0
		ORDER BY product_id, expiry_date NULLS LAST
	`

	var batches []domain.InventoryBatch
	if err := sqlx.SelectContext(ctx, r.db, &batches, query); err != nil {
		return nil, fmt.Errorf("failed to list in-stock batches: %w", err)
	}

	return batches, nil
}

func (r *inventoryRepository) ListInStockByProduct(ctx context.Context, productID string) ([]domain.InventoryBatch, error) {
	query := `
		SELECT id, product_id, quantity, received_date, expiry_date,
		       current_price, batch_id, created_at, updated_at
		FROM inventory_batches
		WHERE product_id = $1 AND quantity > 0
		ORDER BY expiry_date NULLS LAST, received_date
	`

	var batches []domain.InventoryBatch
	if err := sqlx.SelectContext(ctx, r.db, &batches, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list batches for %s: %w", productID, err)
	}

	return batches, nil
}

func (r *inventoryRepository) InsertBatch(ctx context.Context, batch *domain.InventoryBatch) error {
	query := `
		INSERT INTO inventory_batches (
			product_id, quantity, received_date, expiry_date,
			current_price, batch_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		batch.ProductID, batch.Quantity, batch.ReceivedDate,
		batch.ExpiryDate, batch.CurrentPrice, batch.BatchID,
	).Scan(&batch.ID)
	if err != nil {
		return fmt.Errorf("failed to insert batch %s: %w", batch.BatchID, err)
	}

	return nil
}

func (r *inventoryRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	query := `
		UPDATE inventory_batches
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, quantity); err != nil {
		return fmt.Errorf("failed to update batch %d quantity: %w", id, err)
	}

	return nil
}

// ApplyMarkdown reprices every batch of the product whose expiry is at or
// before the cutoff. Only the current price field is touched.
func (r *inventoryRepository) ApplyMarkdown(ctx context.Context, productID string, expiryCutoff time.Time, newPrice float64) (int64, error) {
	query := `
		UPDATE inventory_batches
		SET current_price = $3, updated_at = NOW()
		WHERE product_id = $1
		  AND expiry_date IS NOT NULL
		  AND expiry_date <= $2
	`

	res, err := r.db.ExecContext(ctx, query, productID, expiryCutoff, newPrice)
	if err != nil {
		return 0, fmt.Errorf("failed to apply markdown for %s: %w", productID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count marked-down batches: %w", err)
	}

	return affected, nil
}
