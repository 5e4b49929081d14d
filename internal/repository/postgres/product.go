// internal/repository/postgres/product.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/jmoiron/sqlx"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, product_id, name, category, selling_price, cost_price,
		       is_perishable, shelf_life_days, weight_kg, co2_factor,
		       created_at, updated_at
		FROM products
		ORDER BY product_id
	`

	var products []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func (r *productRepository) GetByProductID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT id, product_id, name, category, selling_price, cost_price,
		       is_perishable, shelf_life_days, weight_kg, co2_factor,
		       created_at, updated_at
		FROM products
		WHERE product_id = $1
	`

	var product domain.Product
	if err := sqlx.GetContext(ctx, r.db, &product, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}

	return &product, nil
}
