// internal/repository/postgres/dashboard.go
package postgres

import (
	"context"
	"fmt"

	"github.com/gustirama/shelfsense/internal/domain"
)

type dashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

// GetKpis computes the headline dashboard numbers. A sale below the catalog
// selling price counts as a markdown sale: its cost value is spoilage loss
// avoided and its margin over cost is markdown profit.
func (r *dashboardRepository) GetKpis(ctx context.Context) (*domain.Kpis, error) {
	markdownQuery := `
		SELECT
			COALESCE(SUM(s.units_sold * p.cost_price), 0)                      AS loss_avoided,
			COALESCE(SUM(s.units_sold * (s.price_at_sale - p.cost_price)), 0)  AS markdown_profit
		FROM sales s
		JOIN products p ON p.product_id = s.product_id
		WHERE s.price_at_sale < p.selling_price
	`

	var kpis domain.Kpis
	if err := r.db.GetContext(ctx, &kpis, markdownQuery); err != nil {
		return nil, fmt.Errorf("failed to aggregate markdown kpis: %w", err)
	}

	reorderQuery := `SELECT COUNT(*) FROM alerts WHERE action = 'reorder'`
	if err := r.db.GetContext(ctx, &kpis.ReordersTriggered, reorderQuery); err != nil {
		return nil, fmt.Errorf("failed to count reorder alerts: %w", err)
	}

	return &kpis, nil
}
