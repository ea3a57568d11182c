package database

import (
	"context"
	"fmt"

	"github.com/medisight/medisight-go/internal/models"
)

// InventoryRepository supplies pharmacy stock snapshots and their per-day
// dispensing aggregates.
type InventoryRepository struct {
	pool        DatabasePool
	historyDays int
}

// NewInventoryRepository creates a new inventory repository. historyDays
// bounds the dispensing window fetched per medicine.
func NewInventoryRepository(pool DatabasePool, historyDays int) *InventoryRepository {
	return &InventoryRepository{
		pool:        pool,
		historyDays: historyDays,
	}
}

// StockLevels returns every active medicine with its current stock and the
// per-day dispensing totals over the history window, oldest day first.
func (r *InventoryRepository) StockLevels(ctx context.Context) ([]models.MedicineStock, error) {
	query := `
		SELECT m.id, m.name, m.current_stock, m.unit_price,
		       COALESCE(d.day_totals, '{}') AS dispensing
		FROM medicines m
		LEFT JOIN LATERAL (
			SELECT array_agg(total ORDER BY day) AS day_totals
			FROM (
				SELECT date_trunc('day', dispensed_at) AS day, SUM(quantity)::float8 AS total
				FROM dispensing_log
				WHERE medicine_id = m.id
				  AND dispensed_at >= now() - ($1 || ' days')::interval
				GROUP BY day
			) daily
		) d ON true
		WHERE m.is_active = true
		ORDER BY m.name`

	rows, err := r.pool.Query(ctx, query, r.historyDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var stocks []models.MedicineStock
	for rows.Next() {
		var s models.MedicineStock
		if err := rows.Scan(&s.MedicineID, &s.Name, &s.CurrentStock, &s.UnitPrice, &s.Dispensing); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock levels: %w", err)
	}
	return stocks, nil
}
