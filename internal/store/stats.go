package store

import (
	"context"

	"github.com/alextreichler/shoppingmall/internal/models"
)

func (s *Store) GetPurchaseStats(ctx context.Context) (*models.PurchaseStats, error) {
	defer timeDB(ctx, "purchase_stats")()

	stats := &models.PurchaseStats{
		ProductCounts: []models.ProductPurchaseCount{},
	}

	err := s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM purchases_history)
	`).Scan(&stats.TotalUsers, &stats.TotalProducts, &stats.TotalPurchases)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.id, p.name, COUNT(ph.id) AS purchase_count
		FROM products p
		LEFT JOIN purchases_history ph ON p.id = ph.product_id
		GROUP BY p.id
		ORDER BY purchase_count DESC, p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.ProductPurchaseCount
		if err := rows.Scan(&c.ProductID, &c.Name, &c.PurchaseCount); err != nil {
			return nil, err
		}
		stats.ProductCounts = append(stats.ProductCounts, c)
	}

	return stats, rows.Err()
}
