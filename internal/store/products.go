package store

import (
	"context"
	"fmt"
	"math"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, category, price, thumbnail_url`

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.ThumbnailURL); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddProduct stores a new catalog entry. Negative prices, and prices the
// REAL column cannot hold as a finite number, are rejected.
func (s *Store) AddProduct(ctx context.Context, name, category string, price decimal.Decimal, thumbnailURL string) (*models.Product, error) {
	if price.IsNegative() || math.IsInf(price.InexactFloat64(), 0) {
		return nil, ErrInvalidPrice
	}
	defer timeDB(ctx, "add_product")()

	query := `INSERT INTO products (name, category, price, thumbnail_url) VALUES (?, ?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, query, name, category, price, thumbnailURL)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Product{
		ID:           int(id),
		Name:         name,
		Category:     category,
		Price:        price,
		ThumbnailURL: thumbnailURL,
	}, nil
}

// ListProducts returns the whole catalog in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	defer timeDB(ctx, "list_products")()

	rows, err := s.DB.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
