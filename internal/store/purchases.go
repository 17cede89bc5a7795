package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alextreichler/shoppingmall/internal/models"
)

// Purchase times are stored as fixed-width UTC text so that ORDER BY on the
// column is chronological.
const purchaseTimeLayout = "2006-01-02 15:04:05.000000"

// RecordPurchase resolves the buyer and the product by their natural keys and
// inserts the purchase in the same transaction. A product name shared by
// several products is rejected with ErrAmbiguousProductName.
func (s *Store) RecordPurchase(ctx context.Context, username, productName, buyerAddress string) (*models.PurchaseRecord, error) {
	return s.recordPurchase(ctx, username, buyerAddress, func(tx *sql.Tx) (int, error) {
		return productIDByName(ctx, tx, productName)
	})
}

// RecordPurchaseByID is RecordPurchase with an explicit product identifier.
func (s *Store) RecordPurchaseByID(ctx context.Context, username string, productID int, buyerAddress string) (*models.PurchaseRecord, error) {
	return s.recordPurchase(ctx, username, buyerAddress, func(tx *sql.Tx) (int, error) {
		var id int
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = ?`, productID).Scan(&id)
		if err == sql.ErrNoRows {
			return 0, ErrProductNotFound
		}
		return id, err
	})
}

func (s *Store) recordPurchase(ctx context.Context, username, buyerAddress string, resolveProduct func(*sql.Tx) (int, error)) (*models.PurchaseRecord, error) {
	defer timeDB(ctx, "record_purchase")()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	buyerID, err := userIDByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	productID, err := resolveProduct(tx)
	if err != nil {
		return nil, err
	}

	purchasedAt := s.now().UTC().Truncate(time.Microsecond)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO purchases_history (buyer_id, product_id, purchase_time, payment_complete, buyer_address)
		VALUES (?, ?, ?, FALSE, ?)
	`, buyerID, productID, purchasedAt.Format(purchaseTimeLayout), buyerAddress)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return &models.PurchaseRecord{
		ID:           int(id),
		BuyerID:      buyerID,
		ProductID:    productID,
		PurchaseTime: purchasedAt,
		BuyerAddress: buyerAddress,
	}, nil
}

func userIDByUsername(ctx context.Context, tx *sql.Tx, username string) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup buyer: %w", err)
	}
	return id, nil
}

func productIDByName(ctx context.Context, tx *sql.Tx, name string) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM products WHERE name = ? ORDER BY id LIMIT 2`, name)
	if err != nil {
		return 0, fmt.Errorf("lookup product: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	switch len(ids) {
	case 0:
		return 0, ErrProductNotFound
	case 1:
		return ids[0], nil
	default:
		return 0, ErrAmbiguousProductName
	}
}

const purchaseViewQuery = `
	SELECT ph.id, ph.purchase_time, ph.payment_complete, ph.buyer_address,
	       p.id, p.name, p.category, p.price, p.thumbnail_url,
	       u.username
	FROM purchases_history ph
	JOIN products p ON ph.product_id = p.id
	JOIN users u ON ph.buyer_id = u.id
`

func scanAdminPurchaseView(row rowScanner) (*models.AdminPurchaseView, error) {
	var (
		v           models.AdminPurchaseView
		purchasedAt string
	)
	err := row.Scan(&v.PurchaseID, &purchasedAt, &v.PaymentComplete, &v.BuyerAddress,
		&v.ProductID, &v.ProductName, &v.ProductCategory, &v.ProductPrice, &v.ProductThumbnailURL,
		&v.BuyerUsername)
	if err != nil {
		return nil, err
	}
	t, err := time.ParseInLocation(purchaseTimeLayout, purchasedAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse purchase_time %q: %w", purchasedAt, err)
	}
	v.PurchaseTime = t
	return &v, nil
}

func (s *Store) queryPurchaseViews(ctx context.Context, query string, args ...any) ([]models.AdminPurchaseView, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []models.AdminPurchaseView{}
	for rows.Next() {
		v, err := scanAdminPurchaseView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, rows.Err()
}

// GetPurchaseHistory lists the user's purchases, oldest first.
func (s *Store) GetPurchaseHistory(ctx context.Context, username string) ([]models.PurchaseView, error) {
	defer timeDB(ctx, "purchase_history")()

	if _, err := s.GetUserByUsername(ctx, username); err != nil {
		return nil, err
	}
	all, err := s.queryPurchaseViews(ctx, purchaseViewQuery+`
		WHERE u.username = ?
		ORDER BY ph.purchase_time, ph.id
	`, username)
	if err != nil {
		return nil, err
	}

	views := make([]models.PurchaseView, 0, len(all))
	for _, v := range all {
		views = append(views, v.PurchaseView)
	}
	return views, nil
}

// GetAllPurchaseHistory lists every purchase with its buyer, oldest first.
// Callers are responsible for restricting it to admins.
func (s *Store) GetAllPurchaseHistory(ctx context.Context) ([]models.AdminPurchaseView, error) {
	defer timeDB(ctx, "all_purchase_history")()

	return s.queryPurchaseViews(ctx, purchaseViewQuery+`
		ORDER BY ph.purchase_time, ph.id
	`)
}
