package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role classifies a user. Only admins may see store-wide purchase views.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a request value onto a Role. An empty value means RoleUser.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "", RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID          int     `json:"id"`
	Username    string  `json:"username"`
	Password    string  `json:"-"` // bcrypt hash
	Role        Role    `json:"role"`
	FullName    string  `json:"full_name"`
	Address     *string `json:"address"`
	PaymentInfo *string `json:"payment_info"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	ThumbnailURL string          `json:"thumbnail_url"`
}

// PurchaseRecord is the stored fact; BuyerAddress is a snapshot taken at purchase time.
type PurchaseRecord struct {
	ID              int       `json:"id"`
	BuyerID         int       `json:"buyer_id"`
	ProductID       int       `json:"product_id"`
	PurchaseTime    time.Time `json:"purchase_time"`
	PaymentComplete bool      `json:"payment_complete"`
	BuyerAddress    string    `json:"buyer_address"`
}

// PurchaseView is a purchase joined with its product, as shown to the buyer.
type PurchaseView struct {
	PurchaseID          int             `json:"purchase_id"`
	ProductID           int             `json:"product_id"`
	ProductName         string          `json:"product_name"`
	ProductCategory     string          `json:"product_category"`
	ProductPrice        decimal.Decimal `json:"product_price"`
	ProductThumbnailURL string          `json:"product_thumbnail_url"`
	PurchaseTime        time.Time       `json:"purchase_time"`
	PaymentComplete     bool            `json:"payment_complete"`
	BuyerAddress        string          `json:"buyer_address"`
}

type AdminPurchaseView struct {
	PurchaseView
	BuyerUsername string `json:"buyer_username"`
}

type PurchaseStats struct {
	TotalUsers     int                    `json:"total_users"`
	TotalProducts  int                    `json:"total_products"`
	TotalPurchases int                    `json:"total_purchases"`
	ProductCounts  []ProductPurchaseCount `json:"product_counts"`
}

type ProductPurchaseCount struct {
	ProductID     int    `json:"product_id"`
	Name          string `json:"name"`
	PurchaseCount int    `json:"purchase_count"`
}
