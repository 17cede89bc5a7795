package store

import (
	"context"
	"testing"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProduct_ListProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	added, err := s.AddProduct(ctx, "Widget", "Tools", decimal.RequireFromString("9.99"), "url")
	require.NoError(t, err)
	mustAddProduct(t, s, "Gadget", "0")

	products, err = s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	w := products[0]
	assert.Equal(t, added.ID, w.ID)
	assert.Equal(t, "Widget", w.Name)
	assert.Equal(t, "Tools", w.Category)
	assert.True(t, decimal.RequireFromString("9.99").Equal(w.Price), "price = %s", w.Price)
	assert.Equal(t, "url", w.ThumbnailURL)

	assert.Equal(t, "Gadget", products[1].Name)
	assert.True(t, products[1].Price.IsZero())
}

func TestAddProduct_NegativePrice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, "Refund", "Misc", decimal.RequireFromString("-0.01"), "")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAddProduct_PriceOutOfRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddProduct(ctx, "Big", "Tools", decimal.RequireFromString("1e400"), "u")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	mustAddProduct(t, s, "Pricey", "1e300")

	var products []models.Product
	require.NotPanics(t, func() { products, err = s.ListProducts(ctx) })
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Pricey", products[0].Name)
}
