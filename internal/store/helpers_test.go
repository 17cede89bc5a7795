package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	s.SetHashCost(bcrypt.MinCost)
	require.NoError(t, s.InitSchema())
	return s
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func mustRegister(t *testing.T, s *Store, username, password string) {
	t.Helper()
	_, err := s.RegisterUser(context.Background(), NewUser{
		Username: username,
		Password: password,
		FullName: username + " Example",
	})
	require.NoError(t, err)
}

func mustAddProduct(t *testing.T, s *Store, name, price string) int {
	t.Helper()
	p, err := s.AddProduct(context.Background(), name, "Tools", decimal.RequireFromString(price), "/static/uploads/"+name+".jpg")
	require.NoError(t, err)
	return p.ID
}

func countPurchases(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM purchases_history`).Scan(&n))
	return n
}
