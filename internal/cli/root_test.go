package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/alextreichler/shoppingmall/internal/store"
)

// run executes the CLI against db and returns stdout.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"init", "add-user", "add-product", "history"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "shop.db"), "--format", "xml", "history")
	assert.ErrorContains(t, err, "invalid format")
}

func TestInit_Idempotent(t *testing.T) {
	db := filepath.Join(t.TempDir(), "shop.db")

	out, err := run(t, db, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "admin 'admin' created")

	out, err = run(t, db, "init", "--admin-password", "changed")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestAddUserProductAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "shop.db")

	out, err := run(t, db, "add-user", "--username", "alice", "--password", "pw", "--full-name", "Alice", "--address", "1 Main St")
	require.NoError(t, err)
	assert.Contains(t, out, "User 'alice' created successfully (role user)")

	_, err = run(t, db, "add-user", "--username", "alice", "--password", "pw", "--full-name", "Alice")
	assert.ErrorIs(t, err, store.ErrDuplicateUsername)

	out, err = run(t, db, "add-product", "--name", "Widget", "--category", "Tools", "--price", "9.99")
	require.NoError(t, err)
	assert.Contains(t, out, "'Widget' added at 9.99")

	_, err = run(t, db, "add-product", "--name", "Bad", "--category", "Tools", "--price", "abc")
	assert.ErrorContains(t, err, "invalid price")

	out, err = run(t, db, "history", "--username", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "No purchases.")

	_, err = run(t, db, "history", "--username", "ghost")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestHistory_JSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "shop.db")
	_, err := run(t, db, "add-user", "--username", "alice", "--password", "pw", "--full-name", "Alice")
	require.NoError(t, err)
	_, err = run(t, db, "add-product", "--name", "Widget", "--category", "Tools", "--price", "9.99")
	require.NoError(t, err)

	s, err := openStore(&RootOptions{DBPath: db})
	require.NoError(t, err)
	_, err = s.RecordPurchase(t.Context(), "alice", "Widget", "123 Main St")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	out, err := run(t, db, "--format", "json", "history")
	require.NoError(t, err)

	var views []models.AdminPurchaseView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "alice", views[0].BuyerUsername)
	assert.Equal(t, "Widget", views[0].ProductName)
	assert.Equal(t, "123 Main St", views[0].BuyerAddress)

	out, err = run(t, db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Widget")
}

func TestHistory_JSONEmptyForUser(t *testing.T) {
	db := filepath.Join(t.TempDir(), "shop.db")
	_, err := run(t, db, "add-user", "--username", "alice", "--password", "pw", "--full-name", "Alice")
	require.NoError(t, err)

	out, err := run(t, db, "--format", "json", "history", "--username", "alice")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
