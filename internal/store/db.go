package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Pragmas set through the DSN so every pooled connection gets them,
// not just the first one.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

type Store struct {
	DB *sql.DB

	// now stamps new purchase records. Tests replace it for deterministic ordering.
	now func() time.Time

	// hashCost is the bcrypt cost for new passwords; zero means bcrypt.DefaultCost.
	hashCost int
}

func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dataSourceName))
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{DB: db, now: time.Now}, nil
}

func withPragmas(dsn string) string {
	params := make([]string, 0, len(connPragmas)+1)
	for _, p := range connPragmas {
		params = append(params, "_pragma="+p)
	}
	// Transactions take the write lock up front so a read-then-insert
	// cannot fail halfway with SQLITE_BUSY.
	params = append(params, "_txlock=immediate")
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func (s *Store) cost() int {
	if s.hashCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.hashCost
}

// SetHashCost changes the bcrypt cost used for passwords registered from now on.
func (s *Store) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// InitSchema applies the embedded migrations. Safe to call on every start.
func (s *Store) InitSchema() error {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	if err := s.Migrate(sub); err != nil {
		slog.Error("Error creating schema", "error", err)
		return err
	}
	return nil
}

// Bootstrap runs InitSchema and makes sure the default admin account exists.
func (s *Store) Bootstrap(ctx context.Context, username, password, fullName string) error {
	if err := s.InitSchema(); err != nil {
		return err
	}
	created, err := s.EnsureAdmin(ctx, username, password, fullName)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		slog.Warn("Created default admin account, change its password", "username", username)
	}
	return nil
}

// timeDB records a Server-Timing "db" metric when the request carries one.
func timeDB(ctx context.Context, desc string) func() {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return func() {}
	}
	m := timing.NewMetric("db").WithDesc(desc).Start()
	return func() { m.Stop() }
}
