package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port     string
	DBPath   string
	LogLevel slog.Level

	AdminUsername string
	AdminPassword string
	AdminFullName string

	// EnforceAdmin gates the store-wide purchase views behind an admin username.
	EnforceAdmin bool
	// RateLimitWindow is the per-IP window for /login and /register. Zero disables it.
	RateLimitWindow time.Duration
	BcryptCost      int

	StaticDir string
	UploadDir string
}

const (
	defaultPort   = "8585"
	defaultDBPath = "./shopping_mall.db"
)

// LoadConfig reads the environment, after loading .env if one exists.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", defaultPort),
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Admin User"),
		StaticDir:     getEnv("STATIC_DIR", "static"),
		UploadDir:     getEnv("UPLOAD_DIR", "static/uploads"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", cfg.Port)
		cfg.Port = defaultPort
	}

	cfg.LogLevel = slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			slog.Warn("Invalid LOG_LEVEL, using info", "LOG_LEVEL", lvl)
			cfg.LogLevel = slog.LevelInfo
		}
	}

	enforce, err := strconv.ParseBool(getEnv("ENFORCE_ADMIN", "false"))
	if err != nil {
		slog.Warn("Invalid ENFORCE_ADMIN, admin views stay open", "ENFORCE_ADMIN", os.Getenv("ENFORCE_ADMIN"))
	}
	cfg.EnforceAdmin = enforce

	window, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "0s"))
	if err != nil || window < 0 {
		slog.Warn("Invalid RATE_LIMIT_WINDOW, rate limiting disabled", "RATE_LIMIT_WINDOW", os.Getenv("RATE_LIMIT_WINDOW"))
		window = 0
	}
	cfg.RateLimitWindow = window

	cfg.BcryptCost = bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			slog.Warn("Invalid BCRYPT_COST, using default", "BCRYPT_COST", v)
		} else {
			cfg.BcryptCost = cost
		}
	}

	if cfg.AdminPassword == "admin" {
		slog.Warn("ADMIN_PASSWORD not set. The bootstrap admin account uses the well-known default password. PLEASE SET ADMIN_PASSWORD IN PRODUCTION!")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}
