package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alextreichler/shoppingmall/internal/config"
	"github.com/alextreichler/shoppingmall/internal/handlers"
	"github.com/alextreichler/shoppingmall/internal/store"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// 2. Init DB, schema and the bootstrap admin
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetHashCost(cfg.BcryptCost)

	if err := db.Bootstrap(context.Background(), cfg.AdminUsername, cfg.AdminPassword, cfg.AdminFullName); err != nil {
		slog.Error("Failed to bootstrap store", "error", err)
		os.Exit(1)
	}

	// 3. Routes and middleware
	opts := handlers.RouterOptions{
		EnforceAdmin: cfg.EnforceAdmin,
		StaticDir:    cfg.StaticDir,
		UploadDir:    cfg.UploadDir,
		UploadURL:    uploadURL(cfg.StaticDir, cfg.UploadDir),
	}
	if cfg.RateLimitWindow > 0 {
		rl := handlers.NewRateLimiter(cfg.RateLimitWindow)
		defer rl.Stop()
		opts.RateLimiter = rl
	}
	if !cfg.EnforceAdmin {
		slog.Warn("Admin purchase views are not gated. Set ENFORCE_ADMIN=true or put an auth proxy in front of /get_all_purchase and /purchase_stats.")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(db, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Start Server with Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		return
	}

	slog.Info("Server exited gracefully.")
}

// uploadURL maps the upload directory onto the /static/ URL space. Uploads
// outside the static directory are not served.
func uploadURL(staticDir, uploadDir string) string {
	rel, err := filepath.Rel(staticDir, uploadDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		slog.Warn("UPLOAD_DIR is not inside STATIC_DIR, uploaded thumbnails will not be served", "upload_dir", uploadDir, "static_dir", staticDir)
		return "/static/uploads"
	}
	return "/static/" + filepath.ToSlash(rel)
}
