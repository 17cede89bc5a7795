package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/alextreichler/shoppingmall/internal/store"
)

type RouterOptions struct {
	EnforceAdmin bool
	// RateLimiter guards /login and /register when set.
	RateLimiter *RateLimiter
	StaticDir   string
	UploadDir   string
	UploadURL   string
}

// NewRouter wires every endpoint onto a mux wrapped in the middleware chain.
// Endpoints answer GET; the ones that change state also answer POST.
func NewRouter(s *store.Store, opts RouterOptions) http.Handler {
	users := &UserHandler{Store: s}
	products := &ProductHandler{Store: s, UploadDir: opts.UploadDir, UploadURL: opts.UploadURL}
	purchases := &PurchaseHandler{Store: s}
	gate := &AdminGate{Store: s, Enforce: opts.EnforceAdmin}

	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if opts.RateLimiter == nil {
			return h
		}
		return opts.RateLimiter.Middleware(h)
	}

	mux := http.NewServeMux()

	if opts.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(opts.StaticDir))
		mux.Handle("GET /static/", http.StripPrefix("/static", fileServer))
	}

	mux.HandleFunc("GET /healthz", health(s))
	mux.HandleFunc("GET /products", products.List)
	mux.HandleFunc("GET /get_my_purchase", purchases.MyPurchases)
	mux.HandleFunc("GET /get_all_purchase", gate.Middleware(purchases.AllPurchases))
	mux.HandleFunc("GET /purchase_stats", gate.Middleware(purchases.Stats))
	mux.HandleFunc("POST /upload_thumbnail", products.UploadThumbnail)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		mux.HandleFunc(method+" /register", limit(users.Register))
		mux.HandleFunc(method+" /login", limit(users.Login))
		mux.HandleFunc(method+" /update_user_info", users.UpdateUserInfo)
		mux.HandleFunc(method+" /add_product", products.Add)
		mux.HandleFunc(method+" /add_purchase", purchases.AddPurchase)
	}

	// Chain: Logger -> Security Headers -> Server-Timing -> Mux
	return LoggingMiddleware(
		SecurityHeadersMiddleware(
			ServerTimingMiddleware(mux),
		),
	)
}

func health(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
