package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/alextreichler/shoppingmall/internal/store"
)

type PurchaseHandler struct {
	Store *store.Store
}

type purchaseResponse struct {
	Message  string                 `json:"message"`
	Purchase *models.PurchaseRecord `json:"purchase"`
}

// AddPurchase accepts either product_name or product_id. product_id wins
// when both are given.
func (h *PurchaseHandler) AddPurchase(w http.ResponseWriter, r *http.Request) {
	p, ok := parseParams(w, r)
	if !ok {
		return
	}
	username := p.required("username")
	buyerAddress := p.required("buyer_address")
	productName := p.optional("product_name")
	productIDStr := p.optional("product_id")
	if productName == nil && productIDStr == nil {
		p.missing = append(p.missing, "product_name")
	}
	if !p.check(w) {
		return
	}

	var (
		rec *models.PurchaseRecord
		err error
	)
	if productIDStr != nil {
		productID, convErr := strconv.Atoi(*productIDStr)
		if convErr != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid product_id.")
			return
		}
		rec, err = h.Store.RecordPurchaseByID(r.Context(), username, productID, buyerAddress)
	} else {
		rec, err = h.Store.RecordPurchase(r.Context(), username, *productName, buyerAddress)
	}
	if err != nil {
		writeStoreError(w, r, "add_purchase", err)
		return
	}

	slog.Info("Purchase recorded", "id", rec.ID, "buyer_id", rec.BuyerID, "product_id", rec.ProductID)
	writeJSON(w, http.StatusOK, purchaseResponse{Message: "Purchase recorded successfully!", Purchase: rec})
}

func (h *PurchaseHandler) MyPurchases(w http.ResponseWriter, r *http.Request) {
	p, ok := parseParams(w, r)
	if !ok {
		return
	}
	username := p.required("username")
	if !p.check(w) {
		return
	}

	history, err := h.Store.GetPurchaseHistory(r.Context(), username)
	if err != nil {
		writeStoreError(w, r, "get_my_purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *PurchaseHandler) AllPurchases(w http.ResponseWriter, r *http.Request) {
	history, err := h.Store.GetAllPurchaseHistory(r.Context())
	if err != nil {
		writeStoreError(w, r, "get_all_purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *PurchaseHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetPurchaseStats(r.Context())
	if err != nil {
		writeStoreError(w, r, "purchase_stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AdminGate restricts store-wide views to admins, identified by the
// username request parameter. With Enforce off every request passes.
type AdminGate struct {
	Store   *store.Store
	Enforce bool
}

func (g *AdminGate) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.Enforce {
			next(w, r)
			return
		}
		user, err := g.Store.GetUserByUsername(r.Context(), r.FormValue("username"))
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			writeStoreError(w, r, "admin_gate", err)
			return
		}
		if !user.IsAdmin() {
			slog.Warn("Admin view refused", "path", r.URL.Path, "username", r.FormValue("username"))
			writeError(w, http.StatusForbidden, "Admin privileges required.")
			return
		}
		next(w, r)
	}
}
