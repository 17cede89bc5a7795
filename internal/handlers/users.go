package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/alextreichler/shoppingmall/internal/store"
)

type UserHandler struct {
	Store *store.Store
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	p, ok := parseParams(w, r)
	if !ok {
		return
	}
	nu := store.NewUser{
		Username:    p.required("username"),
		Password:    p.required("password"),
		Role:        p.required("role"),
		FullName:    p.required("full_name"),
		Address:     p.optional("address"),
		PaymentInfo: p.optional("payment_info"),
	}
	if !p.check(w) {
		return
	}

	user, err := h.Store.RegisterUser(r.Context(), nu)
	if err != nil {
		writeStoreError(w, r, "register", err)
		return
	}

	slog.Info("User registered", "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, userResponse{Message: "User created successfully!", User: user})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	p, ok := parseParams(w, r)
	if !ok {
		return
	}
	username := p.required("username")
	password := p.required("password")
	if !p.check(w) {
		return
	}

	user, err := h.Store.Authenticate(r.Context(), username, password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			slog.Info("Login failed", "username", username, "ip", clientIP(r))
		}
		writeStoreError(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "Welcome back, " + user.Username + "!", User: user})
}

func (h *UserHandler) UpdateUserInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := parseParams(w, r)
	if !ok {
		return
	}
	username := p.required("username")
	fullName := p.required("full_name")
	address := p.required("address")
	paymentInfo := p.required("payment_info")
	if !p.check(w) {
		return
	}

	if err := h.Store.UpdateUserProfile(r.Context(), username, fullName, &address, &paymentInfo); err != nil {
		writeStoreError(w, r, "update_user_info", err)
		return
	}

	writeJSON(w, http.StatusOK, messageBody{Message: "User information updated successfully!"})
}
