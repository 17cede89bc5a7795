package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alextreichler/shoppingmall/internal/store"
)

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// statusFor maps store errors onto client statuses. Unknown errors are server faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrDuplicateUsername), errors.Is(err, store.ErrAmbiguousProductName):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidPrice), errors.Is(err, store.ErrInvalidRole), errors.Is(err, store.ErrInvalidPassword):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Store operation failed", "op", op, "error", err, "request_id", RequestID(r.Context()))
		writeError(w, status, "Internal Server Error")
		return
	}
	writeError(w, status, err.Error())
}

// params reads request values from the query string and, for POST, the form body.
type params struct {
	r       *http.Request
	missing []string
}

func newParams(r *http.Request) (*params, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &params{r: r}, nil
}

// required returns the value of key, recording it as missing when absent.
// An explicitly empty value is accepted.
func (p *params) required(key string) string {
	vals, ok := p.r.Form[key]
	if !ok || len(vals) == 0 {
		p.missing = append(p.missing, key)
		return ""
	}
	return vals[0]
}

// optional returns nil when key is absent.
func (p *params) optional(key string) *string {
	vals, ok := p.r.Form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// check writes a 422 naming the missing parameters and reports whether the request may proceed.
func (p *params) check(w http.ResponseWriter) bool {
	if len(p.missing) == 0 {
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("missing required parameter(s): %v", p.missing))
	return false
}

func parseParams(w http.ResponseWriter, r *http.Request) (*params, bool) {
	p, err := newParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data.")
		return nil, false
	}
	return p, true
}
