// Package handler provides HTTP handlers for the storefront API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"dolls-storefront/internal/checkout"
	"dolls-storefront/internal/model"
	"dolls-storefront/internal/payment"
	"dolls-storefront/internal/woocommerce"
)

// checkoutService runs the two checkout paths.
type checkoutService interface {
	SubmitOrder(ctx context.Context, req *checkout.Request, account *model.Account) (*woocommerce.Order, error)
	CreateSession(ctx context.Context, req *checkout.Request, account *model.Account) (*payment.Session, error)
}

// orderHistory lists a buyer's past orders.
type orderHistory interface {
	List(ctx context.Context, account *model.Account) ([]woocommerce.Order, error)
}

// accountResolver maps a session token to a local account.
type accountResolver interface {
	AccountBySession(ctx context.Context, token string) (*model.Account, error)
}

// pinger reports database reachability for readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	checkout checkoutService
	gateway  payment.Gateway
	history  orderHistory
	accounts accountResolver
	webhooks http.Handler
	db       pinger
	logger   *slog.Logger
}

// New creates a new Handler. webhooks serves gateway deliveries and is
// mounted unwrapped by account resolution; db may be nil to report ready
// unconditionally (for testing).
func New(checkout checkoutService, gateway payment.Gateway, history orderHistory, accounts accountResolver, webhooks http.Handler, db pinger, logger *slog.Logger) *Handler {
	return &Handler{
		checkout: checkout,
		gateway:  gateway,
		history:  history,
		accounts: accounts,
		webhooks: webhooks,
		db:       db,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Checkout
	mux.HandleFunc("POST /checkout/orders", h.handleSubmitOrder)
	mux.HandleFunc("POST /checkout/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /checkout/sessions/{id}", h.handleGetSession)

	// Gateway notifications
	mux.Handle("POST /webhooks/stripe", h.webhooks)

	// Account
	mux.HandleFunc("GET /account/orders", h.handleOrderHistory)

	// Health checks
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /readyz", h.handleReady)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Error("readiness check failed", slog.String("error", err.Error()))
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// accountFromRequest resolves the signed-in account from the bearer token,
// or nil for guests. The account is passed down explicitly from here; no
// downstream code reads session state.
func (h *Handler) accountFromRequest(r *http.Request) *model.Account {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return nil
	}

	account, err := h.accounts.AccountBySession(r.Context(), token)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			h.logger.Error("session lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return account
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
