package handler

import (
	"log/slog"
	"net/http"

	"dolls-storefront/internal/checkout"
	"dolls-storefront/internal/model"
	"dolls-storefront/internal/payment"
	"dolls-storefront/internal/woocommerce"
)

// orderResponse is the client-facing view of a created order.
type orderResponse struct {
	OrderID int64  `json:"order_id"`
	Number  string `json:"number"`
	Status  string `json:"status"`
	Total   string `json:"total"`
}

func toOrderResponse(o *woocommerce.Order) orderResponse {
	return orderResponse{
		OrderID: o.ID,
		Number:  o.Number,
		Status:  o.Status,
		Total:   o.Total,
	}
}

// handleSubmitOrder creates an order directly for manual payment methods.
// POST /checkout/orders
func (h *Handler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkout.Request
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if req.PaymentMethod == checkout.MethodStripe {
		h.writeError(w, model.NewValidationError("payment_method", "card payments go through /checkout/sessions"))
		return
	}

	account := h.accountFromRequest(r)
	h.logger.InfoContext(ctx, "submitting order",
		slog.Int("line_items", len(req.Lines)),
		slog.String("payment_method", req.PaymentMethod),
		slog.Bool("signed_in", account != nil),
	)

	order, err := h.checkout.SubmitOrder(ctx, &req, account)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// sessionResponse hands the client the gateway redirect.
type sessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// handleCreateSession starts a hosted card payment.
// POST /checkout/sessions
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req checkout.Request
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	req.PaymentMethod = checkout.MethodStripe

	account := h.accountFromRequest(r)
	h.logger.InfoContext(ctx, "creating payment session",
		slog.Int("line_items", len(req.Lines)),
		slog.Bool("signed_in", account != nil),
	)

	sess, err := h.checkout.CreateSession(ctx, &req, account)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	})
}

// sessionStatusResponse reports payment progress to the success page.
// It is advisory: order creation happens only through the webhook.
type sessionStatusResponse struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
	Paid          bool   `json:"paid"`
}

// handleGetSession verifies a payment session for the success redirect.
// GET /checkout/sessions/{id}
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	if sessionID == "" {
		h.writeError(w, model.NewValidationError("id", "session ID required"))
		return
	}

	sess, err := h.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, sessionStatusResponse{
		SessionID:     sess.ID,
		PaymentStatus: sess.PaymentStatus,
		Paid:          sess.PaymentStatus == payment.StatusPaid,
	})
}
