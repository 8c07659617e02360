// Package webhook reconciles gateway payment notifications into WooCommerce
// orders. It is the authoritative order-creation path for card payments:
// the success redirect is advisory only and never creates anything.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"dolls-storefront/internal/checkout"
	"dolls-storefront/internal/customer"
	"dolls-storefront/internal/model"
	"dolls-storefront/internal/payment"
	"dolls-storefront/internal/woocommerce"
)

// Order metadata keys recorded on reconciled orders, for tracing a
// WooCommerce order back to its gateway session.
const (
	metaSessionID     = "_stripe_session_id"
	metaPaymentIntent = "_stripe_payment_intent_id"
)

// maxPayloadBytes bounds webhook request bodies.
const maxPayloadBytes = 1 << 20

// commerceClient is the slice of the WooCommerce client reconciliation needs.
type commerceClient interface {
	CreateOrder(ctx context.Context, in woocommerce.OrderInput) (*woocommerce.Order, error)
}

// customerResolver finds or creates the commerce customer for an email.
type customerResolver interface {
	Resolve(ctx context.Context, in customer.Input) (int64, error)
}

// ledger is the local payment-session dedup store. Claim must be safe under
// concurrent delivery of the same session id.
type ledger interface {
	Claim(ctx context.Context, sessionID string) (claimed bool, orderID *int64, err error)
	RecordOrder(ctx context.Context, sessionID string, orderID int64) error
}

// accountReader looks up a local account by id.
type accountReader interface {
	AccountByID(ctx context.Context, id string) (*model.Account, error)
}

// Handler processes gateway webhook deliveries.
type Handler struct {
	gateway  payment.Gateway
	commerce commerceClient
	resolver customerResolver
	ledger   ledger
	accounts accountReader
	logger   *slog.Logger
}

// NewHandler creates a webhook Handler.
func NewHandler(gateway payment.Gateway, commerce commerceClient, resolver customerResolver, ledger ledger, accounts accountReader, logger *slog.Logger) *Handler {
	return &Handler{
		gateway:  gateway,
		commerce: commerce,
		resolver: resolver,
		ledger:   ledger,
		accounts: accounts,
		logger:   logger,
	}
}

// ServeHTTP verifies and dispatches one webhook delivery. Signature failure
// rejects the request before anything is read out of it; a missing secret
// rejects every delivery. Transient reconciliation failures return 502 so
// the gateway redelivers; everything else acknowledges with 200 so the
// gateway stops retrying.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	event, err := h.gateway.ConstructEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.WarnContext(ctx, "webhook rejected",
			slog.String("error", err.Error()),
		)
		http.Error(w, "webhook verification failed", statusOf(err, http.StatusBadRequest))
		return
	}

	switch event.Type {
	case payment.EventCheckoutCompleted:
		// Delayed payment methods complete the session before the money
		// arrives; the async success event handles those.
		if event.Session.PaymentStatus != payment.StatusPaid {
			h.logger.InfoContext(ctx, "session completed awaiting payment",
				slog.String("session_id", event.Session.ID),
				slog.String("payment_status", event.Session.PaymentStatus),
			)
			w.WriteHeader(http.StatusOK)
			return
		}
		err = h.reconcile(ctx, &event.Session)

	case payment.EventAsyncPaymentSucceeded:
		err = h.reconcile(ctx, &event.Session)

	case payment.EventAsyncPaymentFailed:
		h.logger.WarnContext(ctx, "async payment failed",
			slog.String("session_id", event.Session.ID),
			slog.String("email", event.Session.CustomerEmail),
		)

	default:
		h.logger.DebugContext(ctx, "ignoring webhook event",
			slog.String("type", event.Type),
		)
	}

	if err != nil {
		http.Error(w, "reconciliation failed", statusOf(err, http.StatusBadGateway))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// reconcile turns a paid session into a WooCommerce order exactly once.
// A nil return acknowledges the delivery; a non-nil return asks the gateway
// to redeliver, so it is reserved for failures that a retry can fix.
func (h *Handler) reconcile(ctx context.Context, sess *payment.Session) error {
	intent, err := checkout.DecodeMetadata(sess.Metadata)
	if err != nil {
		// Redelivery brings the same metadata back; retrying cannot help.
		h.logger.ErrorContext(ctx, "unreadable session metadata",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if len(intent.Lines) == 0 {
		h.logger.ErrorContext(ctx, "paid session carries no cart items",
			slog.String("session_id", sess.ID),
		)
		return nil
	}

	claimed, existingOrderID, err := h.ledger.Claim(ctx, sess.ID)
	if err != nil {
		return err
	}
	if !claimed && existingOrderID != nil {
		h.logger.InfoContext(ctx, "session already reconciled",
			slog.String("session_id", sess.ID),
			slog.Int64("order_id", *existingOrderID),
		)
		return nil
	}

	email := intent.Billing.Email
	if email == "" {
		email = sess.CustomerEmail
		intent.Billing.Email = email
	}

	var account *model.Account
	if intent.AccountID != "" {
		account, err = h.accounts.AccountByID(ctx, intent.AccountID)
		if err != nil {
			// Guest fallback keeps the order flowing; the resolver still
			// matches by email.
			h.logger.WarnContext(ctx, "account lookup failed",
				slog.String("account_id", intent.AccountID),
				slog.String("error", err.Error()),
			)
			account = nil
		}
	}

	customerID, err := h.resolver.Resolve(ctx, customer.Input{
		Email:     email,
		FirstName: intent.Billing.FirstName,
		LastName:  intent.Billing.LastName,
		Billing:   wooAddress(intent.Billing),
		Shipping:  wooAddress(shippingFor(intent)),
		Account:   account,
	})
	if err != nil {
		return err
	}

	order, err := h.commerce.CreateOrder(ctx, checkout.BuildOrder(checkout.BuildOrderParams{
		Lines:         intent.Lines,
		Billing:       intent.Billing,
		Shipping:      intent.Shipping,
		PaymentMethod: checkout.MethodStripe,
		Paid:          true,
		CustomerID:    customerID,
		MetaData: []woocommerce.MetaData{
			{Key: metaSessionID, Value: sess.ID},
			{Key: metaPaymentIntent, Value: sess.PaymentIntentID},
		},
	}))
	if err != nil {
		h.logger.ErrorContext(ctx, "order creation failed for paid session",
			slog.String("session_id", sess.ID),
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := h.ledger.RecordOrder(ctx, sess.ID, order.ID); err != nil {
		// The order exists; a redelivery will find the claim and skip.
		h.logger.WarnContext(ctx, "failed to record reconciled order",
			slog.String("session_id", sess.ID),
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	h.logger.InfoContext(ctx, "payment session reconciled",
		slog.String("session_id", sess.ID),
		slog.Int64("order_id", order.ID),
		slog.Int64("customer_id", customerID),
	)
	return nil
}

// shippingFor mirrors the order-build default for the resolver's customer
// profile update.
func shippingFor(intent *checkout.Intent) model.Address {
	if intent.Shipping != nil {
		return *intent.Shipping
	}
	copied := intent.Billing
	copied.Email = ""
	copied.Phone = ""
	return copied
}

func wooAddress(a model.Address) woocommerce.Address {
	return woocommerce.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		Postcode:  a.Postcode,
		Country:   a.Country,
		Email:     a.Email,
		Phone:     a.Phone,
	}
}

// statusOf extracts the HTTP status from a structured error, falling back
// to the given default.
func statusOf(err error, fallback int) int {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode
	}
	return fallback
}
