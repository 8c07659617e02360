// Package payment abstracts the hosted payment gateway behind a narrow
// interface. The production implementation is Stripe Checkout; tests use
// the function-field Mock.
package payment

import "context"

// Event types the webhook handler cares about. Anything else is ignored.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
)

// Payment statuses as reported on a checkout session.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// SessionLineItem is one priced entry on a hosted payment page.
// AmountCents is the unit amount in minor currency units; negative amounts
// express discounts.
type SessionLineItem struct {
	Name        string
	AmountCents int64
	Quantity    int64
}

// SessionRequest creates a hosted checkout session. Metadata must carry
// every field needed to later build the order with no other input source:
// by the time the webhook fires, the buyer's cart is unreachable.
type SessionRequest struct {
	Currency      string
	LineItems     []SessionLineItem
	Metadata      map[string]string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Session is the gateway-held record of a pending or finished payment.
// It is the sole source of truth for what to order once payment completes.
type Session struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	CustomerEmail   string
	Currency        string
	AmountTotal     int64
	Metadata        map[string]string
}

// Event is a verified webhook notification.
type Event struct {
	Type    string
	Session Session
}

// Gateway is what the checkout orchestrator and webhook handler require of
// the payment provider.
type Gateway interface {
	// CreateSession builds a hosted checkout session and returns its
	// redirect URL and id.
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)

	// RetrieveSession reads a session back, e.g. for the success page.
	RetrieveSession(ctx context.Context, id string) (*Session, error)

	// ConstructEvent verifies the webhook signature against the configured
	// secret and returns the decoded event. The raw body must be passed
	// unmodified. Fails when the secret is missing or the signature is bad.
	ConstructEvent(payload []byte, sigHeader string) (*Event, error)
}
