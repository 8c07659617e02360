package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"

	"dolls-storefront/internal/model"
)

// StripeConfig holds the two Stripe secrets. The webhook secret may be empty
// in setups that never receive webhooks; ConstructEvent then fails closed.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// Stripe implements Gateway over Stripe Checkout sessions.
type Stripe struct {
	webhookSecret string
}

// NewStripe configures the Stripe SDK and returns the gateway.
func NewStripe(cfg StripeConfig) (*Stripe, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripe.Key = cfg.SecretKey
	return &Stripe{webhookSecret: cfg.WebhookSecret}, nil
}

// CreateSession builds a payment-mode checkout session.
func (s *Stripe) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
	}
	params.Context = ctx

	for _, li := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(li.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripeSession(sess), nil
}

// RetrieveSession reads a session back from Stripe.
func (s *Stripe) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(id, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripeSession(sess), nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
// An unconfigured secret is a server misconfiguration (500 class), never a
// silent pass-through.
func (s *Stripe) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	if s.webhookSecret == "" {
		return nil, model.NewInternalError(errors.New("stripe webhook secret not configured"))
	}

	ev, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
	if err != nil {
		return nil, model.NewValidationError("signature", "webhook signature verification failed")
	}

	out := &Event{Type: string(ev.Type)}

	switch out.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return nil, model.NewValidationError("payload", "malformed checkout session object")
		}
		out.Session = *fromStripeSession(&sess)
	}

	return out, nil
}

// fromStripeSession converts the SDK type into the gateway-neutral Session.
func fromStripeSession(sess *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		Currency:      string(sess.Currency),
		AmountTotal:   sess.AmountTotal,
		CustomerEmail: sess.CustomerEmail,
		Metadata:      sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	if out.CustomerEmail == "" && sess.CustomerDetails != nil {
		out.CustomerEmail = sess.CustomerDetails.Email
	}
	return out
}

// mapStripeError translates SDK errors into the shared taxonomy.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.HTTPStatusCode {
		case 404:
			return model.NewNotFoundError("payment session")
		case 401, 403:
			return model.NewUnauthorizedError("Stripe authentication failed")
		case 429:
			return model.NewRateLimitError("Stripe")
		case 402:
			return model.NewPaymentError(stripeErr.Msg)
		}
	}
	return model.NewUpstreamError("Stripe", err)
}

var _ Gateway = (*Stripe)(nil)
