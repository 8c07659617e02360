// Package checkout turns a cart plus submitted address data into either a
// directly created WooCommerce order (manual payment methods) or a hosted
// Stripe session (card payments), and owns the order-build rules shared
// with webhook reconciliation.
package checkout

import (
	"context"
	"log/slog"
	"strings"

	"dolls-storefront/internal/cart"
	"dolls-storefront/internal/customer"
	"dolls-storefront/internal/model"
	"dolls-storefront/internal/payment"
	"dolls-storefront/internal/woocommerce"
)

// MethodStripe is the payment method id that takes the hosted-gateway path.
// Everything else (bacs, cod, cheque, ...) creates the order directly,
// unpaid, to be settled out of band.
const MethodStripe = "stripe"

// paymentMethodTitles maps method ids to the human titles stored on orders.
var paymentMethodTitles = map[string]string{
	MethodStripe: "Card (Stripe)",
	"bacs":       "Direct bank transfer",
	"cod":        "Cash on delivery",
	"cheque":     "Check payments",
}

// commerceClient is the slice of the WooCommerce client checkout needs.
type commerceClient interface {
	GetProduct(ctx context.Context, id int64) (*woocommerce.Product, error)
	GetVariation(ctx context.Context, productID, variationID int64) (*woocommerce.Variation, error)
	CreateOrder(ctx context.Context, in woocommerce.OrderInput) (*woocommerce.Order, error)
}

// customerResolver finds or creates the commerce customer for an email.
type customerResolver interface {
	Resolve(ctx context.Context, in customer.Input) (int64, error)
}

// Orchestrator wires the two checkout paths.
type Orchestrator struct {
	commerce commerceClient
	gateway  payment.Gateway
	resolver customerResolver
	logger   *slog.Logger

	baseURL  string
	currency string
}

// New creates an Orchestrator. baseURL is the public storefront origin used
// for success/cancel redirects; currency the ISO code sessions are priced in.
func New(commerce commerceClient, gateway payment.Gateway, resolver customerResolver, logger *slog.Logger, baseURL, currency string) *Orchestrator {
	return &Orchestrator{
		commerce: commerce,
		gateway:  gateway,
		resolver: resolver,
		logger:   logger,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		currency: currency,
	}
}

// Request is a validated-at-the-boundary checkout submission. Lines carry
// ids and quantities only; prices are resolved server-side.
type Request struct {
	Lines         []model.CartLineRef `json:"line_items"`
	Billing       model.Address       `json:"billing"`
	Shipping      *model.Address      `json:"shipping,omitempty"`
	PaymentMethod string              `json:"payment_method"`
	DiscountCents int64               `json:"discount_cents,omitempty"`
}

// validate rejects malformed submissions before any external call.
func (r *Request) validate() error {
	if len(r.Lines) == 0 {
		return model.NewValidationError("line_items", "at least one item required")
	}
	for _, l := range r.Lines {
		if l.ProductID <= 0 {
			return model.NewValidationError("line_items", "product_id required")
		}
		if l.Quantity < 1 {
			return model.NewValidationError("line_items", "quantity must be positive")
		}
	}
	if err := r.Billing.Validate(true); err != nil {
		return err
	}
	if r.Shipping != nil {
		if err := r.Shipping.Validate(false); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return model.NewValidationError("payment_method", "required")
	}
	return nil
}

// SubmitOrder runs the direct path: resolve the customer, create the order
// unpaid. On failure nothing is created and the buyer's cart (client-held)
// stays intact for retry.
func (o *Orchestrator) SubmitOrder(ctx context.Context, req *Request, account *model.Account) (*woocommerce.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	customerID, err := o.resolver.Resolve(ctx, customer.Input{
		Email:     req.Billing.Email,
		FirstName: req.Billing.FirstName,
		LastName:  req.Billing.LastName,
		Billing:   wooAddress(req.Billing),
		Shipping:  wooAddress(shippingOrBilling(req.Shipping, req.Billing)),
		Account:   account,
	})
	if err != nil {
		return nil, err
	}

	order, err := o.commerce.CreateOrder(ctx, BuildOrder(BuildOrderParams{
		Lines:         req.Lines,
		Billing:       req.Billing,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		Paid:          false,
		CustomerID:    customerID,
	}))
	if err != nil {
		o.logger.ErrorContext(ctx, "direct order creation failed",
			slog.String("email", req.Billing.Email),
			slog.Int64("customer_id", customerID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	o.logger.InfoContext(ctx, "order created",
		slog.Int64("order_id", order.ID),
		slog.Int64("customer_id", customerID),
		slog.String("payment_method", req.PaymentMethod),
	)
	return order, nil
}

// CreateSession runs the hosted path: resolve prices, build the session
// line items (cart lines, shipping fee, discount), stash the full order
// intent in session metadata, and hand the buyer off to the gateway.
// The client clears its cart on receipt of the URL, so the session is then
// the only remaining record of intent.
func (o *Orchestrator) CreateSession(ctx context.Context, req *Request, account *model.Account) (*payment.Session, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	priced, err := o.priceCart(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	items := make([]payment.SessionLineItem, 0, priced.Len()+2)
	for _, l := range priced.Lines() {
		items = append(items, payment.SessionLineItem{
			Name:        l.Name,
			AmountCents: l.PriceCents,
			Quantity:    int64(l.Ref.Quantity),
		})
	}
	if shipping := priced.ShippingCents(); shipping > 0 {
		items = append(items, payment.SessionLineItem{
			Name:        "Shipping",
			AmountCents: shipping,
			Quantity:    1,
		})
	}
	if req.DiscountCents > 0 {
		items = append(items, payment.SessionLineItem{
			Name:        "Discount",
			AmountCents: -req.DiscountCents,
			Quantity:    1,
		})
	}

	accountID := ""
	if account != nil {
		accountID = account.ID
	}
	metadata, err := EncodeMetadata(Intent{
		Lines:     req.Lines,
		Billing:   req.Billing,
		Shipping:  req.Shipping,
		AccountID: accountID,
	})
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	sess, err := o.gateway.CreateSession(ctx, &payment.SessionRequest{
		Currency:      o.currency,
		LineItems:     items,
		Metadata:      metadata,
		CustomerEmail: req.Billing.Email,
		SuccessURL:    o.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     o.baseURL + "/cart",
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "payment session creation failed",
			slog.String("email", req.Billing.Email),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	o.logger.InfoContext(ctx, "payment session created",
		slog.String("session_id", sess.ID),
		slog.Int("line_items", len(items)),
	)
	return sess, nil
}

// priceCart resolves every line's price from the catalog and assembles the
// cart aggregate. Variation prices win over the parent product's.
func (o *Orchestrator) priceCart(ctx context.Context, lines []model.CartLineRef) (*cart.Cart, error) {
	c := cart.New()
	for _, ref := range lines {
		product, err := o.commerce.GetProduct(ctx, ref.ProductID)
		if err != nil {
			return nil, err
		}

		line := cart.Line{
			Ref:          ref,
			Name:         product.Name,
			RegularCents: model.ParseCents(product.RegularPrice),
			PriceCents:   model.ParseCents(product.Price),
		}
		if ref.VariationID != 0 {
			variation, err := o.commerce.GetVariation(ctx, ref.ProductID, ref.VariationID)
			if err != nil {
				return nil, err
			}
			line.RegularCents = model.ParseCents(variation.RegularPrice)
			line.PriceCents = model.ParseCents(variation.Price)
		}
		c.AddLine(line)
	}
	return c, nil
}

// BuildOrderParams collects everything BuildOrder needs.
type BuildOrderParams struct {
	Lines         []model.CartLineRef
	Billing       model.Address
	Shipping      *model.Address
	PaymentMethod string
	Paid          bool
	CustomerID    int64
	MetaData      []woocommerce.MetaData
}

// BuildOrder assembles the WooCommerce order input. One builder serves both
// the direct path and webhook reconciliation so the rules cannot drift:
// line items never carry prices, and a missing shipping address is filled
// with a copy of billing here, at order-build time.
func BuildOrder(p BuildOrderParams) woocommerce.OrderInput {
	items := make([]woocommerce.OrderLineItem, len(p.Lines))
	for i, l := range p.Lines {
		items[i] = woocommerce.OrderLineItem{
			ProductID:   l.ProductID,
			VariationID: l.VariationID,
			Quantity:    l.Quantity,
		}
	}

	return woocommerce.OrderInput{
		PaymentMethod:      p.PaymentMethod,
		PaymentMethodTitle: paymentMethodTitles[p.PaymentMethod],
		SetPaid:            p.Paid,
		CustomerID:         p.CustomerID,
		Billing:            wooAddress(p.Billing),
		Shipping:           wooAddress(shippingOrBilling(p.Shipping, p.Billing)),
		LineItems:          items,
		MetaData:           p.MetaData,
	}
}

// shippingOrBilling returns the distinct shipping address, or a copy of
// billing stripped of contact fields when none was supplied.
func shippingOrBilling(shipping *model.Address, billing model.Address) model.Address {
	if shipping != nil {
		return *shipping
	}
	copied := billing
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
