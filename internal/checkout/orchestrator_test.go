package checkout

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"dolls-storefront/internal/customer"
	"dolls-storefront/internal/model"
	"dolls-storefront/internal/payment"
	"dolls-storefront/internal/woocommerce"
)

type fakeCommerce struct {
	products   map[int64]*woocommerce.Product
	variations map[int64]*woocommerce.Variation

	createdOrders []woocommerce.OrderInput
	orderErr      error
}

func (f *fakeCommerce) GetProduct(ctx context.Context, id int64) (*woocommerce.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, model.NewNotFoundError("product")
	}
	return p, nil
}

func (f *fakeCommerce) GetVariation(ctx context.Context, productID, variationID int64) (*woocommerce.Variation, error) {
	v, ok := f.variations[variationID]
	if !ok {
		return nil, model.NewNotFoundError("variation")
	}
	return v, nil
}

func (f *fakeCommerce) CreateOrder(ctx context.Context, in woocommerce.OrderInput) (*woocommerce.Order, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.createdOrders = append(f.createdOrders, in)
	return &woocommerce.Order{ID: 900, Number: "900", Status: "on-hold", CustomerID: in.CustomerID}, nil
}

type fakeResolver struct {
	id    int64
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, in customer.Input) (int64, error) {
	f.calls++
	return f.id, nil
}

func billing() model.Address {
	return model.Address{
		FirstName: "Jane", LastName: "Doe",
		Address1: "1 Main St", City: "Springfield", Postcode: "12345",
		Country: "DE", Email: "jane@example.com", Phone: "555-0100",
	}
}

func testOrchestrator(commerce *fakeCommerce, gw payment.Gateway, resolver customerResolver) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(commerce, gw, resolver, logger, "https://shop.test/", "eur")
}

func TestCreateSessionLineItems(t *testing.T) {
	commerce := &fakeCommerce{products: map[int64]*woocommerce.Product{
		7: {ID: 7, Name: "Doll A", Price: "50.00", RegularPrice: "50.00"},
	}}

	var captured *payment.SessionRequest
	gw := &payment.Mock{
		CreateSessionFunc: func(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
			captured = req
			return &payment.Session{ID: "cs_123", URL: "https://pay.test/cs_123"}, nil
		},
	}

	o := testOrchestrator(commerce, gw, &fakeResolver{id: 12})
	sess, err := o.CreateSession(context.Background(), &Request{
		Lines:         []model.CartLineRef{{ProductID: 7, Quantity: 2}},
		Billing:       billing(),
		PaymentMethod: MethodStripe,
	}, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID != "cs_123" {
		t.Errorf("session id = %q", sess.ID)
	}

	// 100.00 total is below the 200.00 threshold: item line + shipping line.
	if len(captured.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2: %+v", len(captured.LineItems), captured.LineItems)
	}
	item := captured.LineItems[0]
	if item.AmountCents != 5000 || item.Quantity != 2 {
		t.Errorf("item line = %+v, want 5000 x2", item)
	}
	ship := captured.LineItems[1]
	if ship.AmountCents != 1500 || ship.Quantity != 1 {
		t.Errorf("shipping line = %+v, want 1500 x1", ship)
	}

	if captured.Metadata[metaCartItems] == "" {
		t.Error("metadata missing cart_items")
	}
	if captured.Metadata["billing_email"] != "jane@example.com" {
		t.Errorf("metadata billing_email = %q", captured.Metadata["billing_email"])
	}
	if captured.CustomerEmail != "jane@example.com" {
		t.Errorf("customer email = %q", captured.CustomerEmail)
	}
}

func TestCreateSessionDiscountLine(t *testing.T) {
	commerce := &fakeCommerce{products: map[int64]*woocommerce.Product{
		7: {ID: 7, Name: "Doll A", Price: "50.00", RegularPrice: "50.00"},
	}}

	var captured *payment.SessionRequest
	gw := &payment.Mock{
		CreateSessionFunc: func(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
			captured = req
			return &payment.Session{ID: "cs_d"}, nil
		},
	}

	o := testOrchestrator(commerce, gw, &fakeResolver{})
	_, err := o.CreateSession(context.Background(), &Request{
		Lines:         []model.CartLineRef{{ProductID: 7, Quantity: 2}},
		Billing:       billing(),
		PaymentMethod: MethodStripe,
		DiscountCents: 2000,
	}, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	last := captured.LineItems[len(captured.LineItems)-1]
	if last.AmountCents != -2000 || last.Quantity != 1 {
		t.Errorf("discount line = %+v, want -2000 x1", last)
	}

	// The discount is a session line only; the reconstructable intent still
	// holds just the cart lines.
	intent, err := DecodeMetadata(captured.Metadata)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if len(intent.Lines) != 1 || intent.Lines[0].ProductID != 7 || intent.Lines[0].Quantity != 2 {
		t.Errorf("decoded lines = %+v", intent.Lines)
	}
}

func TestCreateSessionVariationPriceWins(t *testing.T) {
	commerce := &fakeCommerce{
		products: map[int64]*woocommerce.Product{
			7: {ID: 7, Name: "Doll A", Price: "50.00", RegularPrice: "50.00"},
		},
		variations: map[int64]*woocommerce.Variation{
			71: {ID: 71, Price: "65.00", RegularPrice: "70.00"},
		},
	}

	var captured *payment.SessionRequest
	gw := &payment.Mock{
		CreateSessionFunc: func(ctx context.Context, req *payment.SessionRequest) (*payment.Session, error) {
			captured = req
			return &payment.Session{ID: "cs_v"}, nil
		},
	}

	o := testOrchestrator(commerce, gw, &fakeResolver{})
	_, err := o.CreateSession(context.Background(), &Request{
		Lines:         []model.CartLineRef{{ProductID: 7, VariationID: 71, Quantity: 1}},
		Billing:       billing(),
		PaymentMethod: MethodStripe,
	}, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if captured.LineItems[0].AmountCents != 6500 {
		t.Errorf("variation amount = %d, want 6500", captured.LineItems[0].AmountCents)
	}
}

func TestSubmitOrderDirectPath(t *testing.T) {
	commerce := &fakeCommerce{}
	resolver := &fakeResolver{id: 44}

	o := testOrchestrator(commerce, &payment.Mock{}, resolver)
	order, err := o.SubmitOrder(context.Background(), &Request{
		Lines:         []model.CartLineRef{{ProductID: 7, Quantity: 3}},
		Billing:       billing(),
		PaymentMethod: "bacs",
	}, nil)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if order.ID != 900 {
		t.Errorf("order id = %d", order.ID)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls)
	}

	created := commerce.createdOrders[0]
	if created.SetPaid {
		t.Error("direct order must be created unpaid")
	}
	if created.CustomerID != 44 {
		t.Errorf("customer id = %d, want 44", created.CustomerID)
	}
	if len(created.LineItems) != 1 || created.LineItems[0].Quantity != 3 {
		t.Errorf("line items = %+v", created.LineItems)
	}
	// Shipping defaults to a copy of billing without contact fields.
	if created.Shipping.Address1 != "1 Main St" || created.Shipping.Email != "" {
		t.Errorf("shipping = %+v", created.Shipping)
	}
}

func TestSubmitOrderFailurePropagates(t *testing.T) {
	commerce := &fakeCommerce{orderErr: model.NewUpstreamError("WooCommerce", nil)}
	o := testOrchestrator(commerce, &payment.Mock{}, &fakeResolver{id: 1})

	_, err := o.SubmitOrder(context.Background(), &Request{
		Lines:         []model.CartLineRef{{ProductID: 7, Quantity: 1}},
		Billing:       billing(),
		PaymentMethod: "cod",
	}, nil)
	if err == nil {
		t.Fatal("SubmitOrder succeeded despite order-create failure")
	}
}

func TestRequestValidation(t *testing.T) {
	valid := billing()

	tests := []struct {
		name string
		req  Request
	}{
		{"no lines", Request{Billing: valid, PaymentMethod: "bacs"}},
		{"zero quantity", Request{
			Lines:   []model.CartLineRef{{ProductID: 7, Quantity: 0}},
			Billing: valid, PaymentMethod: "bacs",
		}},
		{"missing email", Request{
			Lines:   []model.CartLineRef{{ProductID: 7, Quantity: 1}},
			Billing: model.Address{FirstName: "J", LastName: "D", Address1: "x", City: "y", Postcode: "z", Country: "DE", Phone: "1"},
		}},
		{"no payment method", Request{
			Lines:   []model.CartLineRef{{ProductID: 7, Quantity: 1}},
			Billing: valid,
		}},
	}

	o := testOrchestrator(&fakeCommerce{}, &payment.Mock{}, &fakeResolver{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := o.SubmitOrder(context.Background(), &tt.req, nil); err == nil {
				t.Error("invalid request accepted")
			}
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	shipping := model.Address{
		FirstName: "Jan", LastName: "Doe", Address1: "2 Side St",
		City: "Hamburg", Postcode: "20095", Country: "DE",
	}
	in := Intent{
		Lines:     []model.CartLineRef{{ProductID: 7, VariationID: 71, Quantity: 2}, {ProductID: 9, Quantity: 1}},
		Billing:   billing(),
		Shipping:  &shipping,
		AccountID: "acc-9",
	}

	md, err := EncodeMetadata(in)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	out, err := DecodeMetadata(md)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}

	if len(out.Lines) != 2 || out.Lines[0].VariationID != 71 {
		t.Errorf("lines = %+v", out.Lines)
	}
	if out.Billing.Email != "jane@example.com" {
		t.Errorf("billing email = %q", out.Billing.Email)
	}
	if out.Shipping == nil || out.Shipping.Address1 != "2 Side St" {
		t.Errorf("shipping = %+v", out.Shipping)
	}
	if out.AccountID != "acc-9" {
		t.Errorf("account id = %q", out.AccountID)
	}
}

func TestDecodeMetadataEmpty(t *testing.T) {
	intent, err := DecodeMetadata(map[string]string{})
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if len(intent.Lines) != 0 {
		t.Errorf("lines = %+v, want none", intent.Lines)
	}

	if _, err := DecodeMetadata(map[string]string{metaCartItems: "{not json"}); err == nil {
		t.Error("malformed cart_items accepted")
	}
}
