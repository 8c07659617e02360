// Package woocommerce implements the narrow REST API v3 client this service
// needs: product/variation reads for price resolution, customer search and
// creation, and order creation/listing. All WooCommerce-specific types and
// HTTP plumbing live here.
package woocommerce

// === Catalog ===

// Product is the subset of a WooCommerce product used for price resolution.
// Price fields are decimal strings in major units ("99.00").
type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`         // Effective price (sale when on sale)
	RegularPrice string `json:"regular_price"` // List price
	SalePrice    string `json:"sale_price"`    // Empty when not on sale
	OnSale       bool   `json:"on_sale"`
	Purchasable  bool   `json:"purchasable"`
	StockStatus  string `json:"stock_status"`
}

// Variation is a purchasable configuration of a product with its own price
// and stock. Shares the price field format with Product.
type Variation struct {
	ID           int64  `json:"id"`
	Price        string `json:"price"`
	RegularPrice string `json:"regular_price"`
	SalePrice    string `json:"sale_price"`
	OnSale       bool   `json:"on_sale"`
	Purchasable  bool   `json:"purchasable"`
	StockStatus  string `json:"stock_status"`
}

// === Customers ===

// Address is the WooCommerce billing/shipping address shape.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Customer is a commerce-backend customer record, keyed by email.
type Customer struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username,omitempty"`
	Billing   Address `json:"billing"`
	Shipping  Address `json:"shipping"`
}

// CustomerInput creates a new customer. The password is server-generated and
// write-once: buyers authenticate through the local account, never through
// WooCommerce directly.
type CustomerInput struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Password  string  `json:"password"`
	Billing   Address `json:"billing"`
	Shipping  Address `json:"shipping"`
}

// === Orders ===

// OrderLineItem carries product/variation id and quantity only. No price:
// WooCommerce resolves prices at order-creation time, client amounts are
// never trusted.
type OrderLineItem struct {
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id,omitempty"`
	Quantity    int   `json:"quantity"`
}

// MetaData is a free-form key/value pair on an order. The payment-session
// and payment-intent ids ride here for traceability and manual dedup.
type MetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderInput creates a new order.
type OrderInput struct {
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title,omitempty"`
	SetPaid            bool            `json:"set_paid"`
	CustomerID         int64           `json:"customer_id,omitempty"`
	Billing            Address         `json:"billing"`
	Shipping           Address         `json:"shipping"`
	LineItems          []OrderLineItem `json:"line_items"`
	MetaData           []MetaData      `json:"meta_data,omitempty"`
}

// Order is a created order as WooCommerce returns it.
type Order struct {
	ID            int64            `json:"id"`
	Number        string           `json:"number"`
	Status        string           `json:"status"`
	Currency      string           `json:"currency"`
	Total         string           `json:"total"`
	DateCreated   string           `json:"date_created"`
	CustomerID    int64            `json:"customer_id"`
	PaymentMethod string           `json:"payment_method"`
	Billing       Address          `json:"billing"`
	Shipping      Address          `json:"shipping"`
	LineItems     []OrderLineState `json:"line_items"`
	MetaData      []MetaData       `json:"meta_data,omitempty"`
}

// OrderLineState is a line item as it appears on a created order.
type OrderLineState struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	VariationID int64  `json:"variation_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Total       string `json:"total"`
}

// errorResponse is the WooCommerce REST API error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}
