// Package model holds the domain types shared across the storefront core:
// cart line references, addresses, accounts, and the error/money helpers.
package model

import (
	"strconv"
	"strings"
)

// CartLineRef identifies one cart line as the client is allowed to state it:
// product, optional variation, quantity. Never a price: prices are resolved
// server-side from the catalog (see internal/checkout).
type CartLineRef struct {
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id,omitempty"` // 0 = no variation
	Quantity    int   `json:"quantity"`
}

// Key returns the uniqueness key for a cart line.
// At most one line exists per distinct (product, variation) pair.
func (r CartLineRef) Key() string {
	if r.VariationID == 0 {
		return strconv.FormatInt(r.ProductID, 10)
	}
	return strconv.FormatInt(r.ProductID, 10) + ":" + strconv.FormatInt(r.VariationID, 10)
}

// Address is a validated billing or shipping address.
// Billing requires email and phone; shipping does not.
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

// Validate checks required fields. Billing addresses additionally require a
// well-formed email and a phone number. Malformed addresses are rejected here,
// before any external order-create call.
func (a *Address) Validate(billing bool) error {
	required := map[string]string{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"address_1":  a.Address1,
		"city":       a.City,
		"postcode":   a.Postcode,
		"country":    a.Country,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			return NewValidationError(field, "required")
		}
	}
	if billing {
		if !validEmail(a.Email) {
			return NewValidationError("email", "must be a valid email address")
		}
		if strings.TrimSpace(a.Phone) == "" {
			return NewValidationError("phone", "required")
		}
	}
	return nil
}

// validEmail applies the minimal structural check: one "@" with a dotted
// domain. Full RFC validation is the commerce backend's job.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(s, " \t")
}

// NormalizeEmail lowercases and trims an email for comparison and storage.
// Customer lookups are exact but case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Account is the local user record linked (at most once) to a WooCommerce
// customer. Once WooCustomerID is set it is never overwritten by the resolver;
// only explicit administrative action may change it.
type Account struct {
	ID            string
	Email         string
	WooCustomerID *int64
}

// Linked reports whether the account already carries a commerce customer id.
func (a *Account) Linked() bool {
	return a != nil && a.WooCustomerID != nil && *a.WooCustomerID > 0
}
