package model

import (
	"errors"
	"testing"
)

func TestCartLineRefKey(t *testing.T) {
	tests := []struct {
		name string
		ref  CartLineRef
		want string
	}{
		{"simple product", CartLineRef{ProductID: 7}, "7"},
		{"with variation", CartLineRef{ProductID: 7, VariationID: 71}, "7:71"},
		{"different variation differs", CartLineRef{ProductID: 7, VariationID: 72}, "7:72"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func validAddress() Address {
	return Address{
		FirstName: "Jane", LastName: "Doe",
		Address1: "1 Main St", City: "Springfield", Postcode: "12345",
		Country: "DE", Email: "jane@example.com", Phone: "555-0100",
	}
}

func TestAddressValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Address)
		billing bool
		wantErr bool
	}{
		{"valid billing", func(a *Address) {}, true, false},
		{"valid shipping without contact", func(a *Address) { a.Email = ""; a.Phone = "" }, false, false},
		{"missing first name", func(a *Address) { a.FirstName = "" }, true, true},
		{"missing city", func(a *Address) { a.City = " " }, true, true},
		{"missing country", func(a *Address) { a.Country = "" }, false, true},
		{"billing without email", func(a *Address) { a.Email = "" }, true, true},
		{"billing without phone", func(a *Address) { a.Phone = "" }, true, true},
		{"billing bad email", func(a *Address) { a.Email = "jane@nodot" }, true, true},
		{"billing email no local part", func(a *Address) { a.Email = "@example.com" }, true, true},
		{"shipping skips email check", func(a *Address) { a.Email = "not-an-email" }, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAddress()
			tt.mutate(&a)

			err := a.Validate(tt.billing)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.billing, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jane@Example.COM", "jane@example.com"},
		{"  jane@example.com  ", "jane@example.com"},
		{"jane@example.com", "jane@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAccountLinked(t *testing.T) {
	woo := int64(42)
	zero := int64(0)

	tests := []struct {
		name    string
		account *Account
		want    bool
	}{
		{"nil account", nil, false},
		{"no customer id", &Account{ID: "a"}, false},
		{"zero customer id", &Account{ID: "a", WooCustomerID: &zero}, false},
		{"linked", &Account{ID: "a", WooCustomerID: &woo}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.Linked(); got != tt.want {
				t.Errorf("Linked() = %v, want %v", got, tt.want)
			}
		})
	}
}
