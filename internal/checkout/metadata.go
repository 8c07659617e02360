package checkout

import (
	"encoding/json"

	"dolls-storefront/internal/model"
)

// Session metadata is the only durable handle between checkout hand-off and
// webhook reconciliation: when the webhook fires, the buyer's cart lives in
// their browser and may already be cleared. Everything needed to build the
// order rides in the metadata bag, nothing is read from any client body.

// Metadata keys.
const (
	metaCartItems   = "cart_items"
	metaAccountID   = "account_id"
	metaHasShipping = "has_shipping"
)

// Intent is the order-to-be reconstructed from session metadata.
type Intent struct {
	Lines     []model.CartLineRef
	Billing   model.Address
	Shipping  *model.Address // nil = default to billing at order build
	AccountID string
}

// EncodeMetadata serializes an intent into the gateway metadata bag.
// Cart lines are one JSON value; addresses are flattened to prefixed keys
// to stay within per-value size limits.
func EncodeMetadata(in Intent) (map[string]string, error) {
	items, err := json.Marshal(in.Lines)
	if err != nil {
		return nil, err
	}

	md := map[string]string{metaCartItems: string(items)}
	putAddress(md, "billing_", in.Billing)
	if in.Shipping != nil {
		md[metaHasShipping] = "1"
		putAddress(md, "shipping_", *in.Shipping)
	}
	if in.AccountID != "" {
		md[metaAccountID] = in.AccountID
	}
	return md, nil
}

// DecodeMetadata reads an intent back out of session metadata. A missing or
// empty cart_items value decodes to zero lines; the caller decides whether
// that aborts reconciliation (it does).
func DecodeMetadata(md map[string]string) (*Intent, error) {
	intent := &Intent{AccountID: md[metaAccountID]}

	if raw := md[metaCartItems]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &intent.Lines); err != nil {
			return nil, model.NewValidationError(metaCartItems, "malformed cart metadata")
		}
	}

	intent.Billing = getAddress(md, "billing_")
	if md[metaHasShipping] == "1" {
		shipping := getAddress(md, "shipping_")
		intent.Shipping = &shipping
	}
	return intent, nil
}

func putAddress(md map[string]string, prefix string, a model.Address) {
	fields := map[string]string{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"company":    a.Company,
		"address_1":  a.Address1,
		"address_2":  a.Address2,
		"city":       a.City,
		"state":      a.State,
		"postcode":   a.Postcode,
		"country":    a.Country,
		"email":      a.Email,
		"phone":      a.Phone,
	}
	for k, v := range fields {
		if v != "" {
			md[prefix+k] = v
		}
	}
}

func getAddress(md map[string]string, prefix string) model.Address {
	return model.Address{
		FirstName: md[prefix+"first_name"],
		LastName:  md[prefix+"last_name"],
		Company:   md[prefix+"company"],
		Address1:  md[prefix+"address_1"],
		Address2:  md[prefix+"address_2"],
		City:      md[prefix+"city"],
		State:     md[prefix+"state"],
		Postcode:  md[prefix+"postcode"],
		Country:   md[prefix+"country"],
		Email:     md[prefix+"email"],
		Phone:     md[prefix+"phone"],
	}
}
