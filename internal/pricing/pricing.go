// Package pricing holds the store-wide pricing policy.
//
// The free-shipping rule lives here and ONLY here: both the cart display
// totals and the checkout session builder call ShippingCents, so the
// threshold cannot drift between the two surfaces.
package pricing

// All amounts are minor currency units.
const (
	// FreeShippingThresholdCents is the cart total at which shipping is free.
	FreeShippingThresholdCents int64 = 20000

	// ShippingFeeCents is the flat shipping fee below the threshold.
	ShippingFeeCents int64 = 1500
)

// ShippingCents returns the shipping cost for a cart with the given
// effective total: 0 at or above the free-shipping threshold, the flat
// fee below it.
func ShippingCents(totalCents int64) int64 {
	if totalCents >= FreeShippingThresholdCents {
		return 0
	}
	return ShippingFeeCents
}
