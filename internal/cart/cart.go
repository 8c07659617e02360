// Package cart implements the buyer's cart aggregate: an ordered list of
// priced lines with merge-on-add semantics and subtotal/total computation.
//
// The cart itself lives in the buyer's browser and is never synced to the
// server; this aggregate is built per request from client-supplied line
// references after server-side price resolution. Matching is by
// (product, variation) key, the same composite key used across the core.
package cart

import (
	"dolls-storefront/internal/model"
	"dolls-storefront/internal/pricing"
)

// Line is one priced cart line. RegularCents is the list price,
// PriceCents the effective (sale) price; equal when not on sale.
// For lines with a variation, both prices come from the variation,
// not the parent product.
type Line struct {
	Ref          model.CartLineRef
	Name         string
	RegularCents int64
	PriceCents   int64
}

// Cart is an ordered sequence of lines with at most one line per
// (product, variation) pair.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Lines returns the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return c.lines
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// AddLine adds a priced line to the cart. If a line with the same
// (product, variation) pair exists, its quantity is incremented by the
// added quantity and the stored prices are refreshed; otherwise the line
// is appended. Quantities below 1 are rejected by returning false.
func (c *Cart) AddLine(l Line) bool {
	if l.Ref.Quantity < 1 {
		return false
	}
	key := l.Ref.Key()
	for i := range c.lines {
		if c.lines[i].Ref.Key() == key {
			c.lines[i].Ref.Quantity += l.Ref.Quantity
			c.lines[i].RegularCents = l.RegularCents
			c.lines[i].PriceCents = l.PriceCents
			return true
		}
	}
	c.lines = append(c.lines, l)
	return true
}

// RemoveLine removes lines for the given product. When variationID is
// non-zero only the exact (product, variation) line is removed; when zero,
// every variation of the product goes.
func (c *Cart) RemoveLine(productID, variationID int64) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.Ref.ProductID == productID && (variationID == 0 || l.Ref.VariationID == variationID) {
			continue
		}
		kept = append(kept, l)
	}
	c.lines = kept
}

// SetQuantity overwrites the quantity on the matching line. A quantity of
// zero or less removes the line outright; a cart never holds an empty line.
func (c *Cart) SetQuantity(productID, variationID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(productID, variationID)
		return
	}
	ref := model.CartLineRef{ProductID: productID, VariationID: variationID}
	key := ref.Key()
	for i := range c.lines {
		if c.lines[i].Ref.Key() == key {
			c.lines[i].Ref.Quantity = quantity
			return
		}
	}
}

// Clear empties all lines.
func (c *Cart) Clear() {
	c.lines = nil
}

// SubtotalCents sums regular price × quantity across all lines.
// Shown against TotalCents as "you save".
func (c *Cart) SubtotalCents() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.RegularCents * int64(l.Ref.Quantity)
	}
	return sum
}

// TotalCents sums effective price × quantity across all lines.
func (c *Cart) TotalCents() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.PriceCents * int64(l.Ref.Quantity)
	}
	return sum
}

// ShippingCents applies the shared free-shipping policy to this cart.
func (c *Cart) ShippingCents() int64 {
	return pricing.ShippingCents(c.TotalCents())
}

// GrandTotalCents is the effective total plus shipping.
func (c *Cart) GrandTotalCents() int64 {
	return c.TotalCents() + c.ShippingCents()
}

// Refs returns the bare line references, the only cart data a client may
// hand to the order-create path.
func (c *Cart) Refs() []model.CartLineRef {
	refs := make([]model.CartLineRef, len(c.lines))
	for i, l := range c.lines {
		refs[i] = l.Ref
	}
	return refs
}
