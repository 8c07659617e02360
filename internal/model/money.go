package model

import (
	"math"
	"strconv"
)

// ParseCents converts decimal string amounts (major units) to cents (int64).
// The WooCommerce REST API returns all price fields as decimal strings
// (e.g., "99.00" = 99.00 EUR). Handles empty strings and missing decimals.
// Examples: "99.00" → 9900, "1234.5" → 123450, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return int64(math.Round(f * 100))
}

// FormatMajorUnits renders cents as a decimal string in major units.
// WooCommerce order line items and totals expect this format on write.
// Examples: 9900 → "99.00", -2000 → "-20.00", 5 → "0.05"
func FormatMajorUnits(cents int64) string {
	neg := ""
	if cents < 0 {
		neg = "-"
		cents = -cents
	}
	return neg + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
