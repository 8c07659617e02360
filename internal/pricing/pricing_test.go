package pricing

import "testing"

func TestShippingCents(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		want  int64
	}{
		{"zero total", 0, ShippingFeeCents},
		{"just below threshold", FreeShippingThresholdCents - 1, ShippingFeeCents},
		{"exactly at threshold", FreeShippingThresholdCents, 0},
		{"above threshold", FreeShippingThresholdCents + 5000, 0},
		{"mid cart", 10000, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShippingCents(tt.total); got != tt.want {
				t.Errorf("ShippingCents(%d) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}
