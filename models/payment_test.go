package models

import "testing"

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		name        string
		total, paid string
		want        OrderStatus
	}{
		{"first partial payment", "500", "300", OrderPartialPaid},
		{"exact settlement", "500", "500", OrderPaid},
		{"settled across vouchers", "500", "500.00", OrderPaid},
		{"overpayment still paid", "500", "620", OrderPaid},
		{"tiny remainder stays partial", "500", "499.9999", OrderPartialPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaymentStatusFor(d(tt.total), d(tt.paid)); got != tt.want {
				t.Errorf("PaymentStatusFor(%s, %s) = %s, want %s", tt.total, tt.paid, got, tt.want)
			}
		})
	}
}
