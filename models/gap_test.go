package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeGap(t *testing.T) {
	tests := []struct {
		name                         string
		required, physical, reserved string
		wantAvailable, wantDeficit   string
	}{
		{"nothing in stock", "50", "0", "0", "0", "50"},
		{"fully covered", "50", "80", "0", "80", "0"},
		{"partially reserved", "50", "80", "60", "20", "30"},
		{"over-reserved stock", "50", "30", "40", "0", "50"},
		{"negative physical stock", "50", "-10", "0", "0", "50"},
		{"exact cover", "50", "70", "20", "50", "0"},
		{"fractional quantities", "12.5", "10.25", "3.75", "6.5", "6"},
		{"zero required", "0", "100", "0", "100", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			available, deficit := ComputeGap(d(tt.required), d(tt.physical), d(tt.reserved))
			if !available.Equal(d(tt.wantAvailable)) {
				t.Errorf("available = %s, want %s", available, tt.wantAvailable)
			}
			if !deficit.Equal(d(tt.wantDeficit)) {
				t.Errorf("deficit = %s, want %s", deficit, tt.wantDeficit)
			}
			if available.IsNegative() || deficit.IsNegative() {
				t.Errorf("gap math produced a negative result: available=%s deficit=%s", available, deficit)
			}
		})
	}
}

func TestSplitRequest(t *testing.T) {
	tests := []struct {
		name                 string
		required, input      string
		wantBuy, wantReserve string
	}{
		{"buy the deficit, reserve the rest", "50", "30", "30", "20"},
		{"buy everything", "50", "50", "50", "0"},
		{"reserve everything", "50", "0", "0", "50"},
		{"fractional split", "12.5", "4.25", "4.25", "8.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy, reserve, err := SplitRequest(d(tt.required), d(tt.input))
			if err != nil {
				t.Fatalf("SplitRequest: %v", err)
			}
			if !buy.Equal(d(tt.wantBuy)) {
				t.Errorf("qtyToBuy = %s, want %s", buy, tt.wantBuy)
			}
			if !reserve.Equal(d(tt.wantReserve)) {
				t.Errorf("qtyToReserve = %s, want %s", reserve, tt.wantReserve)
			}
			if !buy.Add(reserve).Equal(d(tt.required)) {
				t.Errorf("buy %s + reserve %s != required %s", buy, reserve, tt.required)
			}
		})
	}
}

func TestSplitRequestRejectsOutOfRangeInput(t *testing.T) {
	tests := []struct {
		name            string
		required, input string
	}{
		{"negative input", "50", "-1"},
		{"input above required", "50", "50.0001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitRequest(d(tt.required), d(tt.input))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}
}
