package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestReconcileLine(t *testing.T) {
	tests := []struct {
		name                       string
		ordered, input             string
		wantAccepted, wantRejected string
	}{
		{"full acceptance", "100", "100", "100", "0"},
		{"partial rejection", "100", "80", "80", "20"},
		{"full rejection", "100", "0", "0", "100"},
		{"negative input clamps to zero", "100", "-5", "0", "100"},
		{"input above ordered clamps down", "100", "130", "100", "0"},
		{"fractional quantities", "10.5", "7.25", "7.25", "3.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accepted, rejected := ReconcileLine(d(tt.ordered), d(tt.input))
			if !accepted.Equal(d(tt.wantAccepted)) {
				t.Errorf("accepted = %s, want %s", accepted, tt.wantAccepted)
			}
			if !rejected.Equal(d(tt.wantRejected)) {
				t.Errorf("rejected = %s, want %s", rejected, tt.wantRejected)
			}
			if !accepted.Add(rejected).Equal(d(tt.ordered)) {
				t.Errorf("accepted %s + rejected %s != ordered %s", accepted, rejected, tt.ordered)
			}
		})
	}
}

// Repeated edits of the same line must converge to a consistent split no
// matter what the operator types between edits.
func TestReconcileLineRepeatedEdits(t *testing.T) {
	ordered := d("100")
	accepted, rejected := ordered, decimal.Zero
	for _, input := range []string{"130", "-10", "40", "100", "0", "60"} {
		accepted, rejected = ReconcileLine(ordered, d(input))
		if !accepted.Add(rejected).Equal(ordered) {
			t.Fatalf("after editing to %s: accepted %s + rejected %s != ordered %s", input, accepted, rejected, ordered)
		}
	}
	if !accepted.Equal(d("60")) || !rejected.Equal(d("40")) {
		t.Errorf("final split = %s/%s, want 60/40", accepted, rejected)
	}
}

func TestGoodsReceiptItemValidate(t *testing.T) {
	tests := []struct {
		name                        string
		ordered, accepted, rejected string
		wantErr                     bool
	}{
		{"balanced line", "100", "80", "20", false},
		{"all accepted", "100", "100", "0", false},
		{"all rejected", "100", "0", "100", false},
		{"sum below ordered", "100", "80", "10", true},
		{"sum above ordered", "100", "80", "30", true},
		{"negative accepted", "100", "-10", "110", true},
		{"negative rejected", "100", "110", "-10", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := GoodsReceiptItem{
				OrderedQty:  d(tt.ordered),
				AcceptedQty: d(tt.accepted),
				RejectedQty: d(tt.rejected),
			}
			err := item.Validate()
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("err = %v, want *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}
