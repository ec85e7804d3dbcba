package models

import (
	"testing"
	"time"
)

func TestDocumentNumbers(t *testing.T) {
	at := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		gen  func(int64, time.Time) string
		seq  int64
		want string
	}{
		{"order number", GenOrderNo, 1, "PO-2026-000001"},
		{"order number wide sequence", GenOrderNo, 1234567, "PO-2026-1234567"},
		{"receipt number", GenReceiptNo, 42, "GRN-2026-000042"},
		{"voucher number", GenVoucherNo, 7, "PV-2026-000007"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gen(tt.seq, at); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
