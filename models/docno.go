package models

import (
	"fmt"
	"time"
)

// Document numbers: year-scoped running sequence per document type.

func GenOrderNo(seq int64, t time.Time) string {
	return fmt.Sprintf("PO-%d-%06d", t.Year(), seq)
}

func GenReceiptNo(seq int64, t time.Time) string {
	return fmt.Sprintf("GRN-%d-%06d", t.Year(), seq)
}

func GenVoucherNo(seq int64, t time.Time) string {
	return fmt.Sprintf("PV-%d-%06d", t.Year(), seq)
}
