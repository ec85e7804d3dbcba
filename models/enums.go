package models

// LedgerEntryType tags every quantity change with its origin.
type LedgerEntryType string

const (
	EntryProcurement LedgerEntryType = "PROCUREMENT"
	EntryConsumption LedgerEntryType = "CONSUMPTION"
	EntryAdjustment  LedgerEntryType = "ADJUSTMENT"
	EntryInitial     LedgerEntryType = "INITIAL"
	EntryReplacement LedgerEntryType = "REPLACEMENT"
)

func (t LedgerEntryType) Valid() bool {
	switch t {
	case EntryProcurement, EntryConsumption, EntryAdjustment, EntryInitial, EntryReplacement:
		return true
	}
	return false
}

// RequestStatus is the purchase request lifecycle.
//
// PENDING -> APPROVED | REJECTED (review), APPROVED -> ORDERED (PO link),
// REJECTED -> PENDING (edit). STOCK_ALLOCATED is terminal and only ever
// set at creation: it marks an internal reservation, never an external buy.
type RequestStatus string

const (
	RequestPending        RequestStatus = "PENDING"
	RequestApproved       RequestStatus = "APPROVED"
	RequestRejected       RequestStatus = "REJECTED"
	RequestOrdered        RequestStatus = "ORDERED"
	RequestStockAllocated RequestStatus = "STOCK_ALLOCATED"
)

// OrderStatus is the purchase order lifecycle.
type OrderStatus string

const (
	OrderPendingApproval OrderStatus = "PENDING_APPROVAL"
	OrderIssued          OrderStatus = "ISSUED"
	OrderReceived        OrderStatus = "RECEIVED"
	OrderPartialPaid     OrderStatus = "PARTIAL_PAID"
	OrderPaid            OrderStatus = "PAID"
)
