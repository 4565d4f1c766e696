package domain

import "time"

type TransactionType string

const (
	TransactionTypeRentalPayment      TransactionType = "RENTAL_PAYMENT"
	TransactionTypeRefundFull         TransactionType = "REFUND_FULL"
	TransactionTypeRentalPayout       TransactionType = "RENTAL_PAYOUT"
	TransactionTypeRefundDeposit      TransactionType = "REFUND_DEPOSIT"
	TransactionTypeExtensionPayment   TransactionType = "EXTENSION_PAYMENT"
	TransactionTypeCompensationPayout TransactionType = "COMPENSATION_PAYOUT"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// LedgerTransaction is an immutable record of a single fund movement between
// two accounts. Append-only; the only permitted update is the
// pending -> success/failed status flip for async settlements.
type LedgerTransaction struct {
	ID            int32             `json:"id"`
	Reference     string            `json:"reference"` // uuid, correlation id
	FromAccountID int32             `json:"from_account_id"`
	ToAccountID   int32             `json:"to_account_id"`
	AmountCents   int32             `json:"amount_cents"`
	Type          TransactionType   `json:"type"`
	Status        TransactionStatus `json:"status"`
	CreatedOn     time.Time         `json:"created_on"`
}

// BookingSettlementLink associates a ledger transaction with the booking(s)
// it settles. A checkout transaction may cover several bookings; a booking
// accumulates several settlements over its life. A transaction is considered
// applied only once it has at least one link.
type BookingSettlementLink struct {
	ID            int32 `json:"id"`
	TransactionID int32 `json:"transaction_id"`
	BookingID     int32 `json:"booking_id"`
}

// LedgerSummary aggregates an account's position for the dashboard queries.
type LedgerSummary struct {
	BalanceCents         int32            `json:"balance_cents"`
	ActiveBookingsCount  int32            `json:"active_bookings_count"`
	ActiveLendingsCount  int32            `json:"active_lendings_count"`
	PendingRequestsCount int32            `json:"pending_requests_count"`
	StatusCount          map[string]int32 `json:"status_count"`
}
