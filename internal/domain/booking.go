package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingConfirm        BookingStatus = "PENDING_CONFIRM"
	BookingStatusWaitingDelivery       BookingStatus = "WAITING_DELIVERY"
	BookingStatusPaidRejected          BookingStatus = "PAID_REJECTED"
	BookingStatusInUse                 BookingStatus = "IN_USE"
	BookingStatusDueForReturn          BookingStatus = "DUE_FOR_RETURN"
	BookingStatusReturnedPendingCheck  BookingStatus = "RETURNED_PENDING_CHECK"
	BookingStatusLateReturn            BookingStatus = "LATE_RETURN"
	BookingStatusOverdue               BookingStatus = "OVERDUE"
	BookingStatusForfeited             BookingStatus = "FORFEITED"
	BookingStatusWaitingRefund         BookingStatus = "WAITING_REFUND"
	BookingStatusCompleted             BookingStatus = "COMPLETED"
	BookingStatusReturnRefundRequested BookingStatus = "RETURN_REFUND_REQUESTED"
	BookingStatusReturnRefundProcessing BookingStatus = "RETURN_REFUND_PROCESSING"
	BookingStatusDisputePendingReview  BookingStatus = "DISPUTE_PENDING_REVIEW"
	BookingStatusCompensationCompleted BookingStatus = "COMPENSATION_COMPLETED"
)

// Terminal reports whether no further transition may leave this status.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusPaidRejected, BookingStatusForfeited,
		BookingStatusCompleted, BookingStatusCompensationCompleted:
		return true
	}
	return false
}

// Active statuses are the non-terminal ones a dispute or refund request may
// interrupt.
func (s BookingStatus) Active() bool {
	return !s.Terminal()
}

// Booking is the central entity. It is created at checkout, one per cart
// item, transitions exclusively through the booking service's transition
// table, and is never deleted, only terminated into a terminal status.
// Price and deposit are snapshots taken from the item at checkout time.
type Booking struct {
	ID                 int32         `json:"id"`
	LesseeID           int32         `json:"lessee_id"`
	LessorID           int32         `json:"lessor_id"`
	ItemID             int32         `json:"item_id"`
	Quantity           int32         `json:"quantity"`
	PricePerDayCents   int32         `json:"price_per_day_cents"`
	DepositAmountCents int32         `json:"deposit_amount_cents"`
	StartDate          time.Time     `json:"start_date"`
	EndDate            time.Time     `json:"end_date"`
	Status             BookingStatus `json:"status"`
	StatusChangedOn    time.Time     `json:"status_changed_on"`
	CreatedOn          time.Time     `json:"created_on"`
	UpdatedOn          time.Time     `json:"updated_on"`
}

// RentalFeeCents is the rental portion of the checkout charge for this
// booking: price per day x quantity x rental days.
func (b *Booking) RentalFeeCents(days int32) int32 {
	return b.PricePerDayCents * b.Quantity * days
}

// TotalDepositCents is the deposit held in escrow for this booking.
func (b *Booking) TotalDepositCents() int32 {
	return b.DepositAmountCents * b.Quantity
}
