// Package service implements the booking lifecycle and escrow ledger engine:
// the state machine driving a rental from checkout through delivery, usage,
// return, refund, extension, dispute or forfeiture, and the ledger moving
// coins between lessee, lessor and the system escrow wallet on every
// transition.
package service

import (
	"context"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

// Actor is the acting identity resolved by the auth middleware (or fabricated
// by the scheduler for system-driven transitions). The core trusts it as
// given.
type Actor struct {
	AccountID int32
	Role      domain.AccountRole
}

func (a Actor) Admin() bool {
	return a.Role == domain.AccountRoleAdmin || a.Role == domain.AccountRoleSystem
}

// SettlementParams describes one fund movement. Every booking-related
// settlement has the escrow wallet on one side.
type SettlementParams struct {
	FromAccountID int32
	ToAccountID   int32
	AmountCents   int32
	Type          domain.TransactionType
	BookingIDs    []int32
}

// ReconciliationReport compares the escrow wallet balance against the float
// implied by non-terminal bookings.
type ReconciliationReport struct {
	EscrowBalanceCents int32 `json:"escrow_balance_cents"`
	HeldCents          int32 `json:"held_cents"`
	Balanced           bool  `json:"balanced"`
}

type LedgerService interface {
	// Settle runs on the caller's repositories so the balance movement and
	// the transaction record commit with the booking mutation they accompany.
	Settle(ctx context.Context, r *repository.Repositories, p SettlementParams) (*domain.LedgerTransaction, error)
	ListByAccount(ctx context.Context, actor Actor, accountID, page, pageSize int32) ([]domain.LedgerTransaction, int32, error)
	ListByBooking(ctx context.Context, actor Actor, bookingID int32) ([]domain.LedgerTransaction, error)
	GetSummary(ctx context.Context, actor Actor, accountID int32) (*domain.LedgerSummary, error)
	Reconcile(ctx context.Context) (*ReconciliationReport, error)
}

type CheckoutLine struct {
	ItemID    int32     `json:"item_id"`
	Quantity  int32     `json:"quantity"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type BookingService interface {
	Checkout(ctx context.Context, actor Actor, lines []CheckoutLine) ([]domain.Booking, error)
	OwnerAccept(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	OwnerReject(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	ConfirmReceipt(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	Return(ctx context.Context, actor Actor, bookingID int32, evidence []domain.Evidence) (*domain.Booking, error)
	ConfirmReturn(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	// SettleRefund finishes a booking parked in WAITING_REFUND; ConfirmReturn
	// invokes it inline, the exported form exists for recovery and admins.
	SettleRefund(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	// Forfeit terminates a non-returned booking: item marked missing, lessor
	// compensated with the full rental and deposit, lessee penalized and
	// banned. Called by the overdue sweep and by refund settlement past the
	// late-day boundary.
	Forfeit(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	// SweepAdvance applies a time-driven transition (due, late, overdue) as a
	// privileged actor. The conditional status update makes re-runs and
	// concurrent scheduler replicas no-ops.
	SweepAdvance(ctx context.Context, actor Actor, bookingID int32, to domain.BookingStatus) error
	GetByID(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error)
	ListByLessee(ctx context.Context, actor Actor, lesseeID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByLessor(ctx context.Context, actor Actor, lessorID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByStatus(ctx context.Context, actor Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
}

type ExtensionService interface {
	Request(ctx context.Context, actor Actor, bookingID, additionalDays int32) (*domain.ExtensionRequest, error)
	Approve(ctx context.Context, actor Actor, requestID int32) (*domain.ExtensionRequest, error)
	Reject(ctx context.Context, actor Actor, requestID int32) (*domain.ExtensionRequest, error)
	Cancel(ctx context.Context, actor Actor, requestID int32) (*domain.ExtensionRequest, error)
	ListByBooking(ctx context.Context, actor Actor, bookingID int32) ([]domain.ExtensionRequest, error)
}

type ReturnService interface {
	Submit(ctx context.Context, actor Actor, bookingID int32, reason domain.ReturnReason, detail string, evidence []domain.Evidence) (*domain.ReturnRequest, error)
	SubmitPackingEvidence(ctx context.Context, actor Actor, requestID int32, evidence []domain.Evidence) (*domain.ReturnRequest, error)
	LessorConfirmReceipt(ctx context.Context, actor Actor, requestID int32) (*domain.ReturnRequest, error)
	// AdminDecide approves or rejects a processing request. On approval the
	// refund defaults to the full checkout amount; a non-nil override wins.
	AdminDecide(ctx context.Context, actor Actor, requestID int32, decision domain.AdminDecision, overrideAmountCents *int32) (*domain.ReturnRequest, error)
	// AutoRefund is the sweep path for requests stuck in PROCESSING: the
	// approval flow as a system actor, outcome marked AUTO_REFUNDED.
	AutoRefund(ctx context.Context, requestID int32) (*domain.ReturnRequest, error)
	GetByID(ctx context.Context, actor Actor, requestID int32) (*domain.ReturnRequest, error)
}

type DisputeService interface {
	Create(ctx context.Context, actor Actor, bookingID, damageTypeID int32, detail string, evidence []domain.Evidence) (*domain.Dispute, error)
	Resolve(ctx context.Context, actor Actor, disputeID int32, decision domain.AdminDecision) (*domain.Dispute, error)
	GetByID(ctx context.Context, actor Actor, disputeID int32) (*domain.Dispute, error)
	ListPending(ctx context.Context, actor Actor, page, pageSize int32) ([]domain.Dispute, int32, error)
}

// Notifier is the fire-and-forget notification sink. Implementations must
// never let a delivery failure surface into the calling transition.
type Notifier interface {
	Notify(ctx context.Context, accountID int32, notifType, title, content, referenceType string, referenceID int32)
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, actor Actor, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, actor Actor, notificationID int32) error
}
