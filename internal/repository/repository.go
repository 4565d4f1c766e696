package repository

import (
	"context"
	"time"

	"peerrent-backend/internal/domain"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Account, error)
	// DebitBalance conditionally subtracts amount from the account balance.
	// Returns domain.ErrInsufficientBalance when the guard fails; the caller's
	// transaction then rolls back untouched.
	DebitBalance(ctx context.Context, id, amountCents int32) error
	CreditBalance(ctx context.Context, id, amountCents int32) error
	UpdateTrust(ctx context.Context, id, trustScore int32) error
	UpdateStatus(ctx context.Context, id int32, status domain.AccountStatus) error
}

type ItemRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	// DecrementQuantity is the atomic check-and-decrement used at checkout.
	// Returns the remaining quantity, or domain.ErrInvalidStateTransition when
	// fewer than qty units are available.
	DecrementQuantity(ctx context.Context, id, qty int32) (int32, error)
	IncrementQuantity(ctx context.Context, id, qty int32) error
	UpdateStatus(ctx context.Context, id int32, status domain.ItemStatus) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	// UpdateStatus conditions the write on the expected current status.
	// Returns domain.ErrInvalidStateTransition when zero rows match, which
	// also makes concurrent sweeps and commands serialize per booking.
	UpdateStatus(ctx context.Context, id int32, from, to domain.BookingStatus) error
	UpdateEndDate(ctx context.Context, id int32, endDate time.Time) error
	ListByLessee(ctx context.Context, lesseeID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByLessor(ctx context.Context, lessorID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error)
	// ListDue returns bookings in status whose end date is on or before the cutoff.
	ListDue(ctx context.Context, status domain.BookingStatus, endBefore time.Time) ([]domain.Booking, error)
	// ListStatusAgedBefore returns bookings sitting in status since before the cutoff.
	ListStatusAgedBefore(ctx context.Context, status domain.BookingStatus, changedBefore time.Time) ([]domain.Booking, error)
}

type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error
	CreateSettlementLinks(ctx context.Context, transactionID int32, bookingIDs []int32) error
	UpdateTransactionStatus(ctx context.Context, id int32, status domain.TransactionStatus) error
	ListByAccount(ctx context.Context, accountID int32, page, pageSize int32) ([]domain.LedgerTransaction, int32, error)
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.LedgerTransaction, error)
	GetSummary(ctx context.Context, accountID int32) (*domain.LedgerSummary, error)
	// EscrowHeldCents sums settlements held by escrow for bookings that have
	// not reached a terminal status; it must equal the escrow balance.
	EscrowHeldCents(ctx context.Context, escrowAccountID int32) (int32, error)
}

type ExtensionRepository interface {
	Create(ctx context.Context, req *domain.ExtensionRequest) error
	GetByID(ctx context.Context, id int32) (*domain.ExtensionRequest, error)
	// GetPendingByBooking returns domain.ErrNotFound when no pending request exists.
	GetPendingByBooking(ctx context.Context, bookingID int32) (*domain.ExtensionRequest, error)
	UpdateStatus(ctx context.Context, id int32, from, to domain.ExtensionStatus) error
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.ExtensionRequest, error)
	ListPendingAgedBefore(ctx context.Context, createdBefore time.Time) ([]domain.ExtensionRequest, error)
}

type ReturnRequestRepository interface {
	Create(ctx context.Context, req *domain.ReturnRequest) error
	GetByID(ctx context.Context, id int32) (*domain.ReturnRequest, error)
	// GetOpenByBooking returns the single non-terminal request, or domain.ErrNotFound.
	GetOpenByBooking(ctx context.Context, bookingID int32) (*domain.ReturnRequest, error)
	// GetByBookingAndStatus returns the newest request on the booking in the
	// given status, or domain.ErrNotFound.
	GetByBookingAndStatus(ctx context.Context, bookingID int32, status domain.ReturnRequestStatus) (*domain.ReturnRequest, error)
	Update(ctx context.Context, req *domain.ReturnRequest) error
	UpdateStatus(ctx context.Context, id int32, from, to domain.ReturnRequestStatus) error
	ListProcessingAgedBefore(ctx context.Context, createdBefore time.Time) ([]domain.ReturnRequest, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, d *domain.Dispute) error
	GetByID(ctx context.Context, id int32) (*domain.Dispute, error)
	Update(ctx context.Context, d *domain.Dispute) error
	ListPending(ctx context.Context, page, pageSize int32) ([]domain.Dispute, int32, error)
	GetDamageType(ctx context.Context, id int32) (*domain.DamageType, error)
}

type ItemLogRepository interface {
	Append(ctx context.Context, log *domain.ItemLog) error
	ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.ItemLog, int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, accountID int32) error
}

// Repositories bundles every repository bound to one querier (a shared
// connection pool, or a single transaction inside Store.RunInTx).
type Repositories struct {
	Accounts      AccountRepository
	Items         ItemRepository
	Bookings      BookingRepository
	Ledger        LedgerRepository
	Extensions    ExtensionRepository
	Returns       ReturnRequestRepository
	Disputes      DisputeRepository
	ItemLogs      ItemLogRepository
	Notifications NotificationRepository
}

// Store is the persistence entry point handed to services. Queries run on
// Repos(); every booking transition runs inside RunInTx so its ledger
// movement, status mutations and item-log append commit or roll back as one.
type Store interface {
	Repos() *Repositories
	RunInTx(ctx context.Context, fn func(r *Repositories) error) error
}
