package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"peerrent-backend/internal/config"
	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
	"peerrent-backend/internal/service"
)

type jobMocks struct {
	bookings   *MockBookingRepository
	returns    *MockReturnRequestRepository
	extensions *MockExtensionRepository
	booking    *MockBookingService
	ret        *MockReturnService
	ledger     *MockLedgerService
}

func newTestRunner() (*JobRunner, *jobMocks) {
	m := &jobMocks{
		bookings:   &MockBookingRepository{},
		returns:    &MockReturnRequestRepository{},
		extensions: &MockExtensionRepository{},
		booking:    &MockBookingService{},
		ret:        &MockReturnService{},
		ledger:     &MockLedgerService{},
	}
	store := &stubStore{repos: &repository.Repositories{
		Bookings:   m.bookings,
		Returns:    m.returns,
		Extensions: m.extensions,
	}}
	cfg := &config.Config{Policy: config.PolicyConfig{
		EscrowAccountID:      1,
		ForfeitAfterDays:     4,
		LatePenaltyTiersBps:  []int32{1000, 2500, 5000},
		ExtensionExpiryHours: 48,
		LateAfterHours:       24,
		OverdueAfterHours:    72,
		AutoRefundAfterHours: 72,
	}}
	return NewJobRunner(store, &Services{
		Booking: m.booking,
		Return:  m.ret,
		Ledger:  m.ledger,
	}, cfg), m
}

func TestMarkDueForReturnContinuesPastFailures(t *testing.T) {
	jr, m := newTestRunner()

	candidates := []domain.Booking{
		{ID: 1, Status: domain.BookingStatusInUse},
		{ID: 2, Status: domain.BookingStatusInUse},
	}
	m.bookings.On("ListDue", mock.Anything, domain.BookingStatusInUse, mock.AnythingOfType("time.Time")).
		Return(candidates, nil)
	// Booking 1 was advanced by a concurrent replica; the sweep moves on.
	m.booking.On("SweepAdvance", mock.Anything, mock.Anything, int32(1), domain.BookingStatusDueForReturn).
		Return(domain.ErrInvalidStateTransition)
	m.booking.On("SweepAdvance", mock.Anything, mock.Anything, int32(2), domain.BookingStatusDueForReturn).
		Return(nil)

	jr.MarkDueForReturn()

	m.booking.AssertNumberOfCalls(t, "SweepAdvance", 2)
}

func TestMarkDueForReturnUsesSystemActor(t *testing.T) {
	jr, m := newTestRunner()

	m.bookings.On("ListDue", mock.Anything, domain.BookingStatusInUse, mock.AnythingOfType("time.Time")).
		Return([]domain.Booking{{ID: 1}}, nil)
	m.booking.On("SweepAdvance", mock.Anything,
		service.Actor{AccountID: 1, Role: domain.AccountRoleSystem},
		int32(1), domain.BookingStatusDueForReturn).Return(nil)

	jr.MarkDueForReturn()

	m.booking.AssertExpectations(t)
}

func TestForfeitOverdueSkipsBookingsBeforeBoundary(t *testing.T) {
	jr, m := newTestRunner()
	now := time.Now()

	candidates := []domain.Booking{
		{ID: 1, Status: domain.BookingStatusOverdue, EndDate: now.Add(-2 * 24 * time.Hour)},
		{ID: 2, Status: domain.BookingStatusOverdue, EndDate: now.Add(-5 * 24 * time.Hour)},
	}
	m.bookings.On("ListStatusAgedBefore", mock.Anything, domain.BookingStatusOverdue, mock.AnythingOfType("time.Time")).
		Return(candidates, nil)
	m.booking.On("Forfeit", mock.Anything, mock.Anything, int32(2)).
		Return(&domain.Booking{ID: 2, Status: domain.BookingStatusForfeited}, nil)

	jr.ForfeitOverdueBookings()

	// Only the booking past the four-day boundary is forfeited.
	m.booking.AssertNumberOfCalls(t, "Forfeit", 1)
	m.booking.AssertNotCalled(t, "Forfeit", mock.Anything, mock.Anything, int32(1))
}

func TestAutoRefundStaleReturnRequests(t *testing.T) {
	jr, m := newTestRunner()

	requests := []domain.ReturnRequest{
		{ID: 401, Status: domain.ReturnRequestStatusProcessing},
		{ID: 402, Status: domain.ReturnRequestStatusProcessing},
	}
	m.returns.On("ListProcessingAgedBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(requests, nil)
	m.ret.On("AutoRefund", mock.Anything, int32(401)).
		Return(nil, errors.New("escrow debit failed"))
	m.ret.On("AutoRefund", mock.Anything, int32(402)).
		Return(&domain.ReturnRequest{ID: 402, Status: domain.ReturnRequestStatusAutoRefunded}, nil)

	jr.AutoRefundStaleReturnRequests()

	m.ret.AssertNumberOfCalls(t, "AutoRefund", 2)
}

func TestExpireStaleExtensionRequests(t *testing.T) {
	jr, m := newTestRunner()

	requests := []domain.ExtensionRequest{
		{ID: 301, Status: domain.ExtensionStatusPending},
		{ID: 302, Status: domain.ExtensionStatusPending},
	}
	m.extensions.On("ListPendingAgedBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(requests, nil)
	// 301 was approved between listing and expiry; the conditional flip
	// misses and the sweep continues.
	m.extensions.On("UpdateStatus", mock.Anything, int32(301),
		domain.ExtensionStatusPending, domain.ExtensionStatusExpired).
		Return(domain.ErrInvalidStateTransition)
	m.extensions.On("UpdateStatus", mock.Anything, int32(302),
		domain.ExtensionStatusPending, domain.ExtensionStatusExpired).
		Return(nil)

	jr.ExpireStaleExtensionRequests()

	m.extensions.AssertNumberOfCalls(t, "UpdateStatus", 2)
}

func TestReconcileEscrow(t *testing.T) {
	jr, m := newTestRunner()

	m.ledger.On("Reconcile", mock.Anything).
		Return(&service.ReconciliationReport{EscrowBalanceCents: 100, HeldCents: 100, Balanced: true}, nil)

	jr.ReconcileEscrow()

	m.ledger.AssertExpectations(t)
}

func TestRunWithRecoverySwallowsPanic(t *testing.T) {
	jr, _ := newTestRunner()

	assert.NotPanics(t, func() {
		jr.runWithRecovery("panicky", func() {
			panic("boom")
		})
	})
}

func TestListFailureAbortsSweep(t *testing.T) {
	jr, m := newTestRunner()

	m.bookings.On("ListDue", mock.Anything, domain.BookingStatusInUse, mock.AnythingOfType("time.Time")).
		Return([]domain.Booking(nil), errors.New("connection refused"))

	jr.MarkDueForReturn()

	m.booking.AssertNotCalled(t, "SweepAdvance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
