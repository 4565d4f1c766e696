package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
	"peerrent-backend/internal/service"
)

// stubStore serves the mocked repositories the sweeps list candidates from.
// Sweeps never open transactions themselves, so RunInTx just runs the body.
type stubStore struct {
	repos *repository.Repositories
}

func (s *stubStore) Repos() *repository.Repositories { return s.repos }

func (s *stubStore) RunInTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	return fn(s.repos)
}

// MockBookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Checkout(ctx context.Context, actor service.Actor, lines []service.CheckoutLine) ([]domain.Booking, error) {
	args := m.Called(ctx, actor, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingService) OwnerAccept(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) OwnerReject(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) ConfirmReceipt(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) Return(ctx context.Context, actor service.Actor, bookingID int32, evidence []domain.Evidence) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID, evidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) ConfirmReturn(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) SettleRefund(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) Forfeit(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) SweepAdvance(ctx context.Context, actor service.Actor, bookingID int32, to domain.BookingStatus) error {
	return m.Called(ctx, actor, bookingID, to).Error(0)
}
func (m *MockBookingService) GetByID(ctx context.Context, actor service.Actor, bookingID int32) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) ListByLessee(ctx context.Context, actor service.Actor, lesseeID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, actor, lesseeID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingService) ListByLessor(ctx context.Context, actor service.Actor, lessorID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, actor, lessorID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingService) ListByStatus(ctx context.Context, actor service.Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, actor, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}

// MockReturnService
type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) Submit(ctx context.Context, actor service.Actor, bookingID int32, reason domain.ReturnReason, detail string, evidence []domain.Evidence) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, actor, bookingID, reason, detail, evidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnService) SubmitPackingEvidence(ctx context.Context, actor service.Actor, requestID int32, evidence []domain.Evidence) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, actor, requestID, evidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnService) LessorConfirmReceipt(ctx context.Context, actor service.Actor, requestID int32) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnService) AdminDecide(ctx context.Context, actor service.Actor, requestID int32, decision domain.AdminDecision, overrideAmountCents *int32) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, actor, requestID, decision, overrideAmountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnService) AutoRefund(ctx context.Context, requestID int32) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnService) GetByID(ctx context.Context, actor service.Actor, requestID int32) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}

// MockLedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Settle(ctx context.Context, r *repository.Repositories, p service.SettlementParams) (*domain.LedgerTransaction, error) {
	args := m.Called(ctx, r, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerTransaction), args.Error(1)
}
func (m *MockLedgerService) ListByAccount(ctx context.Context, actor service.Actor, accountID, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	args := m.Called(ctx, actor, accountID, page, pageSize)
	return args.Get(0).([]domain.LedgerTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedgerService) ListByBooking(ctx context.Context, actor service.Actor, bookingID int32) ([]domain.LedgerTransaction, error) {
	args := m.Called(ctx, actor, bookingID)
	return args.Get(0).([]domain.LedgerTransaction), args.Error(1)
}
func (m *MockLedgerService) GetSummary(ctx context.Context, actor service.Actor, accountID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, actor, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}
func (m *MockLedgerService) Reconcile(ctx context.Context) (*service.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconciliationReport), args.Error(1)
}

// MockBookingRepository covers the listing queries sweeps select candidates
// with.
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *MockBookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.BookingStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}
func (m *MockBookingRepository) UpdateEndDate(ctx context.Context, id int32, endDate time.Time) error {
	return m.Called(ctx, id, endDate).Error(0)
}
func (m *MockBookingRepository) ListByLessee(ctx context.Context, lesseeID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, lesseeID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepository) ListByLessor(ctx context.Context, lessorID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, lessorID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepository) ListDue(ctx context.Context, status domain.BookingStatus, endBefore time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, status, endBefore)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepository) ListStatusAgedBefore(ctx context.Context, status domain.BookingStatus, changedBefore time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, status, changedBefore)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockReturnRequestRepository
type MockReturnRequestRepository struct {
	mock.Mock
}

func (m *MockReturnRequestRepository) Create(ctx context.Context, req *domain.ReturnRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockReturnRequestRepository) GetByID(ctx context.Context, id int32) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnRequestRepository) GetOpenByBooking(ctx context.Context, bookingID int32) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnRequestRepository) GetByBookingAndStatus(ctx context.Context, bookingID int32, status domain.ReturnRequestStatus) (*domain.ReturnRequest, error) {
	args := m.Called(ctx, bookingID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRequest), args.Error(1)
}
func (m *MockReturnRequestRepository) Update(ctx context.Context, req *domain.ReturnRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockReturnRequestRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ReturnRequestStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}
func (m *MockReturnRequestRepository) ListProcessingAgedBefore(ctx context.Context, createdBefore time.Time) ([]domain.ReturnRequest, error) {
	args := m.Called(ctx, createdBefore)
	return args.Get(0).([]domain.ReturnRequest), args.Error(1)
}

// MockExtensionRepository
type MockExtensionRepository struct {
	mock.Mock
}

func (m *MockExtensionRepository) Create(ctx context.Context, req *domain.ExtensionRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *MockExtensionRepository) GetByID(ctx context.Context, id int32) (*domain.ExtensionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtensionRequest), args.Error(1)
}
func (m *MockExtensionRepository) GetPendingByBooking(ctx context.Context, bookingID int32) (*domain.ExtensionRequest, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtensionRequest), args.Error(1)
}
func (m *MockExtensionRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ExtensionStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}
func (m *MockExtensionRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.ExtensionRequest, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.ExtensionRequest), args.Error(1)
}
func (m *MockExtensionRepository) ListPendingAgedBefore(ctx context.Context, createdBefore time.Time) ([]domain.ExtensionRequest, error) {
	args := m.Called(ctx, createdBefore)
	return args.Get(0).([]domain.ExtensionRequest), args.Error(1)
}
