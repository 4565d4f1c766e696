package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

// mockStore hands the same mocked repositories to pooled and transactional
// callers, so RunInTx bodies run against the expectations directly.
type mockStore struct {
	repos *repository.Repositories
}

func (s *mockStore) Repos() *repository.Repositories { return s.repos }

func (s *mockStore) RunInTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	return fn(s.repos)
}

type repoMocks struct {
	accounts      *MockAccountRepository
	items         *MockItemRepository
	bookings      *MockBookingRepository
	ledger        *MockLedgerRepository
	extensions    *MockExtensionRepository
	returns       *MockReturnRequestRepository
	disputes      *MockDisputeRepository
	itemLogs      *MockItemLogRepository
	notifications *MockNotificationRepository
}

func newMockStore() (*mockStore, *repoMocks) {
	m := &repoMocks{
		accounts:      &MockAccountRepository{},
		items:         &MockItemRepository{},
		bookings:      &MockBookingRepository{},
		ledger:        &MockLedgerRepository{},
		extensions:    &MockExtensionRepository{},
		returns:       &MockReturnRequestRepository{},
		disputes:      &MockDisputeRepository{},
		itemLogs:      &MockItemLogRepository{},
		notifications: &MockNotificationRepository{},
	}
	store := &mockStore{repos: &repository.Repositories{
		Accounts:      m.accounts,
		Items:         m.items,
		Bookings:      m.bookings,
		Ledger:        m.ledger,
		Extensions:    m.extensions,
		Returns:       m.returns,
		Disputes:      m.disputes,
		ItemLogs:      m.itemLogs,
		Notifications: m.notifications,
	}}
	return store, m
}

// nopNotifier drops notifications; transition tests don't care about them.
type nopNotifier struct{}

func (nopNotifier) Notify(ctx context.Context, accountID int32, notifType, title, content, referenceType string, referenceID int32) {
}

// MockAccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountRepository) DebitBalance(ctx context.Context, id, amountCents int32) error {
	return m.Called(ctx, id, amountCents).Error(0)
}
func (m *MockAccountRepository) CreditBalance(ctx context.Context, id, amountCents int32) error {
	return m.Called(ctx, id, amountCents).Error(0)
}
func (m *MockAccountRepository) UpdateTrust(ctx context.Context, id, trustScore int32) error {
	return m.Called(ctx, id, trustScore).Error(0)
}
func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id int32, status domain.AccountStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

// MockItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepository) DecrementQuantity(ctx context.Context, id, qty int32) (int32, error) {
	args := m.Called(ctx, id, qty)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockItemRepository) IncrementQuantity(ctx context.Context, id, qty int32) error {
	return m.Called(ctx, id, qty).Error(0)
}
func (m *MockItemRepository) UpdateStatus(ctx context.Context, id int32, status domain.ItemStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

// MockBookingRepository
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

// MockLedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateTransaction(ctx context.Context, tx *domain.LedgerTransaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *MockLedgerRepository) CreateSettlementLinks(ctx context.Context, transactionID int32, bookingIDs []int32) error {
	return m.Called(ctx, transactionID, bookingIDs).Error(0)
}
func (m *MockLedgerRepository) UpdateTransactionStatus(ctx context.Context, id int32, status domain.TransactionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountID int32, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	args := m.Called(ctx, accountID, page, pageSize)
	return args.Get(0).([]domain.LedgerTransaction), args.Get(1).(int32), args.Error(2)
}
func (m *MockLedgerRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.LedgerTransaction, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.LedgerTransaction), args.Error(1)
}
func (m *MockLedgerRepository) GetSummary(ctx context.Context, accountID int32) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}
func (m *MockLedgerRepository) EscrowHeldCents(ctx context.Context, escrowAccountID int32) (int32, error) {
	args := m.Called(ctx, escrowAccountID)
	return args.Get(0).(int32), args.Error(1)
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

// MockDisputeRepository
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	return m.Called(ctx, d).Error(0)
}
func (m *MockDisputeRepository) GetByID(ctx context.Context, id int32) (*domain.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dispute), args.Error(1)
}
func (m *MockDisputeRepository) Update(ctx context.Context, d *domain.Dispute) error {
	return m.Called(ctx, d).Error(0)
}
func (m *MockDisputeRepository) ListPending(ctx context.Context, page, pageSize int32) ([]domain.Dispute, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Dispute), args.Get(1).(int32), args.Error(2)
}
func (m *MockDisputeRepository) GetDamageType(ctx context.Context, id int32) (*domain.DamageType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DamageType), args.Error(1)
}

// MockItemLogRepository
type MockItemLogRepository struct {
	mock.Mock
}

func (m *MockItemLogRepository) Append(ctx context.Context, log *domain.ItemLog) error {
	return m.Called(ctx, log).Error(0)
}
func (m *MockItemLogRepository) ListByItem(ctx context.Context, itemID int32, page, pageSize int32) ([]domain.ItemLog, int32, error) {
	args := m.Called(ctx, itemID, page, pageSize)
	return args.Get(0).([]domain.ItemLog), args.Get(1).(int32), args.Error(2)
}

// MockNotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	return m.Called(ctx, note).Error(0)
}
func (m *MockNotificationRepository) List(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, accountID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, accountID int32) error {
	return m.Called(ctx, id, accountID).Error(0)
}
