package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/metrics"
	"peerrent-backend/internal/repository"
)

type ledgerService struct {
	store           repository.Store
	escrowAccountID int32
}

func NewLedgerService(store repository.Store, escrowAccountID int32) LedgerService {
	return &ledgerService{store: store, escrowAccountID: escrowAccountID}
}

// Settle atomically debits from, credits to, and records the transaction
// with its settlement links. It runs on the repositories the caller passes
// in, so inside RunInTx the movement commits or rolls back together with the
// booking mutation that triggered it. The conditional debit makes an
// insufficient balance (or an escrow payout that would go negative) fail
// before anything is written.
func (s *ledgerService) Settle(ctx context.Context, r *repository.Repositories, p SettlementParams) (*domain.LedgerTransaction, error) {
	if p.AmountCents <= 0 {
		metrics.SettlementFailures.Inc()
		return nil, fmt.Errorf("settlement amount must be positive, got %d: %w", p.AmountCents, domain.ErrInvalidStateTransition)
	}
	if len(p.BookingIDs) == 0 {
		return nil, fmt.Errorf("settlement without booking links: %w", domain.ErrInvalidStateTransition)
	}

	if err := r.Accounts.DebitBalance(ctx, p.FromAccountID, p.AmountCents); err != nil {
		metrics.SettlementFailures.Inc()
		return nil, fmt.Errorf("debit account %d: %w", p.FromAccountID, err)
	}
	if err := r.Accounts.CreditBalance(ctx, p.ToAccountID, p.AmountCents); err != nil {
		return nil, fmt.Errorf("credit account %d: %w", p.ToAccountID, err)
	}

	tx := &domain.LedgerTransaction{
		Reference:     uuid.NewString(),
		FromAccountID: p.FromAccountID,
		ToAccountID:   p.ToAccountID,
		AmountCents:   p.AmountCents,
		Type:          p.Type,
		Status:        domain.TransactionStatusSuccess,
	}
	if err := r.Ledger.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("record settlement: %w", err)
	}
	if err := r.Ledger.CreateSettlementLinks(ctx, tx.ID, p.BookingIDs); err != nil {
		return nil, fmt.Errorf("link settlement %d: %w", tx.ID, err)
	}

	metrics.SettlementsTotal.WithLabelValues(string(p.Type)).Inc()
	return tx, nil
}

func (s *ledgerService) ListByAccount(ctx context.Context, actor Actor, accountID, page, pageSize int32) ([]domain.LedgerTransaction, int32, error) {
	if actor.AccountID != accountID && !actor.Admin() {
		return nil, 0, domain.ErrUnauthorized
	}
	return s.store.Repos().Ledger.ListByAccount(ctx, accountID, page, pageSize)
}

func (s *ledgerService) ListByBooking(ctx context.Context, actor Actor, bookingID int32) ([]domain.LedgerTransaction, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID && actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.Repos().Ledger.ListByBooking(ctx, bookingID)
}

func (s *ledgerService) GetSummary(ctx context.Context, actor Actor, accountID int32) (*domain.LedgerSummary, error) {
	if actor.AccountID != accountID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.Repos().Ledger.GetSummary(ctx, accountID)
}

// Reconcile checks the closed-loop invariant: the escrow wallet balance must
// equal the sum of settlements held on behalf of bookings that have not yet
// reached a terminal status.
func (s *ledgerService) Reconcile(ctx context.Context) (*ReconciliationReport, error) {
	logger.EnterMethod("LedgerService.Reconcile")

	escrow, err := s.store.Repos().Accounts.GetByID(ctx, s.escrowAccountID)
	if err != nil {
		logger.ExitMethodWithError("LedgerService.Reconcile", err)
		return nil, fmt.Errorf("load escrow account: %w", err)
	}
	held, err := s.store.Repos().Ledger.EscrowHeldCents(ctx, s.escrowAccountID)
	if err != nil {
		logger.ExitMethodWithError("LedgerService.Reconcile", err)
		return nil, fmt.Errorf("compute held float: %w", err)
	}

	report := &ReconciliationReport{
		EscrowBalanceCents: escrow.CoinBalanceCents,
		HeldCents:          held,
		Balanced:           escrow.CoinBalanceCents == held,
	}
	if !report.Balanced {
		logger.Error("escrow out of balance",
			"balance_cents", report.EscrowBalanceCents, "held_cents", report.HeldCents)
	}
	logger.ExitMethod("LedgerService.Reconcile", "balanced", report.Balanced)
	return report, nil
}
