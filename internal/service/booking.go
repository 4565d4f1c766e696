package service

import (
	"context"
	"fmt"
	"time"

	"peerrent-backend/internal/config"
	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/metrics"
	"peerrent-backend/internal/pricing"
	"peerrent-backend/internal/repository"
)

// command identifies a booking transition. The transition table below is the
// single authority on which (status, command) pairs are legal; handlers and
// sweeps never branch on status themselves.
type command string

const (
	cmdOwnerAccept     command = "OWNER_ACCEPT"
	cmdOwnerReject     command = "OWNER_REJECT"
	cmdConfirmReceipt  command = "CONFIRM_RECEIPT"
	cmdReturn          command = "RETURN"
	cmdConfirmReturn   command = "CONFIRM_RETURN"
	cmdSettleRefund    command = "SETTLE_REFUND"
	cmdForfeit         command = "FORFEIT"
	cmdMarkDue         command = "MARK_DUE"
	cmdMarkLate        command = "MARK_LATE"
	cmdMarkOverdue     command = "MARK_OVERDUE"
	cmdRequestRefund   command = "REQUEST_RETURN_REFUND"
	cmdStartRefund     command = "START_REFUND_PROCESSING"
	cmdCompleteRefund  command = "COMPLETE_REFUND"
	cmdRejectRefund    command = "REJECT_REFUND"
	cmdOpenDispute     command = "OPEN_DISPUTE"
	cmdDisputeApproved command = "DISPUTE_APPROVED"
	cmdDisputeRejected command = "DISPUTE_REJECTED"
)

var transitions = map[domain.BookingStatus]map[command]domain.BookingStatus{
	domain.BookingStatusPendingConfirm: {
		cmdOwnerAccept: domain.BookingStatusWaitingDelivery,
		cmdOwnerReject: domain.BookingStatusPaidRejected,
	},
	domain.BookingStatusWaitingDelivery: {
		cmdConfirmReceipt: domain.BookingStatusInUse,
		cmdRequestRefund:  domain.BookingStatusReturnRefundRequested,
		cmdOpenDispute:    domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusInUse: {
		cmdMarkDue:       domain.BookingStatusDueForReturn,
		cmdReturn:        domain.BookingStatusReturnedPendingCheck,
		cmdRequestRefund: domain.BookingStatusReturnRefundRequested,
		cmdOpenDispute:   domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusDueForReturn: {
		cmdReturn:        domain.BookingStatusReturnedPendingCheck,
		cmdMarkLate:      domain.BookingStatusLateReturn,
		cmdRequestRefund: domain.BookingStatusReturnRefundRequested,
		cmdOpenDispute:   domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusLateReturn: {
		cmdReturn:        domain.BookingStatusReturnedPendingCheck,
		cmdMarkOverdue:   domain.BookingStatusOverdue,
		cmdRequestRefund: domain.BookingStatusReturnRefundRequested,
		cmdOpenDispute:   domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusOverdue: {
		cmdReturn:        domain.BookingStatusReturnedPendingCheck,
		cmdForfeit:       domain.BookingStatusForfeited,
		cmdRequestRefund: domain.BookingStatusReturnRefundRequested,
		cmdOpenDispute:   domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusReturnedPendingCheck: {
		cmdConfirmReturn: domain.BookingStatusWaitingRefund,
		cmdOpenDispute:   domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusWaitingRefund: {
		cmdSettleRefund: domain.BookingStatusCompleted,
		cmdForfeit:      domain.BookingStatusForfeited,
	},
	domain.BookingStatusReturnRefundRequested: {
		cmdStartRefund:  domain.BookingStatusReturnRefundProcessing,
		cmdRejectRefund: domain.BookingStatusInUse,
		cmdOpenDispute:  domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusReturnRefundProcessing: {
		cmdCompleteRefund: domain.BookingStatusCompleted,
		cmdRejectRefund:   domain.BookingStatusInUse,
		cmdOpenDispute:    domain.BookingStatusDisputePendingReview,
	},
	domain.BookingStatusDisputePendingReview: {
		cmdDisputeApproved: domain.BookingStatusCompensationCompleted,
		cmdDisputeRejected: domain.BookingStatusReturnRefundProcessing,
	},
}

// nextStatus consults the transition table; pairs not in the table are
// rejected before any side effect runs.
func nextStatus(from domain.BookingStatus, cmd command) (domain.BookingStatus, error) {
	to, ok := transitions[from][cmd]
	if !ok {
		return "", fmt.Errorf("%s not allowed from %s: %w", cmd, from, domain.ErrInvalidStateTransition)
	}
	return to, nil
}

type bookingService struct {
	store    repository.Store
	ledger   LedgerService
	notifier Notifier
	policy   config.PolicyConfig
	now      func() time.Time
}

func NewBookingService(store repository.Store, ledger LedgerService, notifier Notifier, policy config.PolicyConfig) BookingService {
	return &bookingService{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

// Checkout creates one booking per cart line and charges the lessee the
// whole rental fee plus deposit in a single escrow settlement. Everything
// runs in one transaction: an insufficient balance or an exhausted item
// leaves no booking, no ledger entry and no quantity change behind.
func (s *bookingService) Checkout(ctx context.Context, actor Actor, lines []CheckoutLine) ([]domain.Booking, error) {
	logger.EnterMethod("BookingService.Checkout", "lessee_id", actor.AccountID, "lines", len(lines))
	if len(lines) == 0 {
		return nil, fmt.Errorf("checkout requires at least one item: %w", domain.ErrInvalidStateTransition)
	}

	var bookings []domain.Booking
	err := s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		bookings = bookings[:0]
		var totalCents int32
		var bookingIDs []int32

		for _, line := range lines {
			days, err := pricing.RentalDays(line.StartDate, line.EndDate)
			if err != nil {
				return err
			}
			if line.Quantity <= 0 {
				return fmt.Errorf("quantity must be positive: %w", domain.ErrInvalidStateTransition)
			}

			item, err := r.Items.GetByID(ctx, line.ItemID)
			if err != nil {
				return fmt.Errorf("load item %d: %w", line.ItemID, err)
			}
			if !item.Rentable() {
				return fmt.Errorf("item %d not rentable in status %s: %w", item.ID, item.Status, domain.ErrInvalidStateTransition)
			}

			booking := domain.Booking{
				LesseeID:           actor.AccountID,
				LessorID:           item.OwnerID,
				ItemID:             item.ID,
				Quantity:           line.Quantity,
				PricePerDayCents:   item.PricePerDayCents,
				DepositAmountCents: item.DepositAmountCents,
				StartDate:          line.StartDate,
				EndDate:            line.EndDate,
				Status:             domain.BookingStatusPendingConfirm,
			}
			if err := r.Bookings.Create(ctx, &booking); err != nil {
				return fmt.Errorf("create booking: %w", err)
			}

			remaining, err := r.Items.DecrementQuantity(ctx, item.ID, line.Quantity)
			if err != nil {
				return fmt.Errorf("reserve %d units of item %d: %w", line.Quantity, item.ID, err)
			}
			itemStatus := item.Status
			if remaining == 0 {
				itemStatus = domain.ItemStatusRentedPendingConfirm
				if err := r.Items.UpdateStatus(ctx, item.ID, itemStatus); err != nil {
					return err
				}
			}

			if err := r.ItemLogs.Append(ctx, &domain.ItemLog{
				ItemID:         item.ID,
				AccountID:      actor.AccountID,
				Action:         domain.ItemLogActionRent,
				PreviousStatus: item.Status,
				CurrentStatus:  itemStatus,
				Note:           fmt.Sprintf("booking %d created", booking.ID),
			}); err != nil {
				return err
			}

			totalCents += pricing.CheckoutAmountCents(item.PricePerDayCents, item.DepositAmountCents, line.Quantity, days)
			bookingIDs = append(bookingIDs, booking.ID)
			bookings = append(bookings, booking)
		}

		_, err := s.ledger.Settle(ctx, r, SettlementParams{
			FromAccountID: actor.AccountID,
			ToAccountID:   s.policy.EscrowAccountID,
			AmountCents:   totalCents,
			Type:          domain.TransactionTypeRentalPayment,
			BookingIDs:    bookingIDs,
		})
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("BookingService.Checkout", err)
		return nil, err
	}

	for _, b := range bookings {
		metrics.BookingTransitions.WithLabelValues(string(domain.BookingStatusPendingConfirm)).Inc()
		s.notifier.Notify(ctx, b.LessorID, "BOOKING_REQUESTED", "New rental request",
			fmt.Sprintf("Your item has a new rental request for %d unit(s).", b.Quantity), "booking", b.ID)
	}
	logger.ExitMethod("BookingService.Checkout", "bookings", len(bookings))
	return bookings, nil
}

func (s *bookingService) OwnerAccept(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdOwnerAccept)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		if err := r.Items.UpdateStatus(ctx, item.ID, domain.ItemStatusRented); err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionApproveRental,
			PreviousStatus: item.Status,
			CurrentStatus:  domain.ItemStatusRented,
			Note:           fmt.Sprintf("booking %d accepted", booking.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = to
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "BOOKING_ACCEPTED", "Rental accepted",
		"The owner accepted your rental request. Delivery is on the way.", "booking", booking.ID)
	return booking, nil
}

// OwnerReject refunds the full checkout charge back to the lessee, bans the
// item pending review and docks the lessor's trust score.
func (s *bookingService) OwnerReject(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdOwnerReject)
	if err != nil {
		return nil, err
	}
	days, err := pricing.RentalDays(booking.StartDate, booking.EndDate)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		refund := booking.RentalFeeCents(days) + booking.TotalDepositCents()
		if _, err := s.ledger.Settle(ctx, r, SettlementParams{
			FromAccountID: s.policy.EscrowAccountID,
			ToAccountID:   booking.LesseeID,
			AmountCents:   refund,
			Type:          domain.TransactionTypeRefundFull,
			BookingIDs:    []int32{booking.ID},
		}); err != nil {
			return err
		}

		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		if err := r.Items.UpdateStatus(ctx, item.ID, domain.ItemStatusBanned); err != nil {
			return err
		}

		lessor, err := r.Accounts.GetByID(ctx, booking.LessorID)
		if err != nil {
			return err
		}
		lessor.DockTrust(s.policy.RejectTrustPenalty)
		if err := r.Accounts.UpdateTrust(ctx, lessor.ID, lessor.TrustScore); err != nil {
			return err
		}

		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionRejectRental,
			PreviousStatus: item.Status,
			CurrentStatus:  domain.ItemStatusBanned,
			Note:           fmt.Sprintf("booking %d rejected, %d cents refunded", booking.ID, refund),
		})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = to
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "BOOKING_REJECTED", "Rental rejected",
		"The owner rejected your rental request. Your payment was refunded in full.", "booking", booking.ID)
	return booking, nil
}

func (s *bookingService) ConfirmReceipt(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdConfirmReceipt)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		// Item stays rented; prev == curr recorded on purpose.
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionRent,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("booking %d receipt confirmed", booking.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = to
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	return booking, nil
}

func (s *bookingService) Return(ctx context.Context, actor Actor, bookingID int32, evidence []domain.Evidence) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdReturn)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		if err := r.Items.UpdateStatus(ctx, item.ID, domain.ItemStatusReturnPendingCheck); err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionReturn,
			PreviousStatus: item.Status,
			CurrentStatus:  domain.ItemStatusReturnPendingCheck,
			Note:           fmt.Sprintf("booking %d returned by lessee", booking.ID),
			Evidence:       evidence,
		})
	})
	if err != nil {
		return nil, err
	}

	booking.Status = to
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LessorID, "BOOKING_RETURNED", "Item returned",
		"The lessee returned your item. Please check it and confirm.", "booking", booking.ID)
	return booking, nil
}

// ConfirmReturn moves the booking to WAITING_REFUND and settles the refund
// in the same transaction, so the lessor's confirmation and the resulting
// payout/penalty (or forfeiture past the boundary) are one atomic step.
func (s *bookingService) ConfirmReturn(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdConfirmReturn)
	if err != nil {
		return nil, err
	}

	var final domain.BookingStatus
	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		if err := r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionCheckReturn,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("booking %d return confirmed by lessor", booking.ID),
		}); err != nil {
			return err
		}

		booking.Status = to
		final, err = s.settleRefundTx(ctx, r, actor, booking)
		return err
	})
	if err != nil {
		return nil, err
	}

	booking.Status = final
	metrics.BookingTransitions.WithLabelValues(string(final)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "BOOKING_SETTLED", "Rental settled",
		"Your rental was settled. Check your balance for the deposit refund.", "booking", booking.ID)
	return booking, nil
}

func (s *bookingService) SettleRefund(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	if _, err := nextStatus(booking.Status, cmdSettleRefund); err != nil {
		return nil, err
	}

	var final domain.BookingStatus
	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		var err error
		final, err = s.settleRefundTx(ctx, r, actor, booking)
		return err
	})
	if err != nil {
		return nil, err
	}
	booking.Status = final
	metrics.BookingTransitions.WithLabelValues(string(final)).Inc()
	return booking, nil
}

// settleRefundTx settles a booking sitting in WAITING_REFUND. On-time and
// late-within-tiers returns pay the lessor the rental fee plus any late
// penalty and refund the lessee the remaining deposit; daysLate at or past
// the forfeiture boundary routes to forfeiture and no refund proceeds.
func (s *bookingService) settleRefundTx(ctx context.Context, r *repository.Repositories, actor Actor, booking *domain.Booking) (domain.BookingStatus, error) {
	daysLate := pricing.DaysLate(booking.EndDate, s.now())
	if daysLate >= s.policy.ForfeitAfterDays {
		return s.forfeitTx(ctx, r, actor, booking)
	}

	to, err := nextStatus(booking.Status, cmdSettleRefund)
	if err != nil {
		return "", err
	}
	days, err := pricing.RentalDays(booking.StartDate, booking.EndDate)
	if err != nil {
		return "", err
	}
	if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
		return "", err
	}

	penalty := pricing.LatePenaltyCents(booking.TotalDepositCents(), daysLate, s.policy.LatePenaltyTiersBps)
	payout := booking.RentalFeeCents(days) + penalty
	if _, err := s.ledger.Settle(ctx, r, SettlementParams{
		FromAccountID: s.policy.EscrowAccountID,
		ToAccountID:   booking.LessorID,
		AmountCents:   payout,
		Type:          domain.TransactionTypeRentalPayout,
		BookingIDs:    []int32{booking.ID},
	}); err != nil {
		return "", err
	}
	if refund := booking.TotalDepositCents() - penalty; refund > 0 {
		if _, err := s.ledger.Settle(ctx, r, SettlementParams{
			FromAccountID: s.policy.EscrowAccountID,
			ToAccountID:   booking.LesseeID,
			AmountCents:   refund,
			Type:          domain.TransactionTypeRefundDeposit,
			BookingIDs:    []int32{booking.ID},
		}); err != nil {
			return "", err
		}
	}

	item, err := r.Items.GetByID(ctx, booking.ItemID)
	if err != nil {
		return "", err
	}
	if err := r.Items.IncrementQuantity(ctx, item.ID, booking.Quantity); err != nil {
		return "", err
	}
	if err := r.Items.UpdateStatus(ctx, item.ID, domain.ItemStatusAvailable); err != nil {
		return "", err
	}
	if err := r.ItemLogs.Append(ctx, &domain.ItemLog{
		ItemID:         item.ID,
		AccountID:      actor.AccountID,
		Action:         domain.ItemLogActionRefund,
		PreviousStatus: item.Status,
		CurrentStatus:  domain.ItemStatusAvailable,
		Note:           fmt.Sprintf("booking %d settled, %d days late, penalty %d cents", booking.ID, daysLate, penalty),
	}); err != nil {
		return "", err
	}
	return to, nil
}

func (s *bookingService) Forfeit(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	if !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := nextStatus(booking.Status, cmdForfeit); err != nil {
		return nil, err
	}

	var final domain.BookingStatus
	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		var err error
		final, err = s.forfeitTx(ctx, r, actor, booking)
		return err
	})
	if err != nil {
		return nil, err
	}

	booking.Status = final
	metrics.BookingTransitions.WithLabelValues(string(final)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "BOOKING_FORFEITED", "Booking forfeited",
		"Your booking was forfeited for non-return. Your account has been suspended.", "booking", booking.ID)
	s.notifier.Notify(ctx, booking.LessorID, "BOOKING_FORFEITED", "Item not returned",
		"The lessee failed to return your item. You were compensated the full rental and deposit.", "booking", booking.ID)
	return booking, nil
}

// forfeitTx terminates a non-returned booking: item marked missing, the
// escrow-held rental fee and deposit paid out to the lessor, the lessee's
// trust docked and the account banned.
func (s *bookingService) forfeitTx(ctx context.Context, r *repository.Repositories, actor Actor, booking *domain.Booking) (domain.BookingStatus, error) {
	if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, domain.BookingStatusForfeited); err != nil {
		return "", err
	}
	days, err := pricing.RentalDays(booking.StartDate, booking.EndDate)
	if err != nil {
		return "", err
	}
	if _, err := s.ledger.Settle(ctx, r, SettlementParams{
		FromAccountID: s.policy.EscrowAccountID,
		ToAccountID:   booking.LessorID,
		AmountCents:   booking.RentalFeeCents(days) + booking.TotalDepositCents(),
		Type:          domain.TransactionTypeCompensationPayout,
		BookingIDs:    []int32{booking.ID},
	}); err != nil {
		return "", err
	}

	item, err := r.Items.GetByID(ctx, booking.ItemID)
	if err != nil {
		return "", err
	}
	if err := r.Items.UpdateStatus(ctx, item.ID, domain.ItemStatusMissing); err != nil {
		return "", err
	}

	lessee, err := r.Accounts.GetByID(ctx, booking.LesseeID)
	if err != nil {
		return "", err
	}
	lessee.DockTrust(s.policy.ForfeitTrustPenalty)
	if err := r.Accounts.UpdateTrust(ctx, lessee.ID, lessee.TrustScore); err != nil {
		return "", err
	}
	if err := r.Accounts.UpdateStatus(ctx, lessee.ID, domain.AccountStatusBanned); err != nil {
		return "", err
	}

	if err := r.ItemLogs.Append(ctx, &domain.ItemLog{
		ItemID:         item.ID,
		AccountID:      actor.AccountID,
		Action:         domain.ItemLogActionUnreturned,
		PreviousStatus: item.Status,
		CurrentStatus:  domain.ItemStatusMissing,
		Note:           fmt.Sprintf("booking %d forfeited, lessor compensated", booking.ID),
	}); err != nil {
		return "", err
	}
	return domain.BookingStatusForfeited, nil
}

func (s *bookingService) SweepAdvance(ctx context.Context, actor Actor, bookingID int32, to domain.BookingStatus) error {
	if !actor.Admin() {
		return domain.ErrUnauthorized
	}
	cmd, ok := map[domain.BookingStatus]command{
		domain.BookingStatusDueForReturn: cmdMarkDue,
		domain.BookingStatusLateReturn:   cmdMarkLate,
		domain.BookingStatusOverdue:      cmdMarkOverdue,
	}[to]
	if !ok {
		return fmt.Errorf("%s is not a sweep target: %w", to, domain.ErrInvalidStateTransition)
	}

	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if got, err := nextStatus(booking.Status, cmd); err != nil {
		return err
	} else if got != to {
		return fmt.Errorf("%s from %s yields %s, not %s: %w", cmd, booking.Status, got, to, domain.ErrInvalidStateTransition)
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionSweep,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("booking %d advanced to %s", booking.ID, to),
		})
	})
	if err != nil {
		return err
	}
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, actor Actor, bookingID int32) (*domain.Booking, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID && actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return booking, nil
}

func (s *bookingService) ListByLessee(ctx context.Context, actor Actor, lesseeID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	if actor.AccountID != lesseeID && !actor.Admin() {
		return nil, 0, domain.ErrUnauthorized
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.store.Repos().Bookings.ListByLessee(ctx, lesseeID, status, page, pageSize)
}

func (s *bookingService) ListByLessor(ctx context.Context, actor Actor, lessorID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	if actor.AccountID != lessorID && !actor.Admin() {
		return nil, 0, domain.ErrUnauthorized
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.store.Repos().Bookings.ListByLessor(ctx, lessorID, status, page, pageSize)
}

func (s *bookingService) ListByStatus(ctx context.Context, actor Actor, status domain.BookingStatus, page, pageSize int32) ([]domain.Booking, int32, error) {
	if !actor.Admin() {
		return nil, 0, domain.ErrUnauthorized
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.store.Repos().Bookings.ListByStatus(ctx, status, page, pageSize)
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
