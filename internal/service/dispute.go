package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peerrent-backend/internal/config"
	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/metrics"
	"peerrent-backend/internal/pricing"
	"peerrent-backend/internal/repository"
)

// Trust penalties for a lessee found at fault, tiered by the damage type's
// compensation rate.
const (
	minorDamageRateBps = 1000
	majorDamageRateBps = 3000

	minorDamageTrustPenalty  = 2
	mediumDamageTrustPenalty = 5
	majorDamageTrustPenalty  = 10
)

type disputeService struct {
	store    repository.Store
	ledger   LedgerService
	notifier Notifier
	policy   config.PolicyConfig
	now      func() time.Time
}

func NewDisputeService(store repository.Store, ledger LedgerService, notifier Notifier, policy config.PolicyConfig) DisputeService {
	return &disputeService{store: store, ledger: ledger, notifier: notifier, policy: policy, now: time.Now}
}

// Create opens a damage claim. A dispute preempts the refund path: any open
// return request on the booking is force-closed and the item is banned
// pending admin review.
func (s *disputeService) Create(ctx context.Context, actor Actor, bookingID, damageTypeID int32, detail string, evidence []domain.Evidence) (*domain.Dispute, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdOpenDispute)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Repos().Disputes.GetDamageType(ctx, damageTypeID); err != nil {
		return nil, fmt.Errorf("damage type %d: %w", damageTypeID, err)
	}

	dispute := &domain.Dispute{
		BookingID:    bookingID,
		ReporterID:   booking.LessorID,
		DefenderID:   booking.LesseeID,
		DamageTypeID: damageTypeID,
		Detail:       detail,
		Evidence:     evidence,
		Status:       domain.DisputeStatusPendingReview,
	}
	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}

		open, err := r.Returns.GetOpenByBooking(ctx, bookingID)
		if err == nil {
			if err := r.Returns.UpdateStatus(ctx, open.ID,
				domain.ReturnRequestStatusProcessing, domain.ReturnRequestStatusClosedByDispute); err != nil {
				return err
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if err := r.Disputes.Create(ctx, dispute); err != nil {
			return err
		}

		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		if err := r.Items.UpdateStatus(ctx, item.ID, domain.ItemStatusBanned); err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionDispute,
			PreviousStatus: item.Status,
			CurrentStatus:  domain.ItemStatusBanned,
			Note:           fmt.Sprintf("dispute opened on booking %d", booking.ID),
			Evidence:       evidence,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "DISPUTE_OPENED", "Dispute opened",
		"The owner reported damage on your rental. An admin will review the claim.", "dispute", dispute.ID)
	return dispute, nil
}

// Resolve is the admin decision. Approval pays the lessor the rental fee
// plus a deposit share scaled by the damage type's rate, refunds the lessee
// the remainder, and docks the lessee's trust on a tier by rate; rates at or
// above the major threshold keep the item banned. Rejection sends the
// booking back into the refund flow.
func (s *disputeService) Resolve(ctx context.Context, actor Actor, disputeID int32, decision domain.AdminDecision) (*domain.Dispute, error) {
	if !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	dispute, err := s.store.Repos().Disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.Status != domain.DisputeStatusPendingReview {
		return nil, fmt.Errorf("dispute %d already resolved: %w", dispute.ID, domain.ErrInvalidStateTransition)
	}
	booking, err := s.store.Repos().Bookings.GetByID(ctx, dispute.BookingID)
	if err != nil {
		return nil, err
	}

	switch decision {
	case domain.AdminDecisionApproved:
		err = s.approve(ctx, actor, dispute, booking)
	case domain.AdminDecisionRejected:
		err = s.reject(ctx, actor, dispute, booking)
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", decision, domain.ErrInvalidStateTransition)
	}
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *disputeService) approve(ctx context.Context, actor Actor, dispute *domain.Dispute, booking *domain.Booking) error {
	to, err := nextStatus(booking.Status, cmdDisputeApproved)
	if err != nil {
		return err
	}
	damageType, err := s.store.Repos().Disputes.GetDamageType(ctx, dispute.DamageTypeID)
	if err != nil {
		return err
	}
	days, err := pricing.RentalDays(booking.StartDate, booking.EndDate)
	if err != nil {
		return err
	}

	deposit := booking.TotalDepositCents()
	compensation := pricing.ApplyRateBps(deposit, damageType.CompensationRateBps)

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}

		if _, err := s.ledger.Settle(ctx, r, SettlementParams{
			FromAccountID: s.policy.EscrowAccountID,
			ToAccountID:   booking.LessorID,
			AmountCents:   booking.RentalFeeCents(days),
			Type:          domain.TransactionTypeRentalPayout,
			BookingIDs:    []int32{booking.ID},
		}); err != nil {
			return err
		}
		if compensation > 0 {
			if _, err := s.ledger.Settle(ctx, r, SettlementParams{
				FromAccountID: s.policy.EscrowAccountID,
				ToAccountID:   booking.LessorID,
				AmountCents:   compensation,
				Type:          domain.TransactionTypeCompensationPayout,
				BookingIDs:    []int32{booking.ID},
			}); err != nil {
				return err
			}
		}
		if refund := deposit - compensation; refund > 0 {
			if _, err := s.ledger.Settle(ctx, r, SettlementParams{
				FromAccountID: s.policy.EscrowAccountID,
				ToAccountID:   booking.LesseeID,
				AmountCents:   refund,
				Type:          domain.TransactionTypeRefundDeposit,
				BookingIDs:    []int32{booking.ID},
			}); err != nil {
				return err
			}
		}

		lessee, err := r.Accounts.GetByID(ctx, booking.LesseeID)
		if err != nil {
			return err
		}
		lessee.DockTrust(trustPenaltyForRate(damageType.CompensationRateBps))
		if err := r.Accounts.UpdateTrust(ctx, lessee.ID, lessee.TrustScore); err != nil {
			return err
		}

		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		itemStatus := item.Status
		if damageType.CompensationRateBps < majorDamageRateBps {
			itemStatus = domain.ItemStatusAvailable
			if err := r.Items.IncrementQuantity(ctx, item.ID, booking.Quantity); err != nil {
				return err
			}
			if err := r.Items.UpdateStatus(ctx, item.ID, itemStatus); err != nil {
				return err
			}
		}

		now := s.now()
		dispute.CompensationAmountCents = compensation
		dispute.Status = domain.DisputeStatusResolved
		dispute.AdminDecision = domain.AdminDecisionApproved
		dispute.ResolvedOn = &now
		if err := r.Disputes.Update(ctx, dispute); err != nil {
			return err
		}

		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionDispute,
			PreviousStatus: item.Status,
			CurrentStatus:  itemStatus,
			Note:           fmt.Sprintf("dispute %d approved, %d cents compensation", dispute.ID, compensation),
		})
	})
	if err != nil {
		return err
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "DISPUTE_RESOLVED", "Dispute resolved against you",
		fmt.Sprintf("The damage claim was approved; %d cents of your deposit went to the owner.", compensation), "dispute", dispute.ID)
	s.notifier.Notify(ctx, booking.LessorID, "DISPUTE_RESOLVED", "Dispute resolved",
		"Your damage claim was approved and compensation paid out.", "dispute", dispute.ID)
	return nil
}

func (s *disputeService) reject(ctx context.Context, actor Actor, dispute *domain.Dispute, booking *domain.Booking) error {
	to, err := nextStatus(booking.Status, cmdDisputeRejected)
	if err != nil {
		return err
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}

		// The refund flow needs an open request to finish. Reopen the one the
		// dispute force-closed; if the dispute was raised before the lessee
		// ever filed one, open it on their behalf.
		closed, err := r.Returns.GetByBookingAndStatus(ctx, booking.ID, domain.ReturnRequestStatusClosedByDispute)
		switch {
		case err == nil:
			if err := r.Returns.UpdateStatus(ctx, closed.ID,
				domain.ReturnRequestStatusClosedByDispute, domain.ReturnRequestStatusProcessing); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrNotFound):
			if err := r.Returns.Create(ctx, &domain.ReturnRequest{
				BookingID: booking.ID,
				Reason:    domain.ReturnReasonOther,
				Detail:    fmt.Sprintf("opened after dispute %d was rejected", dispute.ID),
				Status:    domain.ReturnRequestStatusProcessing,
			}); err != nil {
				return err
			}
		default:
			return err
		}

		now := s.now()
		dispute.Status = domain.DisputeStatusResolved
		dispute.AdminDecision = domain.AdminDecisionRejected
		dispute.ResolvedOn = &now
		if err := r.Disputes.Update(ctx, dispute); err != nil {
			return err
		}

		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionDispute,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("dispute %d rejected, refund flow resumes", dispute.ID),
		})
	})
	if err != nil {
		return err
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LessorID, "DISPUTE_RESOLVED", "Dispute rejected",
		"Your damage claim was rejected. The return request will be processed.", "dispute", dispute.ID)
	return nil
}

func trustPenaltyForRate(rateBps int32) int32 {
	switch {
	case rateBps < minorDamageRateBps:
		return minorDamageTrustPenalty
	case rateBps < majorDamageRateBps:
		return mediumDamageTrustPenalty
	default:
		return majorDamageTrustPenalty
	}
}

func (s *disputeService) GetByID(ctx context.Context, actor Actor, disputeID int32) (*domain.Dispute, error) {
	dispute, err := s.store.Repos().Disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != dispute.ReporterID && actor.AccountID != dispute.DefenderID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return dispute, nil
}

func (s *disputeService) ListPending(ctx context.Context, actor Actor, page, pageSize int32) ([]domain.Dispute, int32, error) {
	if !actor.Admin() {
		return nil, 0, domain.ErrUnauthorized
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.store.Repos().Disputes.ListPending(ctx, page, pageSize)
}
