package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peerrent-backend/internal/config"
	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/metrics"
	"peerrent-backend/internal/pricing"
	"peerrent-backend/internal/repository"
)

type returnService struct {
	store    repository.Store
	ledger   LedgerService
	notifier Notifier
	policy   config.PolicyConfig
	now      func() time.Time
}

func NewReturnService(store repository.Store, ledger LedgerService, notifier Notifier, policy config.PolicyConfig) ReturnService {
	return &returnService{store: store, ledger: ledger, notifier: notifier, policy: policy, now: time.Now}
}

// Submit opens the lessee-initiated refund path: the booking leaves its
// normal flow for RETURN_REFUND_REQUESTED and a PROCESSING request is
// created. At most one open request per booking.
func (s *returnService) Submit(ctx context.Context, actor Actor, bookingID int32, reason domain.ReturnReason, detail string, evidence []domain.Evidence) (*domain.ReturnRequest, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID {
		return nil, domain.ErrUnauthorized
	}
	to, err := nextStatus(booking.Status, cmdRequestRefund)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Repos().Returns.GetOpenByBooking(ctx, bookingID); err == nil {
		return nil, fmt.Errorf("booking %d already has an open return request: %w", bookingID, domain.ErrDuplicatePendingRequest)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	req := &domain.ReturnRequest{
		BookingID: bookingID,
		Reason:    reason,
		Detail:    detail,
		Evidence:  evidence,
		Status:    domain.ReturnRequestStatusProcessing,
	}
	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		if err := r.Returns.Create(ctx, req); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionReturnRequest,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("return request opened on booking %d, reason %s", booking.ID, reason),
			Evidence:       evidence,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LessorID, "RETURN_REQUESTED", "Return requested",
		"The lessee opened a return request on your item.", "return_request", req.ID)
	return req, nil
}

// SubmitPackingEvidence records proof of shipment and moves the booking into
// RETURN_REFUND_PROCESSING.
func (s *returnService) SubmitPackingEvidence(ctx context.Context, actor Actor, requestID int32, evidence []domain.Evidence) (*domain.ReturnRequest, error) {
	req, booking, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID {
		return nil, domain.ErrUnauthorized
	}
	if req.Status.Terminal() {
		return nil, fmt.Errorf("return request %d already %s: %w", req.ID, req.Status, domain.ErrInvalidStateTransition)
	}
	to, err := nextStatus(booking.Status, cmdStartRefund)
	if err != nil {
		return nil, err
	}

	req.PackingEvidence = append(req.PackingEvidence, evidence...)
	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		if err := r.Returns.Update(ctx, req); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionReturnRequest,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("packing evidence added on return request %d", req.ID),
			Evidence:       evidence,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	return req, nil
}

func (s *returnService) LessorConfirmReceipt(ctx context.Context, actor Actor, requestID int32) (*domain.ReturnRequest, error) {
	req, booking, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID {
		return nil, domain.ErrUnauthorized
	}
	if req.Status.Terminal() {
		return nil, fmt.Errorf("return request %d already %s: %w", req.ID, req.Status, domain.ErrInvalidStateTransition)
	}
	now := s.now()
	req.LessorConfirmedOn = &now
	if err := s.store.Repos().Returns.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *returnService) AdminDecide(ctx context.Context, actor Actor, requestID int32, decision domain.AdminDecision, overrideAmountCents *int32) (*domain.ReturnRequest, error) {
	if !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	switch decision {
	case domain.AdminDecisionApproved:
		return s.approve(ctx, actor, requestID, overrideAmountCents, domain.ReturnRequestStatusApproved)
	case domain.AdminDecisionRejected:
		return s.reject(ctx, actor, requestID)
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", decision, domain.ErrInvalidStateTransition)
	}
}

// AutoRefund is the sweep path: the approval flow as a system actor with the
// default full refund, outcome marked AUTO_REFUNDED.
func (s *returnService) AutoRefund(ctx context.Context, requestID int32) (*domain.ReturnRequest, error) {
	actor := Actor{AccountID: s.policy.EscrowAccountID, Role: domain.AccountRoleSystem}
	return s.approve(ctx, actor, requestID, nil, domain.ReturnRequestStatusAutoRefunded)
}

// approve settles the refund and completes the booking. The refund defaults
// to the full checkout charge; an admin override amount always wins.
// Reasons that fault the lessor additionally ban the item and dock the
// lessor's trust score.
func (s *returnService) approve(ctx context.Context, actor Actor, requestID int32, overrideAmountCents *int32, outcome domain.ReturnRequestStatus) (*domain.ReturnRequest, error) {
	req, booking, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, fmt.Errorf("return request %d already %s: %w", req.ID, req.Status, domain.ErrInvalidStateTransition)
	}

	days, err := pricing.RentalDays(booking.StartDate, booking.EndDate)
	if err != nil {
		return nil, err
	}
	refund := booking.RentalFeeCents(days) + booking.TotalDepositCents()
	if overrideAmountCents != nil {
		// The override can only give back part of what escrow holds for this
		// booking, never more and never a negative amount.
		if *overrideAmountCents < 0 || *overrideAmountCents > refund {
			return nil, fmt.Errorf("refund override %d outside [0, %d]: %w",
				*overrideAmountCents, refund, domain.ErrInvalidStateTransition)
		}
		refund = *overrideAmountCents
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		// A request may be decided before the lessee ships; catch the booking
		// up to RETURN_REFUND_PROCESSING first in that case.
		from := booking.Status
		if from == domain.BookingStatusReturnRefundRequested {
			if err := r.Bookings.UpdateStatus(ctx, booking.ID, from, domain.BookingStatusReturnRefundProcessing); err != nil {
				return err
			}
			from = domain.BookingStatusReturnRefundProcessing
		}
		to, err := nextStatus(from, cmdCompleteRefund)
		if err != nil {
			return err
		}
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, from, to); err != nil {
			return err
		}

		if refund > 0 {
			if _, err := s.ledger.Settle(ctx, r, SettlementParams{
				FromAccountID: s.policy.EscrowAccountID,
				ToAccountID:   booking.LesseeID,
				AmountCents:   refund,
				Type:          domain.TransactionTypeRefundFull,
				BookingIDs:    []int32{booking.ID},
			}); err != nil {
				return err
			}
		}

		req.RefundAmountCents = &refund
		req.Status = outcome
		if err := r.Returns.Update(ctx, req); err != nil {
			return err
		}

		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		itemStatus := domain.ItemStatusAvailable
		if req.Reason.PenalizesLessor() {
			itemStatus = domain.ItemStatusBanned
			lessor, err := r.Accounts.GetByID(ctx, booking.LessorID)
			if err != nil {
				return err
			}
			lessor.DockTrust(s.policy.RejectTrustPenalty)
			if err := r.Accounts.UpdateTrust(ctx, lessor.ID, lessor.TrustScore); err != nil {
				return err
			}
		} else if err := r.Items.IncrementQuantity(ctx, item.ID, booking.Quantity); err != nil {
			return err
		}
		if err := r.Items.UpdateStatus(ctx, item.ID, itemStatus); err != nil {
			return err
		}

		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionRefund,
			PreviousStatus: item.Status,
			CurrentStatus:  itemStatus,
			Note:           fmt.Sprintf("return request %d %s, %d cents refunded", req.ID, outcome, refund),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(domain.BookingStatusCompleted)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "RETURN_REFUNDED", "Refund issued",
		fmt.Sprintf("Your return request was approved and %d cents were refunded.", refund), "return_request", req.ID)
	logger.Info("return request refunded", "request_id", req.ID, "outcome", outcome, "refund_cents", refund)
	return req, nil
}

// reject closes the request and puts the booking back into its rental flow.
func (s *returnService) reject(ctx context.Context, actor Actor, requestID int32) (*domain.ReturnRequest, error) {
	req, booking, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, fmt.Errorf("return request %d already %s: %w", req.ID, req.Status, domain.ErrInvalidStateTransition)
	}
	to, err := nextStatus(booking.Status, cmdRejectRefund)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Bookings.UpdateStatus(ctx, booking.ID, booking.Status, to); err != nil {
			return err
		}
		if err := r.Returns.UpdateStatus(ctx, req.ID, domain.ReturnRequestStatusProcessing, domain.ReturnRequestStatusRejected); err != nil {
			return err
		}
		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionReturnRequest,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("return request %d rejected, rental resumes", req.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	req.Status = domain.ReturnRequestStatusRejected
	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	s.notifier.Notify(ctx, booking.LesseeID, "RETURN_REJECTED", "Return request rejected",
		"Your return request was rejected; the rental continues.", "return_request", req.ID)
	return req, nil
}

func (s *returnService) GetByID(ctx context.Context, actor Actor, requestID int32) (*domain.ReturnRequest, error) {
	req, booking, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID && actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return req, nil
}

func (s *returnService) load(ctx context.Context, requestID int32) (*domain.ReturnRequest, *domain.Booking, error) {
	req, err := s.store.Repos().Returns.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	booking, err := s.store.Repos().Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, nil, err
	}
	return req, booking, nil
}
