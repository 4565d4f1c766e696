package service

import (
	"context"
	"errors"
	"fmt"

	"peerrent-backend/internal/config"
	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/repository"
)

type extensionService struct {
	store    repository.Store
	ledger   LedgerService
	notifier Notifier
	policy   config.PolicyConfig
}

func NewExtensionService(store repository.Store, ledger LedgerService, notifier Notifier, policy config.PolicyConfig) ExtensionService {
	return &extensionService{store: store, ledger: ledger, notifier: notifier, policy: policy}
}

// Request opens an extension for an in-use booking. At most one pending
// request per booking; the fee is quoted up front and charged on approval.
func (s *extensionService) Request(ctx context.Context, actor Actor, bookingID, additionalDays int32) (*domain.ExtensionRequest, error) {
	if additionalDays <= 0 {
		return nil, fmt.Errorf("extension must increase the end date: %w", domain.ErrInvalidDateRange)
	}
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID {
		return nil, domain.ErrUnauthorized
	}
	if booking.Status != domain.BookingStatusInUse {
		return nil, fmt.Errorf("extension requires an in-use booking, got %s: %w", booking.Status, domain.ErrInvalidStateTransition)
	}

	if _, err := s.store.Repos().Extensions.GetPendingByBooking(ctx, bookingID); err == nil {
		return nil, fmt.Errorf("booking %d already has a pending extension: %w", bookingID, domain.ErrDuplicatePendingRequest)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	req := &domain.ExtensionRequest{
		BookingID:          bookingID,
		AdditionalDays:     additionalDays,
		AdditionalFeeCents: booking.RentalFeeCents(additionalDays),
		Status:             domain.ExtensionStatusPending,
	}
	if err := s.store.Repos().Extensions.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, booking.LessorID, "EXTENSION_REQUESTED", "Extension requested",
		fmt.Sprintf("The lessee asked to extend the rental by %d day(s).", additionalDays), "extension_request", req.ID)
	return req, nil
}

// Approve charges the quoted fee into escrow and pushes the booking end date
// out, all in one transaction with the request's status flip.
func (s *extensionService) Approve(ctx context.Context, actor Actor, requestID int32) (*domain.ExtensionRequest, error) {
	req, err := s.store.Repos().Extensions.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	booking, err := s.store.Repos().Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}

	err = s.store.RunInTx(ctx, func(r *repository.Repositories) error {
		if err := r.Extensions.UpdateStatus(ctx, req.ID, domain.ExtensionStatusPending, domain.ExtensionStatusApproved); err != nil {
			return err
		}
		if _, err := s.ledger.Settle(ctx, r, SettlementParams{
			FromAccountID: booking.LesseeID,
			ToAccountID:   s.policy.EscrowAccountID,
			AmountCents:   req.AdditionalFeeCents,
			Type:          domain.TransactionTypeExtensionPayment,
			BookingIDs:    []int32{booking.ID},
		}); err != nil {
			return err
		}

		newEnd := booking.EndDate.AddDate(0, 0, int(req.AdditionalDays))
		if !newEnd.After(booking.EndDate) {
			return fmt.Errorf("extension must move the end date forward: %w", domain.ErrInvalidDateRange)
		}
		if err := r.Bookings.UpdateEndDate(ctx, booking.ID, newEnd); err != nil {
			return err
		}

		item, err := r.Items.GetByID(ctx, booking.ItemID)
		if err != nil {
			return err
		}
		return r.ItemLogs.Append(ctx, &domain.ItemLog{
			ItemID:         item.ID,
			AccountID:      actor.AccountID,
			Action:         domain.ItemLogActionExtension,
			PreviousStatus: item.Status,
			CurrentStatus:  item.Status,
			Note:           fmt.Sprintf("booking %d extended by %d day(s)", booking.ID, req.AdditionalDays),
		})
	})
	if err != nil {
		return nil, err
	}

	req.Status = domain.ExtensionStatusApproved
	s.notifier.Notify(ctx, booking.LesseeID, "EXTENSION_APPROVED", "Extension approved",
		fmt.Sprintf("Your extension of %d day(s) was approved and charged.", req.AdditionalDays), "extension_request", req.ID)
	return req, nil
}

func (s *extensionService) Reject(ctx context.Context, actor Actor, requestID int32) (*domain.ExtensionRequest, error) {
	return s.flip(ctx, actor, requestID, domain.ExtensionStatusRejected, false)
}

func (s *extensionService) Cancel(ctx context.Context, actor Actor, requestID int32) (*domain.ExtensionRequest, error) {
	return s.flip(ctx, actor, requestID, domain.ExtensionStatusCancelled, true)
}

// flip handles the pure status transitions: reject (lessor) and cancel
// (lessee). No financial effect.
func (s *extensionService) flip(ctx context.Context, actor Actor, requestID int32, to domain.ExtensionStatus, byLessee bool) (*domain.ExtensionRequest, error) {
	req, err := s.store.Repos().Extensions.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	booking, err := s.store.Repos().Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	expected := booking.LessorID
	if byLessee {
		expected = booking.LesseeID
	}
	if actor.AccountID != expected && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}

	if err := s.store.Repos().Extensions.UpdateStatus(ctx, req.ID, domain.ExtensionStatusPending, to); err != nil {
		return nil, err
	}
	req.Status = to

	if to == domain.ExtensionStatusRejected {
		s.notifier.Notify(ctx, booking.LesseeID, "EXTENSION_REJECTED", "Extension rejected",
			"The owner rejected your extension request.", "extension_request", req.ID)
	}
	return req, nil
}

func (s *extensionService) ListByBooking(ctx context.Context, actor Actor, bookingID int32) ([]domain.ExtensionRequest, error) {
	booking, err := s.store.Repos().Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.AccountID != booking.LesseeID && actor.AccountID != booking.LessorID && !actor.Admin() {
		return nil, domain.ErrUnauthorized
	}
	return s.store.Repos().Extensions.ListByBooking(ctx, bookingID)
}
