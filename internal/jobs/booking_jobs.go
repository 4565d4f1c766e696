package jobs

import (
	"context"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/metrics"
	"peerrent-backend/internal/pricing"
)

// MarkDueForReturn advances IN_USE bookings whose end date has passed to
// DUE_FOR_RETURN. A booking another replica already advanced fails its
// conditional update and is skipped; re-runs are no-ops.
func (jr *JobRunner) MarkDueForReturn() {
	jr.runWithRecovery("MarkDueForReturn", func() {
		ctx := context.Background()

		bookings, err := jr.store.Repos().Bookings.ListDue(ctx, domain.BookingStatusInUse, time.Now())
		if err != nil {
			logger.Error("Failed to list due bookings", "error", err)
			return
		}

		advanced := 0
		for _, b := range bookings {
			if err := jr.services.Booking.SweepAdvance(ctx, jr.systemActor(), b.ID, domain.BookingStatusDueForReturn); err != nil {
				logger.Error("Failed to mark booking due", "booking_id", b.ID, "error", err)
				metrics.SweepErrors.WithLabelValues("MarkDueForReturn").Inc()
				continue
			}
			metrics.SweepTransitions.WithLabelValues("MarkDueForReturn").Inc()
			advanced++
		}
		logger.Info("Due-for-return sweep done", "candidates", len(bookings), "advanced", advanced)
	})
}

// MarkLateReturns advances bookings sitting in DUE_FOR_RETURN past the
// configured grace period to LATE_RETURN.
func (jr *JobRunner) MarkLateReturns() {
	jr.runWithRecovery("MarkLateReturns", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Policy.LateAfterHours) * time.Hour)

		bookings, err := jr.store.Repos().Bookings.ListStatusAgedBefore(ctx, domain.BookingStatusDueForReturn, cutoff)
		if err != nil {
			logger.Error("Failed to list overdue-grace bookings", "error", err)
			return
		}

		advanced := 0
		for _, b := range bookings {
			if err := jr.services.Booking.SweepAdvance(ctx, jr.systemActor(), b.ID, domain.BookingStatusLateReturn); err != nil {
				logger.Error("Failed to mark booking late", "booking_id", b.ID, "error", err)
				metrics.SweepErrors.WithLabelValues("MarkLateReturns").Inc()
				continue
			}
			metrics.SweepTransitions.WithLabelValues("MarkLateReturns").Inc()
			advanced++
		}
		logger.Info("Late-return sweep done", "candidates", len(bookings), "advanced", advanced)
	})
}

// MarkOverdueBookings advances LATE_RETURN bookings past the overdue window
// to OVERDUE.
func (jr *JobRunner) MarkOverdueBookings() {
	jr.runWithRecovery("MarkOverdueBookings", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Policy.OverdueAfterHours) * time.Hour)

		bookings, err := jr.store.Repos().Bookings.ListStatusAgedBefore(ctx, domain.BookingStatusLateReturn, cutoff)
		if err != nil {
			logger.Error("Failed to list late bookings", "error", err)
			return
		}

		advanced := 0
		for _, b := range bookings {
			if err := jr.services.Booking.SweepAdvance(ctx, jr.systemActor(), b.ID, domain.BookingStatusOverdue); err != nil {
				logger.Error("Failed to mark booking overdue", "booking_id", b.ID, "error", err)
				metrics.SweepErrors.WithLabelValues("MarkOverdueBookings").Inc()
				continue
			}
			metrics.SweepTransitions.WithLabelValues("MarkOverdueBookings").Inc()
			advanced++
		}
		logger.Info("Overdue sweep done", "candidates", len(bookings), "advanced", advanced)
	})
}

// ForfeitOverdueBookings terminates OVERDUE bookings whose late days reached
// the forfeiture boundary: item marked missing, lessor compensated, lessee
// penalized and banned.
func (jr *JobRunner) ForfeitOverdueBookings() {
	jr.runWithRecovery("ForfeitOverdueBookings", func() {
		ctx := context.Background()
		now := time.Now()

		bookings, err := jr.store.Repos().Bookings.ListStatusAgedBefore(ctx, domain.BookingStatusOverdue, now)
		if err != nil {
			logger.Error("Failed to list overdue bookings", "error", err)
			return
		}

		forfeited := 0
		for _, b := range bookings {
			if pricing.DaysLate(b.EndDate, now) < jr.config.Policy.ForfeitAfterDays {
				continue
			}
			if _, err := jr.services.Booking.Forfeit(ctx, jr.systemActor(), b.ID); err != nil {
				logger.Error("Failed to forfeit booking", "booking_id", b.ID, "error", err)
				metrics.SweepErrors.WithLabelValues("ForfeitOverdueBookings").Inc()
				continue
			}
			metrics.SweepTransitions.WithLabelValues("ForfeitOverdueBookings").Inc()
			forfeited++
		}
		logger.Info("Forfeiture sweep done", "candidates", len(bookings), "forfeited", forfeited)
	})
}

// ReconcileEscrow checks the escrow balance against the held float and logs
// the result; an imbalance is an operator alert, never an automatic fix.
func (jr *JobRunner) ReconcileEscrow() {
	jr.runWithRecovery("ReconcileEscrow", func() {
		report, err := jr.services.Ledger.Reconcile(context.Background())
		if err != nil {
			logger.Error("Failed to reconcile escrow", "error", err)
			return
		}
		logger.Info("Escrow reconciliation",
			"balance_cents", report.EscrowBalanceCents,
			"held_cents", report.HeldCents,
			"balanced", report.Balanced)
	})
}
