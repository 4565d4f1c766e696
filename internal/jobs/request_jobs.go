package jobs

import (
	"context"
	"time"

	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/metrics"
)

// AutoRefundStaleReturnRequests resolves return requests stuck in PROCESSING
// past the configured window by running the approval path as a system actor.
// Failures are logged and retried on the next cycle.
func (jr *JobRunner) AutoRefundStaleReturnRequests() {
	jr.runWithRecovery("AutoRefundStaleReturnRequests", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Policy.AutoRefundAfterHours) * time.Hour)

		requests, err := jr.store.Repos().Returns.ListProcessingAgedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale return requests", "error", err)
			return
		}

		refunded := 0
		for _, req := range requests {
			if _, err := jr.services.Return.AutoRefund(ctx, req.ID); err != nil {
				logger.Error("Failed to auto-refund return request", "request_id", req.ID, "error", err)
				metrics.SweepErrors.WithLabelValues("AutoRefundStaleReturnRequests").Inc()
				continue
			}
			metrics.SweepTransitions.WithLabelValues("AutoRefundStaleReturnRequests").Inc()
			refunded++
		}
		logger.Info("Auto-refund sweep done", "candidates", len(requests), "refunded", refunded)
	})
}

// ExpireStaleExtensionRequests expires pending extension requests older than
// the configured window. Pure status flip, no financial effect; the
// conditional update makes concurrent sweeps safe.
func (jr *JobRunner) ExpireStaleExtensionRequests() {
	jr.runWithRecovery("ExpireStaleExtensionRequests", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-time.Duration(jr.config.Policy.ExtensionExpiryHours) * time.Hour)

		requests, err := jr.store.Repos().Extensions.ListPendingAgedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale extension requests", "error", err)
			return
		}

		expired := 0
		for _, req := range requests {
			if err := jr.store.Repos().Extensions.UpdateStatus(ctx, req.ID,
				domain.ExtensionStatusPending, domain.ExtensionStatusExpired); err != nil {
				logger.Error("Failed to expire extension request", "request_id", req.ID, "error", err)
				metrics.SweepErrors.WithLabelValues("ExpireStaleExtensionRequests").Inc()
				continue
			}
			metrics.SweepTransitions.WithLabelValues("ExpireStaleExtensionRequests").Inc()
			expired++
		}
		logger.Info("Extension expiry sweep done", "candidates", len(requests), "expired", expired)
	})
}
