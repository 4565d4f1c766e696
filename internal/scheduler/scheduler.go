package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"peerrent-backend/internal/jobs"
	"peerrent-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled sweeps with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// The booking sweep runs the four time-driven booking transitions in
	// order, so a booking can move at most one step per cycle.
	_, err := s.cron.AddFunc(cfg.BookingSweep, func() {
		s.jobs.MarkDueForReturn()
		s.jobs.MarkLateReturns()
		s.jobs.MarkOverdueBookings()
		s.jobs.ForfeitOverdueBookings()
		s.jobs.ReconcileEscrow()
	})
	if err != nil {
		logger.Error("Failed to register booking sweep", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.AutoRefundSweep, s.jobs.AutoRefundStaleReturnRequests)
	if err != nil {
		logger.Error("Failed to register AutoRefundStaleReturnRequests job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.ExtensionExpirySweep, s.jobs.ExpireStaleExtensionRequests)
	if err != nil {
		logger.Error("Failed to register ExpireStaleExtensionRequests job", "error", err)
	}

	logger.Info("All cron jobs registered successfully")
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has registered entries
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
