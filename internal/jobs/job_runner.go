package jobs

import (
	"peerrent-backend/internal/config"
	"peerrent-backend/internal/domain"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/repository"
	"peerrent-backend/internal/service"
)

// JobRunner coordinates all scheduled sweeps
type JobRunner struct {
	store    repository.Store
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by sweeps
type Services struct {
	Booking service.BookingService
	Return  service.ReturnService
	Ledger  service.LedgerService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		services: services,
		config:   cfg,
	}
}

// Config exposes the runner's configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// systemActor is the privileged identity sweeps act under. The escrow
// account id is recorded as the actor in item logs for system actions.
func (jr *JobRunner) systemActor() service.Actor {
	return service.Actor{
		AccountID: jr.config.Policy.EscrowAccountID,
		Role:      domain.AccountRoleSystem,
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllSweeps runs every sweep once (for manual execution)
func (jr *JobRunner) RunAllSweeps() {
	jr.MarkDueForReturn()
	jr.MarkLateReturns()
	jr.MarkOverdueBookings()
	jr.ForfeitOverdueBookings()
	jr.AutoRefundStaleReturnRequests()
	jr.ExpireStaleExtensionRequests()
	jr.ReconcileEscrow()
}
