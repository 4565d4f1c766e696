package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"peerrent-backend/internal/config"
	"peerrent-backend/internal/jobs"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/repository/postgres"
	"peerrent-backend/internal/scheduler"
	"peerrent-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific sweep once and exit (e.g., 'booking-sweep', 'auto-refund', 'extension-expiry', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PeerRent Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories and services
	store := postgres.NewStore(db)
	notificationService := service.NewNotificationService(store)
	ledgerService := service.NewLedgerService(store, cfg.Policy.EscrowAccountID)
	bookingService := service.NewBookingService(store, ledgerService, notificationService, cfg.Policy)
	returnService := service.NewReturnService(store, ledgerService, notificationService, cfg.Policy)

	jobRunner := jobs.NewJobRunner(store, &jobs.Services{
		Booking: bookingService,
		Return:  returnService,
		Ledger:  ledgerService,
	}, cfg)

	// Manual execution mode
	if *runOnce != "" {
		runJobOnce(jobRunner, *runOnce)
		return
	}

	// Scheduled mode
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal, shutting down", "signal", sig.String())
	sched.Stop()
}

func runJobOnce(jr *jobs.JobRunner, name string) {
	switch name {
	case "booking-sweep":
		jr.MarkDueForReturn()
		jr.MarkLateReturns()
		jr.MarkOverdueBookings()
		jr.ForfeitOverdueBookings()
	case "auto-refund":
		jr.AutoRefundStaleReturnRequests()
	case "extension-expiry":
		jr.ExpireStaleExtensionRequests()
	case "reconcile":
		jr.ReconcileEscrow()
	case "all":
		jr.RunAllSweeps()
	default:
		log.Fatalf("Unknown job: %s (valid: booking-sweep, auto-refund, extension-expiry, reconcile, all)", name)
	}
}
