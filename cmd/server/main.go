package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "peerrent-backend/internal/api/http"
	"peerrent-backend/internal/config"
	"peerrent-backend/internal/logger"
	"peerrent-backend/internal/repository/postgres"
	"peerrent-backend/internal/security"
	"peerrent-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting PeerRent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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
	extensionService := service.NewExtensionService(store, ledgerService, notificationService, cfg.Policy)
	returnService := service.NewReturnService(store, ledgerService, notificationService, cfg.Policy)
	disputeService := service.NewDisputeService(store, ledgerService, notificationService, cfg.Policy)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	router := httpapi.NewRouter(tokenManager, httpapi.Services{
		Bookings:      bookingService,
		Extensions:    extensionService,
		Returns:       returnService,
		Disputes:      disputeService,
		Ledger:        ledgerService,
		Notifications: notificationService,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal, shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
