package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oneplanet-market/internal/api"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/data/mongo"
	"github.com/oneplanet-market/internal/data/postgres"
	"github.com/oneplanet-market/internal/logger"
	"github.com/oneplanet-market/internal/outbox_poller"
	"github.com/oneplanet-market/internal/platform/messaging/producers"
	"github.com/oneplanet-market/internal/platform/payment"
	"github.com/oneplanet-market/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting API server",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the notification pipeline
	notificationProducer, err := producers.NewNotificationMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	productRepo := postgres.NewProductRepository(log, postgresDB)
	orderRepo := postgres.NewOrderRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	journeyRepo := mongo.NewEcoJourneyRepository(log, mongoDB.Database())
	blogRepo := mongo.NewBlogRepository(log, mongoDB.Database())
	subscriberRepo := mongo.NewSubscriberRepository(log, mongoDB.Database())
	applicationRepo := mongo.NewApplicationRepository(log, mongoDB.Database())

	// Initialize payment providers
	stripeProvider := payment.NewStripeProvider(log, &cfg.Payments)
	squareCharger := payment.NewSquareCharger(log, &cfg.Payments)

	// Initialize services
	accountService := service.NewAccountService(log, &cfg.Auth, postgresDB, accountRepo, outboxRepo)
	walletService := service.NewWalletService(log, &cfg.Wallet, postgresDB, accountRepo, walletRepo)
	catalogService := service.NewCatalogService(log, productRepo)
	journeyService := service.NewEcoJourneyService(log, journeyRepo)
	orderService := service.NewOrderService(log, &cfg.Wallet, accountRepo, productRepo, orderRepo, outboxRepo, walletService, journeyService, stripeProvider, squareCharger)
	contentService := service.NewContentService(log, postgresDB, blogRepo, subscriberRepo, applicationRepo, accountRepo, outboxRepo)

	// Initialize outbox poller so enqueued notifications reach Kafka
	notificationPublisher := outbox_poller.NewNotificationPublisher(outboxRepo, notificationProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, notificationPublisher, log)

	go func() {
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Initialize REST server
	server := api.NewServer(log, cfg, api.Services{
		Account:    accountService,
		Wallet:     walletService,
		Catalog:    catalogService,
		Order:      orderService,
		EcoJourney: journeyService,
		Content:    contentService,
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context; this also stops the outbox poller
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = notificationProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
