package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneplanet-market/internal/api/handler"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/config"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// Services groups the service dependencies wired into the HTTP layer
type Services struct {
	Account    service.AccountService
	Wallet     service.WalletService
	Catalog    service.CatalogService
	Order      service.OrderService
	EcoJourney service.EcoJourneyService
	Content    service.ContentService
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	accountHandler := handler.NewAccountHandler(log, services.Account)
	walletHandler := handler.NewWalletHandler(log, services.Wallet)
	catalogHandler := handler.NewCatalogHandler(log, services.Catalog)
	orderHandler := handler.NewOrderHandler(log, services.Order)
	journeyHandler := handler.NewEcoJourneyHandler(log, services.EcoJourney)
	contentHandler := handler.NewContentHandler(log, services.Content)

	setupRouter(log, cfg, httpRouter, accountHandler, walletHandler, catalogHandler, orderHandler, journeyHandler, contentHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
