package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oneplanet-market/internal/api/handler"
	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/domain/account"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	cfg *config.Config,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	walletHandler *handler.WalletHandler,
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	journeyHandler *handler.EcoJourneyHandler,
	contentHandler *handler.ContentHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	auth := middleware.Auth(cfg.Auth.JWTSecret)
	adminOnly := middleware.RequireRoles(account.RoleAdmin)
	sellerRoles := middleware.RequireRoles(account.RoleProducer, account.RoleSeller, account.RoleAdmin)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Session and account lifecycle
		auths := v1.Group("/auth")
		{
			auths.POST("/register", accountHandler.Register)
			auths.POST("/login", accountHandler.Login)
			auths.POST("/password-reset", accountHandler.RequestPasswordReset)
			auths.POST("/password-reset/confirm", accountHandler.ResetPassword)
		}

		// Authenticated account operations
		me := v1.Group("/me", auth)
		{
			me.GET("", accountHandler.Me)
			me.PUT("/payment-details", accountHandler.UpdatePaymentDetails)
			me.GET("/cart", accountHandler.GetCart)
			me.PUT("/cart", accountHandler.SaveCart)
			me.GET("/orders", orderHandler.ListMine)
		}

		// Wallet ledger operations
		wallet := v1.Group("/wallet", auth)
		{
			wallet.GET("/statement", walletHandler.GetStatement)
			wallet.POST("/withdrawals", walletHandler.RequestWithdrawal)
			wallet.GET("/withdrawals", walletHandler.GetWithdrawals)
		}

		// Storefront catalog
		products := v1.Group("/products")
		{
			products.GET("", catalogHandler.List)
			products.GET("/:id", catalogHandler.GetByID)
		}

		// Producer product management
		producer := v1.Group("/producer", auth, sellerRoles)
		{
			producer.POST("/products", catalogHandler.Create)
			producer.GET("/products", catalogHandler.ListMine)
			producer.PATCH("/products/:id/stock", catalogHandler.SetStock)
		}

		// Checkout and orders
		orders := v1.Group("/orders", auth)
		{
			orders.POST("", orderHandler.Place)
		}

		// Payment provider callbacks are authenticated by signature, not session
		v1.POST("/payments/webhook", orderHandler.PaymentWebhook)

		// Sustainability progression
		journey := v1.Group("/eco-journey", auth)
		{
			journey.GET("", journeyHandler.Get)
			journey.PUT("/goals", journeyHandler.UpdateGoals)
			journey.PUT("/preferences", journeyHandler.UpdatePreferences)
			journey.GET("/achievements", journeyHandler.Achievements)
		}
		v1.GET("/leaderboard", journeyHandler.Leaderboard)

		// Community content
		blogs := v1.Group("/blogs")
		{
			blogs.GET("", contentHandler.ListBlogs)
			blogs.GET("/:id", contentHandler.GetBlog)
			blogs.POST("", auth, contentHandler.CreateBlog)
		}

		newsletter := v1.Group("/newsletter")
		{
			newsletter.POST("/subscribe", contentHandler.Subscribe)
			newsletter.POST("/unsubscribe", contentHandler.Unsubscribe)
		}

		v1.POST("/producer-applications", auth, contentHandler.Apply)

		// Admin operations
		admin := v1.Group("/admin", auth, adminOnly)
		{
			admin.GET("/accounts", accountHandler.List)
			admin.POST("/accounts/:id/decision", accountHandler.DecideAccount)
			admin.POST("/wallet/credits", walletHandler.Credit)
			admin.GET("/withdrawals", walletHandler.ListPendingWithdrawals)
			admin.POST("/withdrawals/:id/decision", walletHandler.DecideWithdrawal)
			admin.GET("/orders", orderHandler.List)
			admin.GET("/blogs", contentHandler.ListBlogs)
			admin.POST("/blogs/:id/decision", contentHandler.ModerateBlog)
			admin.GET("/producer-applications", contentHandler.ListApplications)
			admin.POST("/producer-applications/:id/decision", contentHandler.DecideApplication)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
