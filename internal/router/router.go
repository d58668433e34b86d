// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/barterhub/barterhub-backend/internal/config"
	"github.com/barterhub/barterhub-backend/internal/handlers"
	"github.com/barterhub/barterhub-backend/internal/middleware"
	"github.com/barterhub/barterhub-backend/internal/payment"
	"github.com/barterhub/barterhub-backend/internal/services"
	"github.com/barterhub/barterhub-backend/internal/utils"
	"github.com/barterhub/barterhub-backend/internal/ws"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *ws.Hub) {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	hub := ws.NewHub()

	gate := services.NewUnlockService()
	chatService := services.NewChatService()
	autoReplyService := services.NewAutoReplyService(chatService, hub, cfg.Chat)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	assetService := services.NewAssetService(db)

	// Mobile money always runs through the simulator; card payments use
	// Stripe when a key is configured and the simulator otherwise.
	providers := map[payment.Method]payment.Provider{
		payment.MethodMobileMoney: payment.NewSimulatedProvider(cfg.Payment.SimulatedSuccessRate),
	}
	if cfg.Payment.StripeSecretKey != "" {
		providers[payment.MethodCard] = payment.NewStripeProvider(cfg.Payment.StripeSecretKey)
	} else {
		providers[payment.MethodCard] = payment.NewSimulatedProvider(cfg.Payment.SimulatedSuccessRate)
	}

	paymentService := services.NewPaymentService(db, cfg, gate, providers)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, storageService)
	assetHandler := handlers.NewAssetHandler(assetService, paymentService, storageService, gate)
	chatHandler := handlers.NewChatHandler(chatService, autoReplyService, assetService, gate, hub, cfg)
	paymentHandler := handlers.NewPaymentHandler(paymentService, gate)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(nil))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/change-password", middleware.AuthRequired(), authHandler.ChangePassword)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", userHandler.GetPublicProfile)

			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.POST("/upload-avatar", middleware.UploadRateLimit(), userHandler.UploadAvatar)
				protected.DELETE("/account", userHandler.DeleteAccount)
			}
		}

		// Asset routes
		assets := v1.Group("/assets")
		{
			assets.GET("", middleware.OptionalAuth(), assetHandler.GetAssets)
			assets.GET("/:id", middleware.OptionalAuth(), assetHandler.GetAsset)

			protected := assets.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/mine", assetHandler.GetMyAssets)
				protected.GET("/:id/contact", assetHandler.GetSellerContact)
				protected.GET("/:id/similar", assetHandler.GetSimilarAssets)
				protected.POST("", assetHandler.CreateAsset)
				protected.PUT("/:id", assetHandler.UpdateAsset)
				protected.DELETE("/:id", assetHandler.DeleteAsset)
				protected.POST("/:id/mark-traded", assetHandler.MarkTraded)
				protected.POST("/upload-images", middleware.UploadRateLimit(), assetHandler.UploadImages)
			}
		}

		// Chat routes
		chats := v1.Group("/chats")
		chats.Use(middleware.AuthRequired())
		{
			chats.GET("", chatHandler.GetConversations)
			chats.GET("/ws", chatHandler.ServeWS)
			chats.GET("/:userId", chatHandler.GetConversation)
			chats.POST("/:userId/messages", chatHandler.SendMessage)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/unlock", middleware.PaymentRateLimit(), paymentHandler.ProcessUnlock)
			payments.GET("/unlock-status", paymentHandler.GetUnlockStatus)
			payments.GET("/fees", paymentHandler.GetFees)
			payments.GET("/history", paymentHandler.GetPaymentHistory)
			payments.GET("/:id", paymentHandler.GetTransaction)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", getCategoriesHandler)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, hub
}

// Helper handlers for simple endpoints
func getCategoriesHandler(c *gin.Context) {
	categories := []map[string]interface{}{
		{"id": "electronics", "name": "Electronics", "icon": "smartphone"},
		{"id": "fashion", "name": "Fashion & Clothing", "icon": "shirt"},
		{"id": "home", "name": "Home & Furniture", "icon": "armchair"},
		{"id": "vehicles", "name": "Vehicles & Parts", "icon": "car"},
		{"id": "agriculture", "name": "Agriculture", "icon": "wheat"},
		{"id": "books", "name": "Books & Education", "icon": "book"},
		{"id": "sports", "name": "Sports & Outdoors", "icon": "dumbbell"},
		{"id": "services", "name": "Services", "icon": "wrench"},
		{"id": "other", "name": "Other", "icon": "package"},
	}

	utils.SuccessResponse(c, gin.H{
		"categories": categories,
	})
}
