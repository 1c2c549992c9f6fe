package router

import (
	"log"
	"time"

	"kidquiz/config"
	"kidquiz/internal/handler"
	"kidquiz/internal/middleware"
	"kidquiz/internal/repository"
	"kidquiz/internal/service"
	"kidquiz/internal/ws"
	"kidquiz/pkg/cloudinary"
	"kidquiz/pkg/llm"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	guardianRepo := repository.NewGuardianRepository(db)
	kidRepo := repository.NewKidRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	itemRepo := repository.NewItemRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	feedHub := ws.NewFeedHub()

	// Services
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, guardianRepo, fcmSvc)
	authSvc := service.NewAuthService(cfg, guardianRepo)
	kidSvc := service.NewKidService(kidRepo, guardianRepo)
	rewardSvc := service.NewRewardService(walletRepo, kidRepo, notifSvc, feedHub)
	redemptionSvc := service.NewRedemptionService(db, itemRepo, redemptionRepo, kidRepo, notifSvc, feedHub)
	quizSvc := service.NewQuizService(quizRepo, rewardSvc)

	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	if !llmClient.Configured() {
		log.Printf("[LLM] Quiz generation disabled: set LLM_API_KEY to enable")
	}
	quizGenSvc := service.NewQuizGenService(llmClient, quizSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, guardianRepo)
	kidHandler := handler.NewKidHandler(cfg, kidSvc)
	walletHandler := handler.NewWalletHandler(rewardSvc, kidSvc)
	itemHandler := handler.NewItemHandler(redemptionSvc, cloud)
	redemptionHandler := handler.NewRedemptionHandler(redemptionSvc, kidSvc)
	quizHandler := handler.NewQuizHandler(quizSvc, quizGenSvc, kidSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	guardianMw := middleware.GuardianOnly()

	r.GET("/ws/kids/:id/feed", ws.UpgradeFeedWS(&cfg.JWT, feedHub, kidRepo))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", authMw, guardianMw, authHandler.Me)
			authGroup.PATCH("/fcm-token", authMw, guardianMw, authHandler.UpdateFCMToken)
		}

		kids := api.Group("/kids")
		kids.Use(authMw)
		{
			kids.POST("", guardianMw, kidHandler.Create)
			kids.GET("", guardianMw, kidHandler.List)
			kids.GET("/:id", kidHandler.Get)
			kids.PATCH("/:id", guardianMw, kidHandler.Update)
			kids.DELETE("/:id", guardianMw, kidHandler.Delete)
			kids.GET("/:id/guardians", guardianMw, kidHandler.ListGuardians)
			kids.POST("/:id/guardians", guardianMw, kidHandler.InviteGuardian)
			kids.DELETE("/:id/guardians/:gid", guardianMw, kidHandler.RemoveGuardian)
			kids.POST("/:id/token", guardianMw, kidHandler.IssueKidToken)
			kids.GET("/:id/settings", kidHandler.GetSettings)
			kids.PATCH("/:id/settings", guardianMw, kidHandler.UpdateSettings)

			kids.GET("/:id/wallet", walletHandler.GetWallet)
			kids.GET("/:id/wallet/transactions", walletHandler.ListTransactions)
			kids.POST("/:id/wallet/earn", guardianMw, walletHandler.Earn)
			kids.POST("/:id/wallet/convert", walletHandler.Convert)
			kids.POST("/:id/wallet/daily-login", walletHandler.DailyLogin)
			kids.POST("/:id/wallet/streak", guardianMw, walletHandler.Streak)
			kids.POST("/:id/wallet/achievement", guardianMw, walletHandler.Achievement)

			kids.POST("/:id/redemptions", redemptionHandler.Request)
			kids.GET("/:id/redemptions", redemptionHandler.ListByKid)
			kids.GET("/:id/redemptions/stats", redemptionHandler.Stats)

			kids.GET("/:id/attempts", quizHandler.ListAttempts)
		}

		api.GET("/wallet/conversion-rates", authMw, walletHandler.ConversionRates)

		items := api.Group("/items")
		items.Use(authMw)
		{
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.Get)
			items.POST("", guardianMw, itemHandler.Create)
			items.PATCH("/:id", guardianMw, itemHandler.Update)
			items.DELETE("/:id", guardianMw, itemHandler.Delete)
			items.POST("/:id/image", guardianMw, itemHandler.UploadImage)
		}

		redemptions := api.Group("/redemptions")
		redemptions.Use(authMw)
		{
			redemptions.GET("/pending", guardianMw, redemptionHandler.ListPending)
			redemptions.POST("/:id/approve", guardianMw, redemptionHandler.Approve)
			redemptions.POST("/:id/reject", guardianMw, redemptionHandler.Reject)
			redemptions.POST("/:id/fulfill", guardianMw, redemptionHandler.Fulfill)
			redemptions.POST("/:id/cancel", redemptionHandler.Cancel)
		}

		quizzes := api.Group("/quizzes")
		quizzes.Use(authMw)
		{
			quizzes.GET("", quizHandler.List)
			quizzes.GET("/:id", quizHandler.Get)
			quizzes.POST("", guardianMw, quizHandler.Create)
			quizzes.PATCH("/:id", guardianMw, quizHandler.Update)
			quizzes.DELETE("/:id", guardianMw, quizHandler.Delete)
			quizzes.POST("/generate", guardianMw, quizHandler.Generate)
			quizzes.POST("/:id/attempts/:kidId", quizHandler.Submit)
		}

		notifications := api.Group("/notifications")
		notifications.Use(authMw, guardianMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
