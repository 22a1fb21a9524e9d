// @title           ListingLens Backend API
// @version         1.0.0
// @description     Backend API for real-estate listing media: AI photo enhancement, slideshow video generation, and Stripe billing.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/billing"
	"listinglens-backend/internal/config"
	"listinglens-backend/internal/database"
	"listinglens-backend/internal/gateway"
	"listinglens-backend/internal/handlers"
	"listinglens-backend/internal/middleware"
	"listinglens-backend/internal/provider/autoenhance"
	"listinglens-backend/internal/provider/imagen"
	"listinglens-backend/internal/queue"
	"listinglens-backend/internal/storage"
	"listinglens-backend/internal/video"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	// Run migrations before anything touches the schema.
	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize migrator")
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		logger.Fatal().Err(err).Msg("migration failed")
	}
	migrator.Close()

	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database client")
	}
	defer dbClient.Close()

	storageClient, err := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage client")
	}

	// Primary provider first; the gateway tries them in order.
	imagenClient := imagen.NewClient(cfg.ImagenAPIBaseURL, cfg.ImagenAPIKey)
	autoenhanceClient := autoenhance.NewClient(cfg.AutoenhanceBaseURL, cfg.AutoenhanceAPIKey)
	enhanceGateway := gateway.New(logger, dbClient, imagenClient, autoenhanceClient)

	var enqueuer queue.Enqueuer
	if cfg.RedisAddr != "" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		enqueuer = queue.NewAsynqEnqueuer(redisOpt, logger)

		worker := queue.NewWorker(redisOpt, cfg.WorkerConcurrency, dbClient, enhanceGateway, storageClient, logger)
		worker.Start()
		defer worker.Shutdown()
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, video generation tasks will not be processed")
		enqueuer = queue.NewNoopEnqueuer()
	}

	videoService := video.NewService(dbClient, storageClient, enqueuer, logger)

	stripeClient := billing.NewStripeClient(cfg.StripeAPIKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	billingService := billing.NewService(dbClient, stripeClient, logger)

	enhanceHandler := handlers.NewEnhanceHandler(dbClient, storageClient, enhanceGateway, logger)
	videosHandler := handlers.NewVideosHandler(videoService, logger)
	checkoutHandler := handlers.NewCheckoutHandler(billingService, logger)
	webhookHandler := handlers.NewStripeWebhookHandler(billingService, cfg.StripeWebhookSecret, logger)

	router := gin.Default()

	router.GET("/health", handlers.HealthHandler)

	// Stripe calls the webhook directly, so it skips auth. Signature
	// verification stands in for it.
	router.POST("/api/stripe/webhook", webhookHandler.HandleWebhook)

	authenticated := router.Group("/api", middleware.AuthMiddleware(cfg))
	{
		authenticated.POST("/stripe/create-checkout", checkoutHandler.CreateCheckout)

		v1 := authenticated.Group("/v1")
		{
			v1.POST("/enhance", enhanceHandler.Enhance)
			v1.POST("/videos", videosHandler.CreateVideo)
			v1.GET("/videos/:video_id", videosHandler.GetVideo)
			v1.GET("/videos/:video_id/status", videosHandler.GetVideoStatus)
			v1.PUT("/videos/:video_id/clips/order", videosHandler.ReorderClips)
			v1.PATCH("/videos/:video_id/clips/:clip_id", videosHandler.UpdateClip)
			v1.DELETE("/videos/:video_id", videosHandler.DeleteVideo)
		}
	}

	logger.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("starting server")
	if err := router.Run(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
