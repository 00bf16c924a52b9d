package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/haimtran/sdq-assistant/config"
	"github.com/haimtran/sdq-assistant/database"
	_ "github.com/haimtran/sdq-assistant/docs" // Swagger docs - auto-generated
	"github.com/haimtran/sdq-assistant/internal/controller"
	"github.com/haimtran/sdq-assistant/internal/logger"
	"github.com/haimtran/sdq-assistant/internal/model"
	"github.com/haimtran/sdq-assistant/internal/repository"
	"github.com/haimtran/sdq-assistant/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title SDQ Conversational Assessment API
// @version 1.0
// @description Conversational administration of the SDQ behavioral questionnaire across child, parent and teacher respondents, with combined psychologist review.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewChildRepository,
			repository.NewTestInstanceRepository,
			repository.NewAnswerRepository,
			repository.NewFingerprintRepository,
			repository.NewReviewRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewGeminiLLMService,
			service.NewScoringService,
			service.NewFingerprintService,
			service.NewDialogueService,
			service.NewSubmissionService,
			service.NewReviewService,
			service.NewChildService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewChatController,
			controller.NewTestController,
			controller.NewReviewController,
			controller.NewChildController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Route gin's request log through zerolog.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	chatCtrl *controller.ChatController,
	testCtrl *controller.TestController,
	reviewCtrl *controller.ReviewController,
	childCtrl *controller.ChildController,
) {
	api := router.Group("/api/v1")
	{
		childrenGroup := api.Group("/children")
		childrenGroup.POST("", childCtrl.RegisterChild)
		childrenGroup.PUT("/:child_id", childCtrl.UpdateChild)
		childrenGroup.POST("/login", childCtrl.Login)
		childrenGroup.GET("/:child_id/status", testCtrl.GetStatus)

		chatGroup := api.Group("/chat")
		chatGroup.POST("/start", chatCtrl.StartChat)
		chatGroup.POST("/respond", chatCtrl.Respond)
		chatGroup.POST("/confirm", chatCtrl.ConfirmOption)

		testsGroup := api.Group("/tests")
		testsGroup.POST("/submit", testCtrl.SubmitTest)
		testsGroup.GET("/:test_id/score", testCtrl.GetScore)
		testsGroup.GET("/:test_id/history", testCtrl.GetHistory)

		reviewsGroup := api.Group("/reviews")
		reviewsGroup.GET("/pending", reviewCtrl.PendingReviews)
		reviewsGroup.GET("/completed", reviewCtrl.CompletedReviews)
		reviewsGroup.GET("/:child_id", reviewCtrl.FullReview)
		reviewsGroup.GET("/:child_id/final", reviewCtrl.FinalReview)
		reviewsGroup.POST("/submit", reviewCtrl.SubmitReview)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("SDQ assessment API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Child{},
		&model.TestInstance{},
		&model.AnswerRecord{},
		&model.UtteranceFingerprint{},
		&model.ReviewAggregate{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
