package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shihabhq/democracy-server/internal/certificate"
	"github.com/shihabhq/democracy-server/internal/config"
	"github.com/shihabhq/democracy-server/internal/database"
	"github.com/shihabhq/democracy-server/internal/handlers"
	"github.com/shihabhq/democracy-server/internal/middleware"
	"github.com/shihabhq/democracy-server/internal/services"
	"github.com/shihabhq/democracy-server/internal/storage"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	// Remote certificate storage is decided once here; everything
	// downstream branches on the mode, never on the environment.
	var storeMode storage.Mode
	ossCfg := storage.Config{
		Endpoint:        cfg.OSSEndpoint,
		AccessKeyID:     cfg.OSSAccessKeyID,
		AccessKeySecret: cfg.OSSAccessKeySecret,
		Bucket:          cfg.OSSBucket,
	}
	if ossCfg.Complete() {
		store, err := storage.New(ossCfg)
		if err != nil {
			log.Fatalf("failed to init certificate storage: %v", err)
		}
		storeMode = storage.Mode{Uploader: store}
		log.Printf("certificate storage: bucket %s", cfg.OSSBucket)
	} else {
		log.Printf("certificate storage not configured, writing to %s", cfg.CertificatesDir)
	}

	var templateSource certificate.TemplateSource
	if cfg.TemplatePath != "" {
		templateSource = &certificate.FileTemplateSource{Path: cfg.TemplatePath}
	} else {
		templateSource = &certificate.HTTPTemplateSource{
			URL:    cfg.TemplateURL,
			Client: &http.Client{Timeout: 15 * time.Second},
		}
	}
	renderer := certificate.NewRenderer(templateSource)

	store := services.NewStore(db)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	questionService := services.NewQuestionService(db)
	scoringService := services.NewScoringService(store)
	attemptService := services.NewAttemptService(store, scoringService)
	certService := services.NewCertificateService(store, renderer, storeMode, cfg.CertificatesDir)
	analyticsService := services.NewAnalyticsService(db)

	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(questionService, attemptService)
	certHandler := handlers.NewCertificateHandler(certService)
	adminHandler := handlers.NewAdminHandler(questionService, attemptService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "server is running"})
	})

	api := r.Group("/api")
	{
		quiz := api.Group("/quiz")
		{
			quiz.GET("/questions", quizHandler.GetQuestions)
			quiz.POST("/attempt", quizHandler.SubmitAttempt)
			quiz.GET("/attempt/:id", quizHandler.GetAttempt)
		}

		api.GET("/certificate/:attemptId", certHandler.Get)

		auth := api.Group("/admin/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(authService))
		{
			admin.GET("/attempts", adminHandler.ListAttempts)
			admin.GET("/questions", adminHandler.ListQuestions)
			admin.POST("/questions", adminHandler.CreateQuestion)
			admin.PUT("/questions/:id", adminHandler.UpdateQuestion)
			admin.DELETE("/questions/:id", adminHandler.DeleteQuestion)
		}

		api.GET("/analytics", middleware.JWTAuth(authService), analyticsHandler.Get)
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
