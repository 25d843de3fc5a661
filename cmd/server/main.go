package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/cache"
	"github.com/edu-platform/backend/internal/config"
	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/handlers"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories/postgres"
	"github.com/edu-platform/backend/internal/services"
	"github.com/edu-platform/backend/internal/session"
	"github.com/edu-platform/backend/internal/utils"
	"github.com/edu-platform/backend/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Course{},
		&models.Lesson{},
		&models.Quiz{},
		&models.Question{},
		&models.Attempt{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, slogger)

	bus := events.NewChangeBus(slogger)
	defer bus.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Warn("Event publisher unavailable, falling back to mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer publisher.Close()

	provider := auth.NewCasdoorProvider(cfg.Casdoor, slogger)
	tokens := auth.NewTokenStore(cacheService, cfg.SessionTTL)

	repo := postgres.NewRepository(db, bus)
	resolver := session.NewRoleResolver(repo.Profile(), cacheService, slogger)

	sessionStore := session.NewStore(provider, resolver, slogger)
	defer sessionStore.Close()

	validator := utils.NewValidator()

	content := services.NewContentService(repo, publisher, slogger, validator)
	quizSessions := services.NewQuizSessionService(repo, publisher, slogger)
	defer quizSessions.CloseAll()
	export := services.NewExportService(repo, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(
		provider,
		tokens,
		resolver,
		repo,
		content,
		quizSessions,
		export,
		validator,
		logger,
	)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
