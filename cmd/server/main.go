package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medisight/medisight-go/internal/api"
	"github.com/medisight/medisight-go/internal/api/handlers"
	"github.com/medisight/medisight-go/internal/cache"
	"github.com/medisight/medisight-go/internal/config"
	"github.com/medisight/medisight-go/internal/database"
	"github.com/medisight/medisight-go/internal/logging"
	"github.com/medisight/medisight-go/internal/middleware"
	"github.com/medisight/medisight-go/internal/services"
	"github.com/medisight/medisight-go/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Initialize tracing
	shutdownTracing, err := telemetry.InitTracing(cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.WithError(err).Warn("Failed to shut down tracing")
		}
	}()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	// Repositories share one traced pool so every statement shows up as a span
	pool := database.NewTracedPool(db.Pool)
	catalogRepo := database.NewCatalogRepository(pool)
	historyRepo := database.NewHistoryRepository(pool)
	interactionRepo := database.NewInteractionRepository(pool)
	financeRepo := database.NewFinanceRepository(pool)
	inventoryRepo := database.NewInventoryRepository(pool, cfg.Forecast.StockoutHistoryDays)
	clinicianRepo := database.NewClinicianRepository(pool)

	// Suggestion cache TTL is validated during config load
	cacheTTL, err := time.ParseDuration(cfg.Diagnosis.CacheTTL)
	if err != nil {
		logger.WithError(err).Fatal("Invalid diagnosis cache TTL")
	}
	suggestionCache := cache.NewRedisSuggestionCache(redis.Client, cacheTTL, logger)

	// Services
	diagnosisService := services.NewDiagnosisService(cfg, catalogRepo, historyRepo, interactionRepo, suggestionCache, logger)
	forecastService := services.NewForecastService(cfg, financeRepo, inventoryRepo, logger)
	notificationService := services.NewNotificationService(cfg, logger)

	// HTTP layer
	tokenTTL, err := time.ParseDuration(cfg.Security.JWTExpiry)
	if err != nil {
		logger.WithError(err).Fatal("Invalid JWT expiry")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JWTSecret)

	healthHandler := handlers.NewHealthHandler(db, redis)
	authHandler := handlers.NewAuthHandler(clinicianRepo, authMiddleware, tokenTTL, logger)
	diagnosisHandler := handlers.NewDiagnosisHandler(diagnosisService, logger)
	forecastHandler := handlers.NewForecastHandler(forecastService, notificationService, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, healthHandler, authHandler, diagnosisHandler, forecastHandler, authMiddleware)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
