package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/caseforge/backend/internal/catalog"
	"github.com/caseforge/backend/internal/data"
	"github.com/caseforge/backend/internal/handler"
	"github.com/caseforge/backend/internal/infrastructure"
	"github.com/caseforge/backend/internal/middleware"
	"github.com/caseforge/backend/internal/repository"
	"github.com/caseforge/backend/internal/service"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting CaseForge API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	// Create metrics
	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Load the embedded domain catalog
	domainCatalog, err := catalog.Load()
	if err != nil {
		logger.Error("Failed to load domain catalog", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Seed the starter case library
	seeder := data.NewSeeder(database.DB, logger)
	if err := seeder.SeedProblems(); err != nil {
		logger.Error("Failed to seed problems", zap.Error(err))
		os.Exit(1)
	}

	// Optional Redis cache for leaderboards
	cache, err := infrastructure.NewRedisClient(&config.Redis, logger)
	if err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	problemRepo := repository.NewProblemRepository(database.DB)
	solutionRepo := repository.NewSolutionRepository(database.DB)
	progressRepo := repository.NewProgressRepository(database.DB)

	// Initialize services
	userService := service.NewUserService(userRepo, &config.JWT, config.Admin.Emails, telemetry.Tracer, logger)
	problemService := service.NewProblemService(problemRepo, domainCatalog, telemetry.Tracer, logger)
	progressService := service.NewProgressService(progressRepo, domainCatalog, metrics, telemetry.Tracer, logger)
	solutionService := service.NewSolutionService(solutionRepo, problemRepo, progressService, metrics, telemetry.Tracer, logger)
	statsService := service.NewStatsService(problemRepo, solutionRepo, progressRepo, userRepo, domainCatalog, cache, telemetry.Tracer, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService, progressService)
	problemHandler := handler.NewProblemHandler(problemService)
	solutionHandler := handler.NewSolutionHandler(solutionService)
	domainHandler := handler.NewDomainHandler(domainCatalog, statsService)
	adminHandler := handler.NewAdminHandler(problemService)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	corsConfig := middleware.DefaultCORSConfig()
	if config.Server.Environment == "production" {
		corsConfig = middleware.ProductionCORSConfig(config.Server.CORSOrigins)
	}

	// Add global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(corsConfig))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Problem routes (public)
		problems := api.Group("/problems")
		{
			problems.GET("", problemHandler.GetProblems)
			problems.GET("/:id", problemHandler.GetProblem)
		}

		// Domain catalog and aggregate stats (public)
		domains := api.Group("/domains")
		{
			domains.GET("", domainHandler.GetDomains)
			domains.GET("/:name/stats", domainHandler.GetDomainStats)
			domains.GET("/:name/leaderboard", domainHandler.GetLeaderboard)
		}
		api.GET("/stats", domainHandler.GetPlatformStats)

		// Solution submission accepts anonymous callers
		solutions := api.Group("/solutions")
		{
			solutions.POST("", middleware.OptionalAuthMiddleware(userService), solutionHandler.Submit)
			solutions.GET("/:id", solutionHandler.GetSolution)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(userService))
		{
			protected.GET("/solutions/me", solutionHandler.GetMySolutions)

			users := protected.Group("/users")
			{
				users.GET("/me", userHandler.GetCurrentUser)
				users.GET("/me/progress", userHandler.GetProgress)
			}

			// Admin-only catalog management
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.POST("/problems", adminHandler.CreateProblem)
				admin.PATCH("/problems/:id", adminHandler.UpdateProblem)
				admin.DELETE("/problems/:id", adminHandler.DeleteProblem)
			}
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
