package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XyloTech/GOVERN.AI/config"
	"github.com/XyloTech/GOVERN.AI/handler"
	"github.com/XyloTech/GOVERN.AI/job"
	"github.com/XyloTech/GOVERN.AI/middleware"
	"github.com/XyloTech/GOVERN.AI/pkg/logger"
	"github.com/XyloTech/GOVERN.AI/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize database
	db, err := service.InitDB(&cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Initialize file storage
	files, err := service.NewFileStore(&cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize file storage", "error", err)
		os.Exit(1)
	}
	if minioStore, ok := files.(*service.MinioStore); ok {
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure MINIO bucket", "error", err)
			os.Exit(1)
		}
	}

	// Initialize services
	gemini := service.NewGeminiClient(&cfg.Gemini)
	if !gemini.Configured() {
		slog.Warn("Gemini API key not set, using heuristic extraction only")
	}
	extractor := service.NewAIExtractor(gemini, service.NewHeuristicExtractor())

	repo := service.NewContractRepo(db)
	contracts := service.NewContractService(repo, files, service.NewDocumentService(), extractor)
	copilot := service.NewCopilotService(repo, gemini)
	reports := service.NewReportService(db, repo, gemini)

	// Start the contract lifecycle sweep
	sweeper := job.NewLifecycleSweeper(repo)
	if err := sweeper.Start(); err != nil {
		slog.Error("failed to start lifecycle sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(contracts, repo, files)
	copilotHandler := handler.NewCopilotHandler(copilot)
	reportHandler := handler.NewReportHandler(reports)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(cfg.Server.RateLimitPerMin, time.Minute)) // Per-IP rate limiting

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/contracts/upload", contractHandler.Upload)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.DELETE("/contracts/:id", contractHandler.Delete)
		protected.GET("/contracts/:id/download", contractHandler.Download)

		protected.POST("/copilot/query", copilotHandler.Query)

		protected.POST("/reports", reportHandler.Generate)
		protected.GET("/reports", reportHandler.List)
		protected.GET("/reports/:id", reportHandler.Get)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
