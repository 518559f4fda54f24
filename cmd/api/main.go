package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-thoughts/pkg/validator"

	"github.com/johnquangdev/meeting-thoughts/internal/adapter/handler"
	"github.com/johnquangdev/meeting-thoughts/internal/app"
	httpmw "github.com/johnquangdev/meeting-thoughts/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-thoughts/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Initialize dependencies
	logger.Info("🔧 Initializing dependencies...",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("extractor", cfg.Extractor.Provider),
		zap.Bool("embeddings", cfg.Embedding.Enabled),
		zap.Bool("storage", cfg.Storage.Enabled),
	)
	deps, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// Initialize handlers
	meetingHandler := handler.NewMeetingHandler(deps.MeetingService, deps.ThoughtService, deps.Pipeline, logger)
	thoughtHandler := handler.NewThoughtHandler(deps.ThoughtService, deps.Tags, logger)

	var storageHandler *handler.Storage
	if deps.Storage != nil {
		storageHandler = handler.NewStorageHandler(deps.Storage, logger)
	} else {
		logger.Info("⚠️ Object storage disabled; transcripts are kept inline only")
	}

	tokenMW := httpmw.NewTokenMiddleware(cfg.Server.APIToken, logger)
	if !tokenMW.Enabled() {
		logger.Warn("⚠️ API_TOKEN is empty; the API is unauthenticated")
	}

	// Setup router with handlers
	logger.Info("🛣️ Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler, thoughtHandler, storageHandler, tokenMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}

	// Stop accepting runs and let in-flight ones finish
	if err := deps.Pipeline.Shutdown(ctx); err != nil {
		logger.Error("❌ Processing runs did not drain", zap.Error(err))
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
