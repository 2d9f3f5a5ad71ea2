package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/identity-ocr-api/internal/analyzer"
	"github.com/BerylCAtieno/identity-ocr-api/internal/config"
	"github.com/BerylCAtieno/identity-ocr-api/internal/router"
	"github.com/BerylCAtieno/identity-ocr-api/internal/services"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Model client. Deadlines come from the per-request context.
	model := analyzer.NewGeminiAnalyzer(analyzer.GeminiConfig{
		APIKey:           cfg.GeminiAPIKey,
		Model:            cfg.GeminiModel,
		BaseURL:          cfg.GeminiBaseURL,
		StructuredOutput: cfg.StructuredOutput,
	}, &http.Client{}, logger)

	ocrService := services.NewService(model, services.Options{
		ModelTimeout: cfg.ModelTimeout,
		StrictFields: cfg.StrictFields,
	}, logger)

	// Setup HTTP router
	handler := router.NewRouter(ocrService, router.Options{
		MaxRequestBytes:  cfg.MaxRequestBytes,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ModelTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "model", cfg.GeminiModel, "model_timeout", cfg.ModelTimeout.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
