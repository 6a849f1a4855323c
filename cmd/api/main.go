package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"audiogw/internal/config"
	"audiogw/internal/httpapi"
	"audiogw/internal/observability/metrics"
	"audiogw/internal/pkg/logger"
	"audiogw/internal/pkg/shutdown"
	"audiogw/internal/roex"
)

func main() {
	// Load .env if present; deployed environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Configuration failed before the real logger could be built
		boot := logger.New(logger.Config{
			Level:       "info",
			Format:      "json",
			ServiceName: "audiogw",
		})
		boot.LogFatal("invalid configuration", err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "audiogw",
		AddSource:   cfg.LogSource,
	})

	log.Info("starting audio gateway",
		"version", "0.1.0",
		"provider_base_url", cfg.Roex.BaseURL,
	)

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, cfg.ShutdownTimeout)

	// Metrics collector, exposed on /metrics
	collector := metrics.NewCollector(metrics.Namespace)

	// Shared provider client; one per process, reused across requests
	client := roex.NewClient(roex.Config{
		BaseURL: cfg.Roex.BaseURL,
		APIKey:  cfg.Roex.APIKey,
		Timeout: cfg.Roex.Timeout,
	}, log.WithComponent("roex"))

	// Create HTTP router
	router := httpapi.NewRouter(httpapi.Deps{
		Roex:           client,
		Log:            log,
		Metrics:        collector,
		AllowedOrigins: cfg.CORSOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Register server shutdown
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.HTTPPort,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}
