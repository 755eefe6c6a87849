package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting fintrack server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	storeResult, err := factory.CreateStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", log.FieldError, err)
		os.Exit(1)
	}
	defer storeResult.Cleanup()

	// AMQP is optional; without it mutations simply emit no events.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	dashboards, dashCleanup, err := backend.NewCache[services.Dashboard](cfg, "dashboard")
	if err != nil {
		logger.Error("Failed to initialize dashboard cache", log.FieldError, err)
		os.Exit(1)
	}
	if dashCleanup != nil {
		defer dashCleanup()
	}
	reports, reportCleanup, err := backend.NewCache[services.Report](cfg, "report")
	if err != nil {
		logger.Error("Failed to initialize report cache", log.FieldError, err)
		os.Exit(1)
	}
	if reportCleanup != nil {
		defer reportCleanup()
	}

	// In-process caches need a periodic expiry sweep.
	cacheManager := cache.NewManager()
	for _, c := range []any{dashboards, reports} {
		if cleaner, ok := c.(cache.Cleaner); ok {
			cacheManager.Register(cleaner)
		}
	}
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	txService := services.NewTransactionService(storeResult.Store, publisher, logger)
	budgetService := services.NewBudgetService(storeResult.Store, storeResult.Store, publisher, logger)
	reportService := services.NewReportService(txService, dashboards, reports, logger)

	srv := apphttp.NewServer(":"+cfg.Port, txService, budgetService, reportService, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting HTTP server",
		"port", cfg.Port,
		"data_backend", cfg.DataBackend,
		"cache_backend", cfg.CacheBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
