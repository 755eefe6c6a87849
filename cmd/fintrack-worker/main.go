package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting fintrack-worker")

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

	// Without AMQP the worker degrades to the periodic sweep alone.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, running periodic-only", log.FieldError, err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "queue", cfg.AMQPQueue)
		}
	}

	budgetService := services.NewBudgetService(storeResult.Store, storeResult.Store, nil, logger)
	reconcileWorker := worker.NewReconcileWorker(budgetService, logger)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on anything that happened while the worker was down.
	logger.Info("Running startup reconcile sweep")
	if err := reconcileWorker.ReconcilePending(rootCtx); err != nil {
		logger.Error("Startup reconcile failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(rootCtx)

	if amqpClient != nil {
		g.Go(func() error {
			for {
				err := amqpClient.ConsumeLedgerEvents(ctx, reconcileWorker.HandleLedgerEvent)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Warn("Consume loop ended, reconnecting", log.FieldError, err)
				if err := amqpClient.Reconnect(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
			}
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := reconcileWorker.ReconcilePending(ctx); err != nil {
					logger.Error("Periodic reconcile failed", log.FieldError, err)
				}
			}
		}
	})

	logger.Info("Worker running",
		"reconcile_interval", cfg.ReconcileInterval,
		"amqp_enabled", amqpClient != nil)

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
