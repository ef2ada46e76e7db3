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

	"quattrini/internal/amqp"
	"quattrini/internal/cache"
	"quattrini/internal/config"
	"quattrini/internal/log"
	"quattrini/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
		JSON:      cfg.LogFormat == "json",
	})
	log.SetDefault(logger)

	logger.Info("Starting alert-worker", log.FieldOperation, log.OpStartup)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewAlertWorker(worker.LogSink{Logger: logger.Logger}, worker.DefaultDedupSize, worker.DefaultDedupTTL)
	sweeper := cache.NewManager()
	sweeper.Register("alert-dedup", w.Seen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeAlerts(gctx, func(msg *amqp.AlertMessage) error {
			return w.HandleAlert(gctx, msg)
		})
	})
	g.Go(func() error {
		return sweeper.Run(gctx, time.Minute)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alert consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Alert-worker shutdown complete", log.FieldOperation, log.OpShutdown)
}
