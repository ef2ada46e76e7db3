package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quattrini/internal/alerts"
	"quattrini/internal/backend"
	"quattrini/internal/config"
	"quattrini/internal/log"
	"quattrini/internal/tracker"
)

// recurring-worker runs one materialization pass against the configured
// store and exits. Schedule it with cron or a systemd timer.
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

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Recurring pass failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// Each run starts with an empty fired set, so forwarding would repeat
	// every near or exceeded alert the server already published. The
	// server's daily pass owns publishing.
	bcfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentStorage).Logger).Create(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", "error", err)
		}
	}()

	queue := alerts.NewQueue(cfg.AlertTTL)
	engine := alerts.NewEngine(queue)

	tr := tracker.New(res.Store, engine, queue, tracker.WithDefaultCurrency(cfg.DefaultCurrency))
	if err := tr.Load(ctx); err != nil {
		return err
	}

	previous := tr.Checkpoint()
	created, err := tr.StartSession(ctx)
	if err != nil {
		return err
	}

	logger.Info("Recurring pass complete",
		log.FieldOperation, log.OpMaterialize,
		"created", len(created),
		"previous_checkpoint", formatCheckpoint(previous),
		"checkpoint", formatCheckpoint(tr.Checkpoint()),
		"alerts", queue.Len())
	return nil
}

func formatCheckpoint(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}
