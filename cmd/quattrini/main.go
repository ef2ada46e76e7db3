package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"quattrini/internal/alerts"
	"quattrini/internal/backend"
	"quattrini/internal/cache"
	"quattrini/internal/config"
	apphttp "quattrini/internal/http"
	"quattrini/internal/log"
	"quattrini/internal/tracker"
)

// dayCheckInterval bounds how late after midnight the renewal alerts of the
// new day are raised.
const dayCheckInterval = time.Minute

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		JSON:      cfg.LogFormat == "json",
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
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
	var engineOpts []alerts.Option
	if res.Notifier != nil {
		engineOpts = append(engineOpts, alerts.WithNotifier(res.Notifier))
	}
	engine := alerts.NewEngine(queue, engineOpts...)

	tr := tracker.New(res.Store, engine, queue, tracker.WithDefaultCurrency(cfg.DefaultCurrency))
	if err := tr.Load(ctx); err != nil {
		return fmt.Errorf("load tracker: %w", err)
	}
	created, err := tr.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	logger.Info("Session started",
		log.FieldOperation, log.OpMaterialize,
		"created", len(created),
		"checkpoint", tr.Checkpoint().Format(time.RFC3339))

	views := cache.NewLRUCache[[]byte](cfg.CacheSize, cfg.CacheTTL)
	sweeper := cache.NewManager()
	sweeper.Register("alerts", queue)
	sweeper.Register("views", views)

	srv := apphttp.NewServer(":"+cfg.Port, tr, apphttp.Options{
		Views:  views,
		Ready:  res.Ready,
		Logger: logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting quattrini server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"alerts_published", res.Notifier != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(gctx, cfg.AlertSweepInterval)
	})

	g.Go(func() error {
		return reevaluateDaily(gctx, tr, logger)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// reevaluateDaily runs an alert pass whenever the date changes so renewal
// warnings fire even when nothing is written that day.
func reevaluateDaily(ctx context.Context, tr *tracker.Tracker, logger *log.Logger) error {
	ticker := time.NewTicker(dayCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if tr.ReevaluateIfNewDay(ctx) {
				logger.WithComponent(log.ComponentAlerts).Info("Daily alert pass complete",
					"alerts", len(tr.Alerts()))
			}
		}
	}
}
