// Package worker consumes alerts published by the tracker.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quattrini/internal/amqp"
	"quattrini/internal/cache"
	"quattrini/internal/core"
)

const (
	DefaultDedupSize = 1024
	DefaultDedupTTL  = 24 * time.Hour
)

// Sink receives each alert once.
type Sink interface {
	Deliver(ctx context.Context, a core.Alert) error
}

// AlertWorker relays consumed alerts to a sink. Broker delivery is at least
// once, so ids already delivered within the dedup window are acknowledged
// and skipped.
type AlertWorker struct {
	sink Sink
	seen *cache.LRUCache[struct{}]
}

func NewAlertWorker(sink Sink, dedupSize int, dedupTTL time.Duration) *AlertWorker {
	if dedupSize <= 0 {
		dedupSize = DefaultDedupSize
	}
	if dedupTTL <= 0 {
		dedupTTL = DefaultDedupTTL
	}
	return &AlertWorker{
		sink: sink,
		seen: cache.NewLRUCache[struct{}](dedupSize, dedupTTL),
	}
}

// HandleAlert processes a single alert message from AMQP. A returned error
// asks the broker to requeue the message.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.AlertMessage) error {
	if msg.ID == "" {
		slog.WarnContext(ctx, "Dropping alert without id", "type", msg.Kind)
		return nil
	}
	if _, dup := w.seen.Get(msg.ID); dup {
		slog.DebugContext(ctx, "Skipping redelivered alert", "alert_id", msg.ID)
		return nil
	}

	if err := w.sink.Deliver(ctx, msg.Alert()); err != nil {
		return fmt.Errorf("deliver alert %s: %w", msg.ID, err)
	}
	w.seen.Set(msg.ID, struct{}{})
	return nil
}

// Seen exposes the dedup window so it can be swept with other caches.
func (w *AlertWorker) Seen() cache.Cleaner {
	return w.seen
}

// LogSink writes alerts to the structured log, errors at error level.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Deliver(ctx context.Context, a core.Alert) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch a.Kind {
	case core.SeverityWarning:
		level = slog.LevelWarn
	case core.SeverityError:
		level = slog.LevelError
	}
	logger.Log(ctx, level, a.Message, "alert_id", a.ID, "type", a.Kind)
	return nil
}
