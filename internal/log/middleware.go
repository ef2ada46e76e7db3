package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or one over slog.Default
// tagged "unknown" when ctx has none.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return newLogger(slog.Default(), "unknown")
}

func fromContextOr(ctx context.Context, fallback *Logger) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return fallback
}

// enrich derives a new request logger from the one already in the context.
func enrich(derive func(*Logger, *http.Request) *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := derive(FromContext(r.Context()), r)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// Middleware seeds every request context with logger.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return enrich(func(*Logger, *http.Request) *Logger { return logger })
}

// ComponentMiddleware retags the request logger, e.g. for a mounted sub-router.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return enrich(func(l *Logger, _ *http.Request) *Logger { return l.WithComponent(component) })
}

// RequestIDMiddleware adds the id returned by extractRequestID to every
// record logged for the request.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return enrich(func(l *Logger, r *http.Request) *Logger {
		return l.With(FieldRequestID, extractRequestID(r))
	})
}

// StructuredLogger writes the access, mutation and failure records of the
// HTTP layer. It prefers the request logger so records keep the request id.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a finished request at info, warn for 4xx or error for 5xx.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, route string, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, route, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	fromContextOr(ctx, sl.logger).WithComponent(ComponentHTTP).
		Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogMutation logs a successful change to one of the tracker collections.
func (sl *StructuredLogger) LogMutation(ctx context.Context, operation, entity, id string) {
	fields := NewFields().
		WithEntity(entity, id).
		WithOperation(operation)

	fromContextOr(ctx, sl.logger).WithComponent(ComponentTracker).
		InfoContext(ctx, "Collection updated", fields.ToSlice()...)
}

// LogError logs err under component with any extra fields.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.
		WithError(err).
		WithOperation(operation)

	fromContextOr(ctx, sl.logger).WithComponent(component).
		ErrorContext(ctx, msg, fields.ToSlice()...)
}
