package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentTracker, JSON: true, Output: &buf})

	l.Info("hello", FieldCategory, "Groceries")
	l.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec["component"] != ComponentTracker || rec[FieldCategory] != "Groceries" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestLogFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithEntity("people", "p1").
		WithTransaction("t1", "12.50", "$", "Health").
		WithError(nil).
		WithError(errors.New("boom")).
		WithErrorType(ErrorTypeInternal)

	if f[FieldEntityID] != "p1" || f[FieldAmount] != "12.50" || f[FieldError] != "boom" || f[FieldErrorType] != ErrorTypeInternal {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice length mismatch")
	}
	if _, ok := NewFields().WithEntity("tags", "")[FieldEntityID]; ok {
		t.Fatal("empty id must be omitted")
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf})

	var got *Logger
	h := Middleware(base)(ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("component = %v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("missing logger should fall back to default")
	}
}

func TestStructuredLoggerUsesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentApp, JSON: true, Output: &buf})
	sl := NewStructuredLogger(base)

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sl.LogMutation(r.Context(), OpCreate, "people", "p1")
	})
	h = RequestIDMiddleware(func(*http.Request) string { return "req_1" })(h)
	h = Middleware(base)(h)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/people", nil))

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, `"component"`) != 1 {
		t.Fatalf("component must appear once: %s", line)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec[FieldComponent] != ComponentTracker || rec[FieldRequestID] != "req_1" || rec[FieldEntityID] != "p1" {
		t.Fatalf("unexpected record: %v", rec)
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("disk"), ComponentStorage, OpUpdate, nil)
	if !strings.Contains(buf.String(), `"component":"storage"`) || strings.Contains(buf.String(), FieldRequestID) {
		t.Fatalf("unexpected fallback record: %s", buf.String())
	}
}
