package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"quattrini/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	for attempt, d := range want {
		if got := exponentialBackoff(attempt); got != d {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, d)
		}
	}
	for _, attempt := range []int{5, 10, 40} {
		if got := exponentialBackoff(attempt); got != 30*time.Second {
			t.Errorf("exponentialBackoff(%d) = %v, want the 30s cap", attempt, got)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := map[string]bool{
		"connection refused":               true,
		"connection closed":                true,
		"unexpected EOF":                   true,
		"broken pipe":                      true,
		"use of closed network connection": true,
		"invalid alert payload":            false,
		"some other error":                 false,
	}
	for msg, want := range tests {
		if got := isConnectionError(errors.New(msg)); got != want {
			t.Errorf("isConnectionError(%q) = %v, want %v", msg, got, want)
		}
	}
	if isConnectionError(nil) {
		t.Error("nil is not a connection error")
	}
}

func circuitState(c *Client) int32 { return atomic.LoadInt32(&c.state) }

func TestClient_CircuitBreakerLifecycle(t *testing.T) {
	c := &Client{exchangeName: "quattrini", queueName: "alerts"}

	if c.isCircuitOpen() {
		t.Fatal("a new client must start closed")
	}

	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("circuit opened after %d failures, threshold is %d", maxFailures-1, maxFailures)
	}
	c.recordFailure()
	if !c.isCircuitOpen() || circuitState(c) != StateOpen {
		t.Fatal("circuit must open at the failure threshold")
	}

	// Still inside the open timeout.
	if !c.isCircuitOpen() {
		t.Fatal("circuit must stay open within the timeout")
	}

	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() || circuitState(c) != StateHalfOpen {
		t.Fatalf("expected half-open after the timeout, state = %d", circuitState(c))
	}

	c.recordFailure()
	if circuitState(c) != StateOpen {
		t.Fatal("a failure while half-open must reopen the circuit")
	}

	c.recordSuccess()
	if circuitState(c) != StateClosed || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("success must close the circuit and reset the failure count")
	}
}

func TestClient_PublishAlertShortCircuits(t *testing.T) {
	alert := core.Alert{ID: "g1-near", Kind: core.SeverityWarning, Message: "You've spent $460.00 (92%)"}

	open := &Client{}
	atomic.StoreInt32(&open.state, StateOpen)
	open.lastFailure = time.Now()
	if err := open.PublishAlert(context.Background(), alert); !errors.Is(err, errCircuitOpen) {
		t.Fatalf("PublishAlert with open circuit = %v, want errCircuitOpen", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&Client{}).Notify(ctx, alert); !errors.Is(err, context.Canceled) {
		t.Fatalf("Notify with cancelled context = %v, want context.Canceled", err)
	}
}

func TestNewAlertMessage(t *testing.T) {
	a := core.Alert{ID: "a1", Kind: core.SeverityError, Message: "exceeded"}

	msg := NewAlertMessage(a)

	if msg.ID != a.ID || msg.Kind != a.Kind || msg.Message != a.Message {
		t.Errorf("NewAlertMessage() = %+v", msg)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Error("NewAlertMessage() Timestamp should be recent")
	}
	if msg.Alert() != a {
		t.Errorf("Alert() = %+v, want %+v", msg.Alert(), a)
	}
}

func TestAlertMessage_JSON(t *testing.T) {
	msg := &AlertMessage{
		ID:        "a1",
		Kind:      core.SeverityInfo,
		Message:   "renews today",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(jsonBytes), `"type":"info"`) {
		t.Errorf("severity should be encoded as type: %s", jsonBytes)
	}

	parsed, err := AlertMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("AlertMessageFromJSON() error = %v", err)
	}
	if parsed.ID != msg.ID || parsed.Kind != msg.Kind || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
}

func TestAlertMessage_InvalidJSON(t *testing.T) {
	if _, err := AlertMessageFromJSON([]byte(`{"id": 12`)); err == nil {
		t.Error("AlertMessageFromJSON() should fail with invalid JSON")
	}
}
