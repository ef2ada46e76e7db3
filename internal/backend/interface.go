package backend

import (
	"context"

	"quattrini/internal/alerts"
	"quattrini/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result bundles the store with the optional alert notifier.
type Result struct {
	Store storage.Store
	// Notifier is nil when alert publishing is disabled or unavailable.
	Notifier alerts.Notifier
	// Ready pings the store for /readyz; nil when there is nothing to check.
	Ready   func(context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; an empty path starts empty
	MemorySeedFile string

	// Alert publishing; empty URL disables it
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
