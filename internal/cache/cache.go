// Package cache holds the in-process LRU used for derived views and the
// manager that sweeps expiring entries out of registered caches and queues.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quattrini/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Size returns the current number of items in the cache
	Size() int
}

// Cleaner is anything holding entries that expire.
type Cleaner interface {
	CleanExpired() int
}

type registered struct {
	name    string
	cleaner Cleaner
}

// Manager periodically sweeps every registered Cleaner.
type Manager struct {
	mu      sync.Mutex
	cleaners []registered
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a cleaner under a name used in logs.
func (m *Manager) Register(name string, c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaners = append(m.cleaners, registered{name: name, cleaner: c})
}

// Sweep runs one cleanup over all cleaners and returns the total removed.
func (m *Manager) Sweep(ctx context.Context) int {
	m.mu.Lock()
	cleaners := append([]registered(nil), m.cleaners...)
	m.mu.Unlock()

	total := 0
	for _, r := range cleaners {
		if n := r.cleaner.CleanExpired(); n > 0 {
			slog.DebugContext(ctx, "Expired entries removed", log.FieldComponent, log.ComponentCache, "cache", r.name, "removed", n)
			total += n
		}
	}
	return total
}

// Run sweeps every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
