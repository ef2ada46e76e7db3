package alerts

import (
	"sync"
	"time"

	"quattrini/internal/core"
)

// DefaultTTL is how long an alert stays visible unless dismissed.
const DefaultTTL = 7 * time.Second

type queued struct {
	alert     core.Alert
	expiresAt time.Time
}

// Queue is the live, order-preserving list of alerts on display. Entries
// retire after a fixed lifetime or when dismissed, whichever comes first.
type Queue struct {
	mu    sync.Mutex
	items []queued
	ttl   time.Duration
	now   func() time.Time
}

type QueueOption func(*Queue)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// NewQueue creates a queue. A non-positive ttl uses DefaultTTL.
func NewQueue(ttl time.Duration, opts ...QueueOption) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	q := &Queue{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends alerts in order.
func (q *Queue) Push(alerts ...core.Alert) {
	if len(alerts) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	expiresAt := q.now().Add(q.ttl)
	for _, a := range alerts {
		q.items = append(q.items, queued{alert: a, expiresAt: expiresAt})
	}
	queueLength.Set(float64(len(q.items)))
}

// List returns the alerts still alive, oldest first.
func (q *Queue) List() []core.Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	out := make([]core.Alert, 0, len(q.items))
	for _, it := range q.items {
		if now.Before(it.expiresAt) {
			out = append(out, it.alert)
		}
	}
	return out
}

// Dismiss removes the alert with id. Unknown or already retired ids are ignored.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.alert.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			alertsRetired.WithLabelValues("dismissed").Inc()
			queueLength.Set(float64(len(q.items)))
			return true
		}
	}
	return false
}

// CleanExpired drops alerts past their lifetime and returns how many went.
// It satisfies cache.Cleaner so the cache manager can sweep the queue.
func (q *Queue) CleanExpired() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.items[:0]
	for _, it := range q.items {
		if now.Before(it.expiresAt) {
			kept = append(kept, it)
		}
	}
	removed := len(q.items) - len(kept)
	clear(q.items[len(kept):])
	q.items = kept
	if removed > 0 {
		alertsRetired.WithLabelValues("expired").Add(float64(removed))
		queueLength.Set(float64(len(q.items)))
	}
	return removed
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	queueLength.Set(0)
}

// Len counts queued alerts, including expired ones not yet swept.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
