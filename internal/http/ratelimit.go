package http

import (
	"sync"
	"time"
)

// DefaultRateLimit is how many mutating requests one client may send per window.
const DefaultRateLimit = 60

const (
	rateWindow     = time.Minute
	rateSweepEvery = 5 * time.Minute
	rateStaleAfter = 10 * time.Minute
)

// rateLimiter is a fixed-window counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*clientWindow
	limit    int
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	start    time.Time
	requests int
}

func newRateLimiter(limit int, now func() time.Time) *rateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if now == nil {
		now = time.Now
	}
	rl := &rateLimiter{
		windows: make(map[string]*clientWindow),
		limit:   limit,
		now:     now,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(rateSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.done:
			return
		}
	}
}

// cleanupStaleEntries forgets clients whose window opened long ago.
func (rl *rateLimiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rateStaleAfter)
	removed := 0
	for ip, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, ip)
			removed++
		}
	}
	return removed
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow counts one request for clientIP. When the budget is spent it
// returns false and how long until the current window closes.
func (rl *rateLimiter) allow(clientIP string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.start) >= rateWindow {
		rl.windows[clientIP] = &clientWindow{start: now, requests: 1}
		return true, 0
	}

	w.requests++
	if w.requests > rl.limit {
		securityEvents.WithLabelValues("rate_limited").Inc()
		return false, w.start.Add(rateWindow).Sub(now)
	}
	return true, 0
}
