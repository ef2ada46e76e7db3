package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"quattrini/internal/cache"
	"quattrini/internal/log"
	"quattrini/internal/tracker"
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 30 * time.Second
)

// Options configures NewServer. Zero values select defaults.
type Options struct {
	// RateLimit is the per-client budget of mutating requests per minute.
	RateLimit int
	// Views caches encoded derived views. When nil a private cache of
	// CacheSize entries living CacheTTL is created.
	Views     *cache.LRUCache[[]byte]
	CacheSize int
	CacheTTL  time.Duration
	// Ready is checked by /readyz, typically the store's Ping.
	Ready  func(context.Context) error
	Logger *log.Logger
	Now    func() time.Time
}

// Server is the JSON API over a tracker.
type Server struct {
	http.Server
	tracker     *tracker.Tracker
	router      chi.Router
	rateLimiter *rateLimiter
	views       *cache.LRUCache[[]byte]
	ready       func(context.Context) error
	logger      *log.Logger
	access      *log.StructuredLogger
	now         func() time.Time
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, tr *tracker.Tracker, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Views == nil {
		size, ttl := opts.CacheSize, opts.CacheTTL
		if size <= 0 {
			size = defaultCacheSize
		}
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		opts.Views = cache.NewLRUCache[[]byte](size, ttl)
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		tracker:     tr,
		rateLimiter: newRateLimiter(opts.RateLimit, opts.Now),
		views:       opts.Views,
		ready:       opts.Ready,
		logger:      logger,
		access:      log.NewStructuredLogger(logger),
		now:         opts.Now,
		started:     opts.Now(),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware(logger))
	r.Use(s.withRequestID)
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string { return r.Header.Get("X-Request-ID") }))
	r.Use(metricsMiddleware)
	r.Use(s.withAccessLog)
	r.Use(withSecurityHeaders)
	r.Use(s.withRateLimit)
	s.router = r
	s.routes()

	s.Server = http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler exposes the configured router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := s.router
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Get("/tags", s.handleListTags)
		r.Post("/tags", s.handleCreateTag)
		r.Delete("/tags/{tag}", s.handleDeleteTag)

		r.Route("/categories/{kind}", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Delete("/{name}", s.handleDeleteCategory)
			r.Put("/{name}/icon", s.handleSetCategoryIcon)
			r.Put("/{name}/color", s.handleSetCategoryColor)
		})

		r.Route("/people", func(r chi.Router) {
			r.Get("/", s.handleListPeople)
			r.Post("/", s.handleCreatePerson)
			r.Put("/{id}", s.handleUpdatePerson)
			r.Delete("/{id}", s.handleDeletePerson)
			r.Post("/{id}/settle", s.handleSettleUp)
		})
		r.Get("/balances", s.handleBalances)

		r.Get("/goals", s.handleListGoals)
		r.Post("/goals", s.handleSaveGoal)
		r.Delete("/goals/{id}", s.handleDeleteGoal)
		r.Get("/budget", s.handleBudgetReport)
		r.Get("/summary", s.handleSummary)

		r.Get("/subscriptions", s.handleSubscriptions)
		r.Get("/subscriptions/upcoming", s.handleUpcomingSubscriptions)
		r.Post("/subscriptions/{id}/cancel", s.handleCancelSubscription)

		r.Get("/alerts", s.handleListAlerts)
		r.Delete("/alerts/{id}", s.handleDismissAlert)

		r.Get("/currency", s.handleGetCurrency)
		r.Put("/currency", s.handleSetCurrency)

		r.Post("/session", s.handleStartSession)
		r.Post("/reset", s.handleReset)
	})
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.InfoContext(ctx, "HTTP server stopped",
			log.FieldOperation, log.OpShutdown,
			"cached_views", s.views.Size())
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"store": "ok"}
	status, code := "ready", http.StatusOK
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	stats := s.views.Stats()
	NewJSONResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"checks":    checks,
		"version":   s.tracker.Version(),
		"viewCache": stats,
	}).Write(w)
}
