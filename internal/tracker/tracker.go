// Package tracker owns the entity collections and keeps the store, the
// recurring pass and the alert engine in step with every mutation.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quattrini/internal/alerts"
	"quattrini/internal/core"
	"quattrini/internal/services"
	"quattrini/internal/storage"
)

// DefaultCurrency is the active currency when none was ever chosen.
const DefaultCurrency = "$"

type state struct {
	transactions   []core.Transaction
	goals          []core.BudgetGoal
	people         []core.Person
	customExpense  []string
	customIncome   []string
	tags           []string
	categoryIcons  map[string]string
	categoryColors map[string]string
	checkpoint     time.Time
	currency       string
}

func emptyState(currency string) state {
	return state{
		categoryIcons:  map[string]string{},
		categoryColors: map[string]string{},
		currency:       currency,
	}
}

// Tracker serializes every read and write of the collections.
type Tracker struct {
	mu              sync.RWMutex
	store           storage.Store
	st              state
	version         uint64
	dayMu           sync.Mutex
	lastEvaluated   core.Date
	processor       *services.RecurringProcessor
	engine          *alerts.Engine
	queue           *alerts.Queue
	now             func() time.Time
	newID           func() string
	defaultCurrency string
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDs sets the id generator for transactions, people and goals.
func WithIDs(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithDefaultCurrency sets the currency used until one is stored.
func WithDefaultCurrency(c string) Option {
	return func(t *Tracker) {
		if c != "" {
			t.defaultCurrency = c
		}
	}
}

// New creates a tracker over store. engine and queue may be shared with
// other components, such as the cache manager sweeping the queue.
func New(store storage.Store, engine *alerts.Engine, queue *alerts.Queue, opts ...Option) *Tracker {
	t := &Tracker{
		store:           store,
		engine:          engine,
		queue:           queue,
		now:             time.Now,
		newID:           uuid.NewString,
		defaultCurrency: DefaultCurrency,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.processor = services.NewRecurringProcessor(t.newID)
	t.st = emptyState(t.defaultCurrency)
	return t
}

// Load hydrates every collection from the store. Absent keys fall back to
// empty collections and a zero checkpoint.
func (t *Tracker) Load(ctx context.Context) error {
	st := emptyState(t.defaultCurrency)
	var checkpoint string

	for _, f := range []struct {
		key string
		dst any
	}{
		{storage.KeyTransactions, &st.transactions},
		{storage.KeyBudgetGoals, &st.goals},
		{storage.KeyPeople, &st.people},
		{storage.KeyCustomExpenseCategories, &st.customExpense},
		{storage.KeyCustomIncomeCategories, &st.customIncome},
		{storage.KeyTags, &st.tags},
		{storage.KeyCategoryIcons, &st.categoryIcons},
		{storage.KeyCategoryColors, &st.categoryColors},
		{storage.KeyLastRecurringCheck, &checkpoint},
		{storage.KeyFilterCurrency, &st.currency},
	} {
		if _, err := storage.GetJSON(ctx, t.store, f.key, f.dst); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	if st.categoryIcons == nil {
		st.categoryIcons = map[string]string{}
	}
	if st.categoryColors == nil {
		st.categoryColors = map[string]string{}
	}
	if checkpoint != "" {
		cp, err := time.Parse(time.RFC3339, checkpoint)
		if err != nil {
			return fmt.Errorf("load: parse checkpoint %q: %w", checkpoint, err)
		}
		st.checkpoint = cp
	}

	t.mu.Lock()
	t.st = st
	t.version++
	t.mu.Unlock()

	slog.InfoContext(ctx, "Tracker loaded",
		"transactions", len(st.transactions),
		"goals", len(st.goals),
		"people", len(st.people),
		"currency", st.currency)
	return nil
}

// StartSession runs the recurring materialization pass, advances the
// checkpoint and evaluates alerts. It returns the instances created.
func (t *Tracker) StartSession(ctx context.Context) ([]core.Transaction, error) {
	t.mu.Lock()
	res := t.processor.Materialize(ctx, t.st.transactions, t.st.checkpoint, t.now())

	txs := t.st.transactions
	values := map[string]any{
		storage.KeyLastRecurringCheck: res.Checkpoint.UTC().Format(time.RFC3339),
	}
	if len(res.Instances) > 0 {
		txs = append(cloneTransactions(txs), res.Instances...)
		values[storage.KeyTransactions] = txs
	}
	// Instances and checkpoint land together so a crash can neither
	// duplicate nor skip an occurrence.
	if err := storage.PutAllJSON(ctx, t.store, values); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.st.transactions = txs
	t.st.checkpoint = res.Checkpoint
	t.version++
	t.mu.Unlock()

	t.evaluate(ctx)
	return res.Instances, nil
}

// Reset clears the store, the in-memory collections and the alert state.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Clear(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	t.st = emptyState(t.defaultCurrency)
	t.version++
	if t.engine != nil {
		t.engine.Reset()
	}
	slog.InfoContext(ctx, "Tracker reset")
	return nil
}

// Version changes after every successful mutation.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Checkpoint is the time of the last materialization pass.
func (t *Tracker) Checkpoint() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.st.checkpoint
}

// Close closes the underlying store.
func (t *Tracker) Close() error {
	if t.store == nil {
		return nil
	}
	return t.store.Close()
}

// mutate runs fn under the write lock, then re-evaluates alerts.
func (t *Tracker) mutate(ctx context.Context, fn func() error) error {
	t.mu.Lock()
	if err := fn(); err != nil {
		t.mu.Unlock()
		return err
	}
	t.version++
	t.mu.Unlock()

	t.evaluate(ctx)
	return nil
}

func (t *Tracker) evaluate(ctx context.Context) {
	if t.engine == nil {
		return
	}
	// Rearms happen under the write lock, so deciding under the read lock
	// keeps every pass ordered against the mutation that produced it.
	t.mu.RLock()
	now := t.now()
	emitted := t.engine.Decide(alerts.Input{
		Currency:     t.st.currency,
		Budgets:      services.EvaluateBudgets(t.st.transactions, t.st.goals, t.st.currency, now),
		Transactions: t.st.transactions,
		Now:          now,
	})
	t.mu.RUnlock()

	t.dayMu.Lock()
	t.lastEvaluated = core.DateOf(now)
	t.dayMu.Unlock()

	if len(emitted) > 0 {
		slog.InfoContext(ctx, "Alerts emitted", "count", len(emitted))
		t.engine.Notify(ctx, emitted)
	}
}

// ReevaluateIfNewDay runs an alert pass when the clock has moved to a date
// no pass has seen yet. It reports whether a pass ran.
func (t *Tracker) ReevaluateIfNewDay(ctx context.Context) bool {
	t.dayMu.Lock()
	stale := t.lastEvaluated != core.DateOf(t.now())
	t.dayMu.Unlock()
	if !stale {
		return false
	}
	t.evaluate(ctx)
	return true
}

func cloneTransactions(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	return out
}
