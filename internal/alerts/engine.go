// Package alerts turns budget and subscription state into one-shot
// notifications and keeps the live queue they are shown from.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quattrini/internal/core"
	"quattrini/internal/log"
	"quattrini/internal/services"
)

const (
	suffixNear           = "-near"
	suffixExceeded       = "-exceeded"
	suffixRenewalWarning = "-renewal-warning"
	suffixRenewalToday   = "-renewal-today"
)

// RenewalWarningDays is how far ahead of a renewal the warning fires.
const RenewalWarningDays = 3

// Notifier receives every alert the engine emits, after the pass completes.
type Notifier interface {
	Notify(ctx context.Context, alert core.Alert) error
}

// Input is the state one evaluation pass looks at.
type Input struct {
	Currency     string
	Budgets      []services.GoalProgress
	Transactions []core.Transaction
	Now          time.Time
}

// Engine remembers which trigger keys already fired during the session so
// each condition is reported once until it is explicitly rearmed.
type Engine struct {
	mu       sync.Mutex
	fired    map[string]struct{}
	queue    *Queue
	newID    func() string
	notifier Notifier
}

type Option func(*Engine)

// WithIDs sets the alert id generator.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithNotifier forwards emitted alerts to n.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates an engine that appends to queue.
func NewEngine(queue *Queue, opts ...Option) *Engine {
	e := &Engine{
		fired: make(map[string]struct{}),
		queue: queue,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs one pass over budgets and subscriptions and returns the
// alerts it emitted, in emission order.
func (e *Engine) Evaluate(ctx context.Context, in Input) []core.Alert {
	emitted := e.Decide(in)
	e.Notify(ctx, emitted)
	return emitted
}

// Decide updates the fired set and queue for one pass without forwarding
// anything to the notifier. Callers that must order passes against their
// own writes call it while holding their lock and Notify after releasing it.
func (e *Engine) Decide(in Input) []core.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	var emitted []core.Alert
	emitted = append(emitted, e.budgetAlerts(in)...)
	emitted = append(emitted, e.renewalAlerts(in)...)
	if e.queue != nil {
		e.queue.Push(emitted...)
	}
	return emitted
}

// Notify forwards alerts to the configured notifier, if any.
func (e *Engine) Notify(ctx context.Context, emitted []core.Alert) {
	if e.notifier == nil {
		return
	}
	for _, a := range emitted {
		if err := e.notifier.Notify(ctx, a); err != nil {
			slog.WarnContext(ctx, "Failed to forward alert",
				log.FieldComponent, log.ComponentAlerts,
				log.FieldOperation, log.OpPublish,
				log.FieldAlertID, a.ID,
				log.FieldError, err.Error())
		}
	}
}

func (e *Engine) budgetAlerts(in Input) []core.Alert {
	var out []core.Alert
	for _, p := range in.Budgets {
		nearKey := p.Goal.ID + suffixNear
		exceededKey := p.Goal.ID + suffixExceeded

		switch p.Status() {
		case services.BudgetNear:
			if e.fire(nearKey) {
				out = append(out, e.alert(core.SeverityWarning, "budget_near", fmt.Sprintf(
					"You've spent %s (%d%%) of your %s budget for %s.",
					core.FormatAmount(in.Currency, p.Spent), p.Percent(),
					core.FormatAmount(in.Currency, p.Goal.Amount), p.Goal.Category)))
			}
		case services.BudgetExceeded:
			if e.fire(exceededKey) {
				out = append(out, e.alert(core.SeverityError, "budget_exceeded", fmt.Sprintf(
					"You've exceeded your %s budget of %s by %s.",
					p.Goal.Category,
					core.FormatAmount(in.Currency, p.Goal.Amount),
					core.FormatAmount(in.Currency, p.Spent.Sub(p.Goal.Amount)))))
				delete(e.fired, nearKey)
			}
		}
	}
	return out
}

func (e *Engine) renewalAlerts(in Input) []core.Alert {
	var out []core.Alert
	for _, t := range in.Transactions {
		if !t.IsSubscription() {
			continue
		}
		label := t.Description
		if label == "" {
			label = t.Category
		}
		price := core.FormatAmount(t.Currency, t.Amount)

		switch services.DaysUntilPayment(t, in.Now) {
		case RenewalWarningDays:
			if e.fire(t.ID + suffixRenewalWarning) {
				out = append(out, e.alert(core.SeverityWarning, "renewal_warning", fmt.Sprintf(
					"Your subscription for %q (%s) is due in %d days.", label, price, RenewalWarningDays)))
			}
		case 0:
			if e.fire(t.ID + suffixRenewalToday) {
				out = append(out, e.alert(core.SeverityInfo, "renewal_today", fmt.Sprintf(
					"Your subscription for %q (%s) renews today.", label, price)))
			}
		}
	}
	return out
}

// fire records key and reports whether it was unarmed before.
func (e *Engine) fire(key string) bool {
	if _, ok := e.fired[key]; ok {
		return false
	}
	e.fired[key] = struct{}{}
	return true
}

func (e *Engine) alert(kind core.Severity, trigger, msg string) core.Alert {
	alertsEmitted.WithLabelValues(trigger).Inc()
	return core.Alert{ID: e.newID(), Kind: kind, Message: msg}
}

// RearmGoal clears both budget keys of a goal.
func (e *Engine) RearmGoal(goalID string) {
	e.rearm(goalID+suffixNear, goalID+suffixExceeded)
}

// RearmSubscription clears both renewal keys of a transaction.
func (e *Engine) RearmSubscription(txID string) {
	e.rearm(txID+suffixRenewalWarning, txID+suffixRenewalToday)
}

func (e *Engine) rearm(keys ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range keys {
		delete(e.fired, k)
	}
}

// Fired reports whether key is currently recorded.
func (e *Engine) Fired(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.fired[key]
	return ok
}

// Reset forgets every fired key and empties the queue.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.fired)
	if e.queue != nil {
		e.queue.Clear()
	}
}
