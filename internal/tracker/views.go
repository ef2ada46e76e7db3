package tracker

import (
	"maps"
	"slices"

	"quattrini/internal/core"
	"quattrini/internal/services"
)

// Categories is the category registry for one kind.
type Categories struct {
	Builtin []string          `json:"builtin"`
	Custom  []string          `json:"custom"`
	Icons   map[string]string `json:"icons"`
	Colors  map[string]string `json:"colors"`
}

// All returns built-in categories followed by custom ones.
func (c Categories) All() []string {
	return append(slices.Clone(c.Builtin), c.Custom...)
}

// Transactions applies f to the log. An empty currency uses the active one.
func (t *Tracker) Transactions(f services.Filter) []core.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if f.Currency == "" {
		f.Currency = t.st.currency
	}
	return f.Apply(t.st.transactions)
}

// Transaction looks up a single transaction by id.
func (t *Tracker) Transaction(id string) (core.Transaction, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexOfTransaction(id); i >= 0 {
		return t.st.transactions[i].Clone(), true
	}
	return core.Transaction{}, false
}

// FilterTags is the tag universe for filtering, "all" first.
func (t *Tracker) FilterTags() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return services.AllTags(t.st.transactions)
}

// Tags is the tag registry.
func (t *Tracker) Tags() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.st.tags)
}

func (t *Tracker) Categories(kind core.CategoryKind) Categories {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, custom := t.customCategories(kind)
	return Categories{
		Builtin: core.BuiltinCategories(kind),
		Custom:  slices.Clone(custom),
		Icons:   maps.Clone(t.st.categoryIcons),
		Colors:  maps.Clone(t.st.categoryColors),
	}
}

func (t *Tracker) People() []core.Person {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.st.people)
}

func (t *Tracker) Balances() []services.PersonBalance {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return services.Balances(t.st.transactions, t.st.people)
}

func (t *Tracker) Goals() []core.BudgetGoal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.st.goals)
}

// BudgetReport evaluates every goal for the current month, most spent first.
func (t *Tracker) BudgetReport() []services.GoalProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	report := services.EvaluateBudgets(t.st.transactions, t.st.goals, t.st.currency, t.now())
	services.SortByProgress(report)
	return report
}

// Summary totals the filtered view.
func (t *Tracker) Summary(f services.Filter) core.Summary {
	return core.Summarize(t.Transactions(f))
}

func (t *Tracker) Subscriptions() []services.Subscription {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return services.ActiveSubscriptions(t.st.transactions, t.now())
}

func (t *Tracker) UpcomingSubscriptions(limit int) []services.Subscription {
	if limit <= 0 {
		limit = services.DefaultUpcomingLimit
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return services.Upcoming(t.st.transactions, t.now(), limit)
}

func (t *Tracker) Currency() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.st.currency
}

// Alerts lists the live alerts.
func (t *Tracker) Alerts() []core.Alert {
	if t.queue == nil {
		return nil
	}
	return t.queue.List()
}

// DismissAlert retires an alert early. Unknown ids are ignored.
func (t *Tracker) DismissAlert(id string) {
	if t.queue != nil {
		t.queue.Dismiss(id)
	}
}
