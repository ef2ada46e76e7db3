package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
	"quattrini/internal/storage"
)

// AddTransaction assigns an id, stores t at the head of the log and adds
// its tags to the registry.
func (t *Tracker) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Clone()
	if tx.Recurring == "" {
		tx.Recurring = core.None
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := t.mutate(ctx, func() error {
		tx.ID = t.newID()
		txs := make([]core.Transaction, 0, len(t.st.transactions)+1)
		txs = append(txs, tx)
		txs = append(txs, t.st.transactions...)
		return t.commitTransactions(ctx, txs, tx.Tags)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction added",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(2),
		"category", tx.Category)
	return tx, nil
}

// UpdateTransaction replaces the transaction with the same id in place.
func (t *Tracker) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx = tx.Clone()
	if tx.Recurring == "" {
		tx.Recurring = core.None
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := t.mutate(ctx, func() error {
		i := t.indexOfTransaction(tx.ID)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", tx.ID, core.ErrNotFound)
		}
		wasTemplate := t.st.transactions[i].IsTemplate()
		txs := append([]core.Transaction(nil), t.st.transactions...)
		txs[i] = tx
		if err := t.commitTransactions(ctx, txs, tx.Tags); err != nil {
			return err
		}
		if wasTemplate && !tx.IsTemplate() && t.engine != nil {
			t.engine.RearmSubscription(tx.ID)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID)
	return tx, nil
}

// DeleteTransaction removes a transaction immediately.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	return t.mutate(ctx, func() error {
		i := t.indexOfTransaction(id)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
		}
		txs := make([]core.Transaction, 0, len(t.st.transactions)-1)
		txs = append(txs, t.st.transactions[:i]...)
		txs = append(txs, t.st.transactions[i+1:]...)
		if err := storage.PutJSON(ctx, t.store, storage.KeyTransactions, txs); err != nil {
			return err
		}
		t.st.transactions = txs
		slog.InfoContext(ctx, "Transaction deleted", "id", id)
		return nil
	})
}

// CancelSubscription stops a recurring transaction from recurring and
// rearms its renewal alerts.
func (t *Tracker) CancelSubscription(ctx context.Context, id string) error {
	return t.mutate(ctx, func() error {
		i := t.indexOfTransaction(id)
		if i < 0 {
			return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
		}
		txs := append([]core.Transaction(nil), t.st.transactions...)
		txs[i] = txs[i].Clone()
		txs[i].Recurring = core.None
		if err := storage.PutJSON(ctx, t.store, storage.KeyTransactions, txs); err != nil {
			return err
		}
		t.st.transactions = txs
		if t.engine != nil {
			t.engine.RearmSubscription(id)
		}
		slog.InfoContext(ctx, "Subscription cancelled", "id", id)
		return nil
	})
}

// SettleUp records a direct transaction that moves a person's balance back
// to zero. A positive amount means the person owed the user and becomes
// income; anything else is an expense.
func (t *Tracker) SettleUp(ctx context.Context, personID string, amount decimal.Decimal) (core.Transaction, error) {
	if amount.IsZero() {
		return core.Transaction{}, core.ErrInvalidAmount
	}

	t.mu.RLock()
	person, ok := t.findPerson(personID)
	currency := t.st.currency
	t.mu.RUnlock()
	if !ok {
		return core.Transaction{}, fmt.Errorf("person %s: %w", personID, core.ErrNotFound)
	}

	kind := core.Expense
	if amount.IsPositive() {
		kind = core.Income
	}
	return t.AddTransaction(ctx, core.Transaction{
		Type:        kind,
		Amount:      amount.Abs(),
		Currency:    currency,
		Category:    core.SettlementCategory,
		Date:        core.DateOf(t.now()),
		Description: "Settlement with " + person.Name,
		Recurring:   core.None,
	})
}

// commitTransactions persists txs and any new tags, then swaps them in.
// Caller holds the write lock.
func (t *Tracker) commitTransactions(ctx context.Context, txs []core.Transaction, newTags []string) error {
	tags, changed := unionTags(t.st.tags, newTags)
	values := map[string]any{storage.KeyTransactions: txs}
	if changed {
		values[storage.KeyTags] = tags
	}
	if err := storage.PutAllJSON(ctx, t.store, values); err != nil {
		return err
	}
	t.st.transactions = txs
	t.st.tags = tags
	return nil
}

func (t *Tracker) indexOfTransaction(id string) int {
	for i, tx := range t.st.transactions {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// unionTags appends unseen tags to registry, returning a new slice when
// anything changed.
func unionTags(registry, add []string) ([]string, bool) {
	var out []string
	changed := false
	for _, tag := range add {
		if tag == "" || slices.Contains(registry, tag) || slices.Contains(out, tag) {
			continue
		}
		if !changed {
			out = append([]string(nil), registry...)
			changed = true
		}
		out = append(out, tag)
	}
	if !changed {
		return registry, false
	}
	return out, true
}
