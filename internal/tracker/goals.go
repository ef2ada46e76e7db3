package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
	"quattrini/internal/storage"
)

// SaveGoal sets the monthly limit for a category. A category keeps a single
// goal: saving again updates its amount and rearms its alerts.
func (t *Tracker) SaveGoal(ctx context.Context, category string, amount decimal.Decimal) (core.BudgetGoal, error) {
	g := core.BudgetGoal{Category: strings.TrimSpace(category), Amount: amount}
	if err := g.Validate(); err != nil {
		return core.BudgetGoal{}, err
	}

	err := t.mutate(ctx, func() error {
		goals := append([]core.BudgetGoal(nil), t.st.goals...)
		existing := -1
		for i, cur := range goals {
			if cur.Category == g.Category {
				existing = i
				break
			}
		}
		if existing >= 0 {
			g.ID = goals[existing].ID
			goals[existing] = g
		} else {
			g.ID = t.newID()
			goals = append(goals, g)
		}
		if err := storage.PutJSON(ctx, t.store, storage.KeyBudgetGoals, goals); err != nil {
			return err
		}
		t.st.goals = goals
		if existing >= 0 && t.engine != nil {
			t.engine.RearmGoal(g.ID)
		}
		return nil
	})
	if err != nil {
		return core.BudgetGoal{}, err
	}

	slog.InfoContext(ctx, "Budget goal saved",
		"id", g.ID,
		"category", g.Category,
		"amount", g.Amount.StringFixed(2))
	return g, nil
}

// DeleteGoal removes a goal and rearms its alerts.
func (t *Tracker) DeleteGoal(ctx context.Context, id string) error {
	return t.mutate(ctx, func() error {
		goals := make([]core.BudgetGoal, 0, len(t.st.goals))
		for _, g := range t.st.goals {
			if g.ID != id {
				goals = append(goals, g)
			}
		}
		if len(goals) == len(t.st.goals) {
			return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
		}
		if err := storage.PutJSON(ctx, t.store, storage.KeyBudgetGoals, goals); err != nil {
			return err
		}
		t.st.goals = goals
		if t.engine != nil {
			t.engine.RearmGoal(id)
		}
		return nil
	})
}
