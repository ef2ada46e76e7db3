package services

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
)

const (
	BudgetOnTrack  BudgetStatus = "on_track"
	BudgetNear     BudgetStatus = "near"
	BudgetExceeded BudgetStatus = "exceeded"
)

var (
	// NearThreshold is the progress ratio at which a budget counts as nearly spent.
	NearThreshold = decimal.RequireFromString("0.9")
	fullThreshold = decimal.NewFromInt(1)
	hundred       = decimal.NewFromInt(100)
)

type BudgetStatus string

// GoalProgress is one goal's spend for the current month.
type GoalProgress struct {
	Goal     core.BudgetGoal `json:"goal"`
	Spent    decimal.Decimal `json:"spent"`
	Progress decimal.Decimal `json:"progress"` // spent / goal amount
}

// Percent is the progress rounded to a whole percentage.
func (g GoalProgress) Percent() int64 {
	return g.Progress.Mul(hundred).Round(0).IntPart()
}

// Remaining is what is left of the goal; negative once exceeded.
func (g GoalProgress) Remaining() decimal.Decimal {
	return g.Goal.Amount.Sub(g.Spent)
}

func (g GoalProgress) Status() BudgetStatus {
	switch {
	case g.Progress.GreaterThan(fullThreshold):
		return BudgetExceeded
	case g.Progress.GreaterThanOrEqual(NearThreshold):
		return BudgetNear
	default:
		return BudgetOnTrack
	}
}

// EvaluateBudgets sums this month's expenses in currency per goal category.
// Goals with a non-positive amount are skipped.
func EvaluateBudgets(txs []core.Transaction, goals []core.BudgetGoal, currency string, now time.Time) []GoalProgress {
	year, month := now.Year(), now.Month()
	spent := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != core.Expense || t.Currency != currency {
			continue
		}
		if t.Date.Year() != year || t.Date.Time.Month() != month {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount)
	}

	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		if !g.Amount.IsPositive() {
			continue
		}
		s := spent[g.Category]
		out = append(out, GoalProgress{
			Goal:     g,
			Spent:    s,
			Progress: s.Div(g.Amount),
		})
	}
	return out
}

// SortByProgress orders goals most-spent first; ties keep their order.
func SortByProgress(ps []GoalProgress) {
	slices.SortStableFunc(ps, func(a, b GoalProgress) int {
		return b.Progress.Cmp(a.Progress)
	})
}
