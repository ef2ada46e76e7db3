package services

import (
	"testing"
	"time"

	"quattrini/internal/core"
)

var budgetNow = time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

func TestEvaluateBudgets(t *testing.T) {
	goals := []core.BudgetGoal{
		{ID: "g1", Category: "Groceries", Amount: amt("500")},
		{ID: "g2", Category: "Health", Amount: amt("100")},
		{ID: "g3", Category: "Other", Amount: amt("0")},
	}
	income := expense("inc", "Groceries", "999", core.NewDate(2025, 6, 2))
	income.Type = core.Income
	euro := expense("eur", "Groceries", "999", core.NewDate(2025, 6, 2))
	euro.Currency = "€"

	txs := []core.Transaction{
		expense("a", "Groceries", "400", core.NewDate(2025, 6, 1)),
		expense("b", "Groceries", "60", core.NewDate(2025, 6, 30)),
		expense("last-month", "Groceries", "999", core.NewDate(2025, 5, 31)),
		expense("last-year", "Groceries", "999", core.NewDate(2024, 6, 15)),
		expense("h", "Health", "120", core.NewDate(2025, 6, 10)),
		income,
		euro,
	}

	got := EvaluateBudgets(txs, goals, "$", budgetNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 evaluated goals (zero goal skipped), got %d", len(got))
	}
	if !got[0].Spent.Equal(amt("460")) || !got[0].Progress.Equal(amt("0.92")) || got[0].Percent() != 92 {
		t.Errorf("groceries = %+v", got[0])
	}
	if got[0].Status() != BudgetNear || !got[0].Remaining().Equal(amt("40")) {
		t.Errorf("groceries status = %s remaining = %s", got[0].Status(), got[0].Remaining())
	}
	if !got[1].Progress.Equal(amt("1.2")) || got[1].Status() != BudgetExceeded {
		t.Errorf("health = %+v", got[1])
	}

	SortByProgress(got)
	if got[0].Goal.ID != "g2" || got[1].Goal.ID != "g1" {
		t.Errorf("SortByProgress order = %s, %s", got[0].Goal.ID, got[1].Goal.ID)
	}
}

func TestGoalProgressStatusEdges(t *testing.T) {
	tests := []struct {
		progress string
		want     BudgetStatus
	}{
		{"0.899999", BudgetOnTrack},
		{"0.9", BudgetNear},
		{"1", BudgetNear},
		{"1.000001", BudgetExceeded},
	}
	for _, tt := range tests {
		if got := (GoalProgress{Progress: amt(tt.progress)}).Status(); got != tt.want {
			t.Errorf("Status(%s) = %s, want %s", tt.progress, got, tt.want)
		}
	}
}

func TestEvaluateBudgets_NoSpend(t *testing.T) {
	got := EvaluateBudgets(nil, []core.BudgetGoal{{ID: "g", Category: "Groceries", Amount: amt("10")}}, "$", budgetNow)
	if len(got) != 1 || !got[0].Spent.IsZero() || !got[0].Progress.IsZero() {
		t.Fatalf("unexpected result: %+v", got)
	}
}
