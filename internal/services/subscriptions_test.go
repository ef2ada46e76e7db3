package services

import (
	"testing"
	"time"

	"quattrini/internal/core"
)

func TestActiveSubscriptions(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	gym := expense("gym", "Health", "30", core.NewDate(2025, 1, 12))
	gym.Recurring = core.Monthly
	news := expense("news", "Subscriptions", "5", core.NewDate(2025, 3, 3))
	news.Recurring = core.Weekly
	salary := expense("salary", "Salary", "2000", core.NewDate(2025, 1, 1))
	salary.Type = core.Income
	salary.Recurring = core.Monthly
	inst := gym
	inst.ID = "gym-inst"
	inst.IsRecurringInstance = true
	once := expense("once", "Other", "1", core.NewDate(2025, 3, 11))

	subs := ActiveSubscriptions([]core.Transaction{gym, news, salary, inst, once}, now)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(subs))
	}
	if subs[0].Transaction.ID != "news" || subs[0].NextPayment.String() != "2025-03-10" || subs[0].DaysUntil != 0 {
		t.Errorf("first = %+v", subs[0])
	}
	if subs[1].Transaction.ID != "gym" || subs[1].NextPayment.String() != "2025-03-12" || subs[1].DaysUntil != 2 {
		t.Errorf("second = %+v", subs[1])
	}

	if up := Upcoming([]core.Transaction{gym, news}, now, 1); len(up) != 1 || up[0].Transaction.ID != "news" {
		t.Errorf("Upcoming limit 1 = %+v", up)
	}
}
