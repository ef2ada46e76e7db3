package services

import (
	"slices"
	"time"

	"quattrini/internal/core"
)

// DefaultUpcomingLimit is how many renewals the upcoming view shows.
const DefaultUpcomingLimit = 3

// Subscription is an active recurring expense with its projected renewal.
type Subscription struct {
	Transaction core.Transaction `json:"transaction"`
	NextPayment core.Date        `json:"nextPayment"`
	DaysUntil   int              `json:"daysUntil"`
}

// ActiveSubscriptions lists recurring expense templates, soonest renewal first.
func ActiveSubscriptions(txs []core.Transaction, now time.Time) []Subscription {
	today := core.DateOf(now)
	var out []Subscription
	for _, t := range txs {
		if !t.IsSubscription() {
			continue
		}
		next := NextPaymentDate(t, now)
		out = append(out, Subscription{
			Transaction: t,
			NextPayment: next,
			DaysUntil:   today.DaysUntil(next),
		})
	}
	slices.SortStableFunc(out, func(a, b Subscription) int {
		return a.NextPayment.Compare(b.NextPayment.Time)
	})
	return out
}

// Upcoming returns at most limit subscriptions from ActiveSubscriptions.
func Upcoming(txs []core.Transaction, now time.Time, limit int) []Subscription {
	subs := ActiveSubscriptions(txs, now)
	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs
}
