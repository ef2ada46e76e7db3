package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quattrini/internal/alerts"
	"quattrini/internal/core"
	"quattrini/internal/storage"
	"quattrini/internal/storage/memory"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func seq(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type fixture struct {
	tr    *Tracker
	store *memory.Store
	clock *clock
	queue *alerts.Queue
	eng   *alerts.Engine
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	c := &clock{t: now}
	q := alerts.NewQueue(time.Hour, alerts.WithClock(c.Now))
	e := alerts.NewEngine(q, alerts.WithIDs(seq("alert")))
	s := memory.New()
	tr := New(s, e, q, WithClock(c.Now), WithIDs(seq("id")))
	if err := tr.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &fixture{tr: tr, store: s, clock: c, queue: q, eng: e}
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expenseOn(category, amount string, d core.Date) core.Transaction {
	return core.Transaction{
		Type:        core.Expense,
		Amount:      amt(amount),
		Currency:    "$",
		Category:    category,
		Date:        d,
		Description: category,
		Recurring:   core.None,
	}
}

// failingStore rejects every write after the first n. A batch counts as
// one write.
type failingStore struct {
	*memory.Store
	allowed int
}

var errWrite = errors.New("disk full")

func (s *failingStore) Put(ctx context.Context, key string, value []byte) error {
	if s.allowed <= 0 {
		return errWrite
	}
	s.allowed--
	return s.Store.Put(ctx, key, value)
}

func (s *failingStore) PutMany(ctx context.Context, entries []storage.Entry) error {
	if s.allowed <= 0 {
		return errWrite
	}
	s.allowed--
	return s.Store.PutMany(ctx, entries)
}
