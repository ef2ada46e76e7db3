package services

import (
	"context"
	"testing"
	"time"

	"quattrini/internal/core"
)

func monthlyTemplate(id string, date core.Date) core.Transaction {
	t := expense(id, "Subscriptions", "9.99", date)
	t.Recurring = core.Monthly
	t.Description = "Streaming"
	t.Tags = []string{"media"}
	return t
}

func TestRecurringProcessor_FirstRunDoesNotBackfill(t *testing.T) {
	p := NewRecurringProcessor(seqIDs("inst"))
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{monthlyTemplate("tpl", core.NewDate(2026, 7, 17))}

	res := p.Materialize(context.Background(), txs, time.Time{}, now)
	if len(res.Instances) != 0 {
		t.Fatalf("first pass should not back-fill, got %d instances", len(res.Instances))
	}
	if !res.Checkpoint.Equal(now) {
		t.Fatalf("checkpoint = %v, want %v", res.Checkpoint, now)
	}
}

func TestRecurringProcessor_CatchUp(t *testing.T) {
	p := NewRecurringProcessor(seqIDs("inst"))
	start := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{monthlyTemplate("tpl", core.NewDate(2026, 7, 17))}

	first := p.Materialize(context.Background(), txs, time.Time{}, start)
	second := p.Materialize(context.Background(), txs, first.Checkpoint, start.AddDate(0, 1, 0))
	if len(second.Instances) != 1 {
		t.Fatalf("expected exactly one instance one month later, got %d", len(second.Instances))
	}

	inst := second.Instances[0]
	if inst.Date.String() != "2026-11-17" {
		t.Errorf("instance date = %s", inst.Date)
	}
	if inst.ID != "inst-1" || inst.ParentID != "tpl" || !inst.IsRecurringInstance || inst.Recurring != core.None {
		t.Errorf("instance not marked correctly: %+v", inst)
	}
	if !inst.Amount.Equal(amt("9.99")) || inst.Description != "Streaming" || inst.Category != "Subscriptions" {
		t.Errorf("instance did not copy template fields: %+v", inst)
	}
}

func TestRecurringProcessor_CatchUpAcrossSeveralPeriods(t *testing.T) {
	p := NewRecurringProcessor(seqIDs("inst"))
	checkpoint := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	weekly := expense("w", "Groceries", "20", core.NewDate(2026, 9, 26))
	weekly.Recurring = core.Weekly
	txs := []core.Transaction{monthlyTemplate("m", core.NewDate(2026, 5, 15)), weekly}

	res := p.Materialize(context.Background(), txs, checkpoint, now)

	var got []string
	for _, inst := range res.Instances {
		got = append(got, inst.ParentID+"@"+inst.Date.String())
	}
	want := []string{
		"m@2026-06-15", "m@2026-07-15", "m@2026-08-15", "m@2026-09-15", "m@2026-10-15",
		"w@2026-10-03", "w@2026-10-10", "w@2026-10-17",
	}
	if len(got) != len(want) {
		t.Fatalf("instances = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instances = %v, want %v", got, want)
		}
	}
}

func TestRecurringProcessor_Idempotent(t *testing.T) {
	p := NewRecurringProcessor(seqIDs("inst"))
	checkpoint := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	txs := []core.Transaction{monthlyTemplate("tpl", core.NewDate(2026, 8, 20))}

	first := p.Materialize(context.Background(), txs, checkpoint, now)
	if len(first.Instances) != 1 {
		t.Fatalf("expected one instance, got %d", len(first.Instances))
	}

	// Same now, checkpoint advanced by the first pass.
	again := p.Materialize(context.Background(), append(txs, first.Instances...), first.Checkpoint, now)
	if len(again.Instances) != 0 {
		t.Fatalf("second pass created duplicates: %+v", again.Instances)
	}

	// Even with a stale checkpoint, existing instances are not duplicated.
	stale := p.Materialize(context.Background(), append(txs, first.Instances...), checkpoint, now)
	if len(stale.Instances) != 0 {
		t.Fatalf("stale checkpoint re-materialized: %+v", stale.Instances)
	}
}

func TestRecurringProcessor_SkipsNonTemplates(t *testing.T) {
	p := NewRecurringProcessor(seqIDs("inst"))
	checkpoint := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	plain := expense("plain", "Other", "1", core.NewDate(2026, 2, 1))
	inst := monthlyTemplate("inst", core.NewDate(2026, 2, 1))
	inst.IsRecurringInstance = true
	bad := monthlyTemplate("bad", core.NewDate(2026, 2, 1))
	bad.Recurring = "hourly"

	res := p.Materialize(context.Background(), []core.Transaction{plain, inst, bad}, checkpoint, now)
	if len(res.Instances) != 0 {
		t.Fatalf("expected no instances, got %+v", res.Instances)
	}
}

func TestRecurringProcessor_InstanceDoesNotShareTemplateMemory(t *testing.T) {
	p := NewRecurringProcessor(seqIDs("inst"))
	tpl := monthlyTemplate("tpl", core.NewDate(2026, 8, 20))
	res := p.Materialize(context.Background(), []core.Transaction{tpl},
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC))
	if len(res.Instances) != 1 {
		t.Fatalf("expected one instance, got %d", len(res.Instances))
	}
	res.Instances[0].Tags[0] = "changed"
	if tpl.Tags[0] != "media" {
		t.Fatal("instance tags alias the template's")
	}
}
