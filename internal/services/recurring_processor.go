package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quattrini/internal/core"
)

// RecurringProcessor materializes dated instances from recurring templates.
type RecurringProcessor struct {
	newID func() string
}

// MaterializeResult carries the instances created by one pass and the
// checkpoint the caller must persist afterwards.
type MaterializeResult struct {
	Instances  []core.Transaction
	Checkpoint time.Time
}

// NewRecurringProcessor creates a new processor. A nil newID falls back to random UUIDs.
func NewRecurringProcessor(newID func() string) *RecurringProcessor {
	if newID == nil {
		newID = uuid.NewString
	}
	return &RecurringProcessor{newID: newID}
}

// Materialize walks every template forward from its anchor and emits one
// instance for each occurrence dated after checkpoint and on or before now.
//
// A zero checkpoint means the pass never ran: nothing is back-filled and the
// returned checkpoint starts the clock at now. Occurrences that already have
// an instance for the same parent and date are skipped.
func (p *RecurringProcessor) Materialize(ctx context.Context, txs []core.Transaction, checkpoint, now time.Time) MaterializeResult {
	now = core.WallClock(now)
	result := MaterializeResult{Checkpoint: now}

	if checkpoint.IsZero() {
		slog.InfoContext(ctx, "First recurring pass, checkpoint initialized without back-fill",
			"checkpoint", now.Format(time.RFC3339))
		return result
	}
	checkpoint = core.WallClock(checkpoint)

	existing := make(map[string]struct{})
	for _, t := range txs {
		if t.IsRecurringInstance {
			existing[instanceKey(t.ParentID, t.Date)] = struct{}{}
		}
	}

	templates := 0
	for _, t := range txs {
		if !t.IsTemplate() {
			continue
		}
		stepper, err := GetStepper(t.Recurring)
		if err != nil {
			slog.WarnContext(ctx, "Skipping template with unknown recurrence",
				"recurrent_id", t.ID,
				"frequency", t.Recurring)
			continue
		}
		templates++

		for n := 1; ; n++ {
			next := stepper.Occurrence(t.Date, n)
			if next.After(now) {
				break
			}
			if !next.After(checkpoint) {
				continue
			}
			key := instanceKey(t.ID, next)
			if _, ok := existing[key]; ok {
				continue
			}
			existing[key] = struct{}{}

			inst := t.Clone()
			inst.ID = p.newID()
			inst.Date = next
			inst.Recurring = core.None
			inst.IsRecurringInstance = true
			inst.ParentID = t.ID
			result.Instances = append(result.Instances, inst)

			slog.DebugContext(ctx, "Materialized recurring instance",
				"recurrent_id", t.ID,
				"date", next.String(),
				"frequency", t.Recurring)
		}
	}

	slog.InfoContext(ctx, "Recurring materialization complete",
		"templates", templates,
		"created", len(result.Instances),
		"previous_checkpoint", checkpoint.Format(time.RFC3339),
		"checkpoint", now.Format(time.RFC3339))

	return result
}

func instanceKey(parentID string, d core.Date) string {
	return parentID + "|" + d.String()
}
