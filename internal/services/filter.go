package services

import (
	"slices"
	"strings"

	"quattrini/internal/core"
)

// AllFilter disables the category and tag predicates.
const AllFilter = "all"

const (
	TaxAll           TaxStatus = "all"
	TaxDeductible    TaxStatus = "deductible"
	TaxNonDeductible TaxStatus = "non-deductible"
)

type TaxStatus string

// DateRange bounds are inclusive; a nil bound is open.
type DateRange struct {
	Start *core.Date `json:"start,omitempty"`
	End   *core.Date `json:"end,omitempty"`
}

// Filter selects a single-currency view of the transaction log.
type Filter struct {
	Currency   string    `json:"currency"`
	Category   string    `json:"category"`
	Tag        string    `json:"tag"`
	DateRange  DateRange `json:"dateRange"`
	TaxStatus  TaxStatus `json:"taxStatus"`
	SearchTerm string    `json:"searchTerm"`
}

// Predicate reports whether a transaction stays in the view.
type Predicate func(core.Transaction) bool

// Predicates returns the AND-combined checks the filter applies after the
// currency match. Unset fields contribute nothing.
func (f Filter) Predicates() []Predicate {
	var preds []Predicate
	if f.Category != "" && f.Category != AllFilter {
		category := f.Category
		preds = append(preds, func(t core.Transaction) bool { return t.Category == category })
	}
	if f.Tag != "" && f.Tag != AllFilter {
		tag := f.Tag
		preds = append(preds, func(t core.Transaction) bool { return t.HasTag(tag) })
	}
	if start := f.DateRange.Start; start != nil && !start.IsZero() {
		preds = append(preds, func(t core.Transaction) bool { return !t.Date.Before(start.Time) })
	}
	if end := f.DateRange.End; end != nil && !end.IsZero() {
		preds = append(preds, func(t core.Transaction) bool { return !t.Date.After(end.Time) })
	}
	switch f.TaxStatus {
	case TaxDeductible:
		preds = append(preds, func(t core.Transaction) bool { return t.IsTaxDeductible })
	case TaxNonDeductible:
		preds = append(preds, func(t core.Transaction) bool { return !t.IsTaxDeductible })
	}
	if term := strings.ToLower(f.SearchTerm); term != "" {
		preds = append(preds, func(t core.Transaction) bool {
			return strings.Contains(strings.ToLower(t.Description), term) ||
				strings.Contains(strings.ToLower(t.Notes), term)
		})
	}
	return preds
}

// Apply returns the matching transactions, most recent first. Transactions
// on the same date keep their order in txs. txs is never modified.
func (f Filter) Apply(txs []core.Transaction) []core.Transaction {
	preds := f.Predicates()
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Currency != f.Currency {
			continue
		}
		if matchesAll(t, preds) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

func matchesAll(t core.Transaction, preds []Predicate) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}
	return true
}

// AllTags returns "all" followed by every tag in use, in first-seen order.
func AllTags(txs []core.Transaction) []string {
	out := []string{AllFilter}
	seen := map[string]struct{}{AllFilter: {}}
	for _, t := range txs {
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
