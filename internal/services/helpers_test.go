package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"quattrini/internal/core"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func share(s string) *decimal.Decimal {
	d := amt(s)
	return &d
}

// seqIDs returns a deterministic id generator: prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func expense(id, category, amount string, date core.Date) core.Transaction {
	return core.Transaction{
		ID:        id,
		Type:      core.Expense,
		Amount:    amt(amount),
		Currency:  "$",
		Category:  category,
		Date:      date,
		Recurring: core.None,
	}
}
