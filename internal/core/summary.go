package core

import "github.com/shopspring/decimal"

// Summary is the headline totals of a transaction view.
type Summary struct {
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Balance    decimal.Decimal `json:"balance"`
	Deductible decimal.Decimal `json:"deductible"`
}

// Summarize totals txs; callers pass a single-currency view.
func Summarize(txs []Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expenses: decimal.Zero, Deductible: decimal.Zero}
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}
		if t.IsTaxDeductible {
			s.Deductible = s.Deductible.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}
