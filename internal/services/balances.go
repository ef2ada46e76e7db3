package services

import (
	"github.com/shopspring/decimal"

	"quattrini/internal/core"
)

// PersonBalance is positive when the person owes the user and negative
// when the user owes the person.
type PersonBalance struct {
	Person  core.Person     `json:"person"`
	Balance decimal.Decimal `json:"balance"`
}

// Balances nets every split transaction into per-person balances, in people
// order, omitting anyone who is square.
//
// When someone else paid, only the user's own share moves the ledger; a split
// that does not include the user contributes nothing.
func Balances(txs []core.Transaction, people []core.Person) []PersonBalance {
	ledger := make(map[string]decimal.Decimal, len(people))
	for _, p := range people {
		ledger[p.ID] = decimal.Zero
	}

	for _, t := range txs {
		if len(t.SplitDetails) == 0 || t.PayerID == "" {
			continue
		}
		equalShare := t.Amount.Div(decimal.NewFromInt(int64(len(t.SplitDetails))))

		if t.PayerID == core.SelfID {
			for _, s := range t.SplitDetails {
				if s.PersonID == core.SelfID {
					continue
				}
				ledger[s.PersonID] = ledger[s.PersonID].Add(shareOf(s, equalShare))
			}
			continue
		}

		for _, s := range t.SplitDetails {
			if s.PersonID == core.SelfID {
				ledger[t.PayerID] = ledger[t.PayerID].Sub(shareOf(s, equalShare))
				break
			}
		}
	}

	out := make([]PersonBalance, 0, len(people))
	for _, p := range people {
		if bal := ledger[p.ID]; !bal.IsZero() {
			out = append(out, PersonBalance{Person: p, Balance: bal})
		}
	}
	return out
}

func shareOf(s core.SplitDetail, equalShare decimal.Decimal) decimal.Decimal {
	if s.Amount != nil {
		return *s.Amount
	}
	return equalShare
}
