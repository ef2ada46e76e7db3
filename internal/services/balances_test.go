package services

import (
	"testing"

	"quattrini/internal/core"
)

func splitTx(id, payer, amount string, splits ...core.SplitDetail) core.Transaction {
	t := expense(id, "Dining Out", amount, core.NewDate(2025, 1, 1))
	t.PayerID = payer
	t.SplitDetails = splits
	return t
}

func balanceOf(t *testing.T, bals []PersonBalance, id string) (string, bool) {
	t.Helper()
	for _, b := range bals {
		if b.Person.ID == id {
			return b.Balance.String(), true
		}
	}
	return "", false
}

var ledgerPeople = []core.Person{{ID: "ann", Name: "Ann"}, {ID: "bob", Name: "Bob"}, {ID: "cid", Name: "Cid"}}

func TestBalances_Symmetry(t *testing.T) {
	userPays := splitTx("t1", core.SelfID, "100", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"})
	got, ok := balanceOf(t, Balances([]core.Transaction{userPays}, ledgerPeople), "ann")
	if !ok || got != "50" {
		t.Fatalf("ann balance = %s (present=%v), want 50", got, ok)
	}

	annPays := splitTx("t2", "ann", "100", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"})
	got, ok = balanceOf(t, Balances([]core.Transaction{annPays}, ledgerPeople), "ann")
	if !ok || got != "-50" {
		t.Fatalf("ann balance = %s (present=%v), want -50", got, ok)
	}
}

func TestBalances_CustomAndEqualShares(t *testing.T) {
	txs := []core.Transaction{
		splitTx("t1", core.SelfID, "90",
			core.SplitDetail{PersonID: core.SelfID, Amount: share("30")},
			core.SplitDetail{PersonID: "ann", Amount: share("45")},
			core.SplitDetail{PersonID: "bob", Amount: share("15")}),
		splitTx("t2", "bob", "60",
			core.SplitDetail{PersonID: core.SelfID},
			core.SplitDetail{PersonID: "bob"},
			core.SplitDetail{PersonID: "ann"}),
	}
	bals := Balances(txs, ledgerPeople)
	if got, _ := balanceOf(t, bals, "ann"); got != "45" {
		t.Errorf("ann = %s, want 45", got)
	}
	// bob: +15 from t1, -20 (user's equal third of 60) from t2
	if got, _ := balanceOf(t, bals, "bob"); got != "-5" {
		t.Errorf("bob = %s, want -5", got)
	}
	if _, ok := balanceOf(t, bals, "cid"); ok {
		t.Errorf("cid has no activity and must be omitted")
	}
}

func TestBalances_OrderIndependent(t *testing.T) {
	txs := []core.Transaction{
		splitTx("t1", core.SelfID, "100", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"}),
		splitTx("t2", "ann", "30", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"}, core.SplitDetail{PersonID: "bob"}),
		splitTx("t3", core.SelfID, "10", core.SplitDetail{PersonID: "bob"}, core.SplitDetail{PersonID: core.SelfID}),
	}
	reversed := []core.Transaction{txs[2], txs[1], txs[0]}

	a, b := Balances(txs, ledgerPeople), Balances(reversed, ledgerPeople)
	if len(a) != len(b) {
		t.Fatalf("different results: %v vs %v", a, b)
	}
	for i := range a {
		if a[i].Person.ID != b[i].Person.ID || !a[i].Balance.Equal(b[i].Balance) {
			t.Fatalf("different results: %v vs %v", a, b)
		}
	}
}

func TestBalances_SettledPersonOmitted(t *testing.T) {
	txs := []core.Transaction{
		splitTx("t1", core.SelfID, "40", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"}),
		splitTx("t2", "ann", "40", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"}),
	}
	if bals := Balances(txs, ledgerPeople); len(bals) != 0 {
		t.Fatalf("expected everyone square, got %v", bals)
	}
}

// A third party paying for a split the user is not part of leaves the ledger
// untouched. This mirrors long-standing behavior rather than endorsing it.
func TestBalances_UserNotParticipantContributesNothing(t *testing.T) {
	tx := splitTx("t1", "ann", "100", core.SplitDetail{PersonID: "ann"}, core.SplitDetail{PersonID: "bob"})
	if bals := Balances([]core.Transaction{tx}, ledgerPeople); len(bals) != 0 {
		t.Fatalf("expected no balances, got %v", bals)
	}
}

func TestBalances_IgnoresUnsplitAndUnknownPeople(t *testing.T) {
	plain := expense("p", "Other", "10", core.NewDate(2025, 1, 1))
	noPayer := splitTx("np", "", "10", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ann"})
	ghost := splitTx("g", core.SelfID, "10", core.SplitDetail{PersonID: core.SelfID}, core.SplitDetail{PersonID: "ghost"})

	if bals := Balances([]core.Transaction{plain, noPayer, ghost}, ledgerPeople); len(bals) != 0 {
		t.Fatalf("expected no balances, got %v", bals)
	}
}
