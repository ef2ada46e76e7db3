package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quattrini/internal/core"
	"quattrini/internal/storage"
)

// AddPerson registers a new person. Names are unique ignoring case.
func (t *Tracker) AddPerson(ctx context.Context, name, iconURL string) (core.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Person{}, core.ErrEmptyName
	}

	var p core.Person
	err := t.mutate(ctx, func() error {
		if t.nameTaken(name, "") {
			return fmt.Errorf("person %q: %w", name, core.ErrConflict)
		}
		p = core.Person{ID: t.newID(), Name: name, IconURL: iconURL}
		people := append(append([]core.Person(nil), t.st.people...), p)
		if err := storage.PutJSON(ctx, t.store, storage.KeyPeople, people); err != nil {
			return err
		}
		t.st.people = people
		return nil
	})
	if err != nil {
		return core.Person{}, err
	}
	slog.InfoContext(ctx, "Person added", "id", p.ID, "name", p.Name)
	return p, nil
}

// UpdatePerson replaces the name and icon of an existing person.
func (t *Tracker) UpdatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return core.Person{}, core.ErrEmptyName
	}
	err := t.mutate(ctx, func() error {
		i := t.indexOfPerson(p.ID)
		if i < 0 {
			return fmt.Errorf("person %s: %w", p.ID, core.ErrNotFound)
		}
		if t.nameTaken(p.Name, p.ID) {
			return fmt.Errorf("person %q: %w", p.Name, core.ErrConflict)
		}
		people := append([]core.Person(nil), t.st.people...)
		people[i] = p
		if err := storage.PutJSON(ctx, t.store, storage.KeyPeople, people); err != nil {
			return err
		}
		t.st.people = people
		return nil
	})
	if err != nil {
		return core.Person{}, err
	}
	return p, nil
}

// DeletePerson removes a person. Transactions they paid revert to the user
// as payer and they are dropped from every split. Remaining shares are left
// as they were.
func (t *Tracker) DeletePerson(ctx context.Context, id string) error {
	return t.mutate(ctx, func() error {
		i := t.indexOfPerson(id)
		if i < 0 {
			return fmt.Errorf("person %s: %w", id, core.ErrNotFound)
		}
		people := make([]core.Person, 0, len(t.st.people)-1)
		people = append(people, t.st.people[:i]...)
		people = append(people, t.st.people[i+1:]...)

		touched := 0
		txs := make([]core.Transaction, len(t.st.transactions))
		for j, tx := range t.st.transactions {
			if tx.PayerID != id && !participates(tx, id) {
				txs[j] = tx
				continue
			}
			tx = tx.Clone()
			if tx.PayerID == id {
				tx.PayerID = core.SelfID
			}
			kept := tx.SplitDetails[:0]
			for _, s := range tx.SplitDetails {
				if s.PersonID != id {
					kept = append(kept, s)
				}
			}
			tx.SplitDetails = kept
			txs[j] = tx
			touched++
		}

		values := map[string]any{storage.KeyPeople: people}
		if touched > 0 {
			values[storage.KeyTransactions] = txs
		}
		if err := storage.PutAllJSON(ctx, t.store, values); err != nil {
			return err
		}
		if touched > 0 {
			t.st.transactions = txs
		}
		t.st.people = people

		slog.InfoContext(ctx, "Person deleted", "id", id, "transactions_updated", touched)
		return nil
	})
}

func participates(tx core.Transaction, personID string) bool {
	for _, s := range tx.SplitDetails {
		if s.PersonID == personID {
			return true
		}
	}
	return false
}

func (t *Tracker) nameTaken(name, exceptID string) bool {
	for _, p := range t.st.people {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (t *Tracker) indexOfPerson(id string) int {
	for i, p := range t.st.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) findPerson(id string) (core.Person, bool) {
	if i := t.indexOfPerson(id); i >= 0 {
		return t.st.people[i], true
	}
	return core.Person{}, false
}
