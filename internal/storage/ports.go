// Package storage persists the tracker's collections in an opaque
// key-value store, one JSON document per key.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Keys of the persisted collections.
const (
	KeyTransactions            = "transactions"
	KeyBudgetGoals             = "budgetGoals"
	KeyPeople                  = "people"
	KeyCustomExpenseCategories = "customExpenseCategories"
	KeyCustomIncomeCategories  = "customIncomeCategories"
	KeyTags                    = "tags"
	KeyCategoryIcons           = "categoryIcons"
	KeyCategoryColors          = "categoryColors"
	KeyLastRecurringCheck      = "lastRecurringCheck"
	KeyFilterCurrency          = "filterCurrency"
)

// Store is the port every backend implements.
type Store interface {
	// Get returns the raw value of key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// PutMany writes every entry or none of them.
	PutMany(ctx context.Context, entries []Entry) error
	// Clear removes every key.
	Clear(ctx context.Context) error
	Close() error
}

// Entry is one key/value pair of a PutMany batch.
type Entry struct {
	Key   string
	Value []byte
}

// GetJSON decodes key into dst. A missing key leaves dst untouched and
// reports false.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PutAllJSON encodes every value and stores them atomically, so a
// cascading mutation never leaves its collections half written.
func PutAllJSON(ctx context.Context, s Store, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		raw, err := json.Marshal(values[key])
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: raw})
	}
	if err := s.PutMany(ctx, entries); err != nil {
		return fmt.Errorf("put %s: %w", strings.Join(keys, ", "), err)
	}
	return nil
}
