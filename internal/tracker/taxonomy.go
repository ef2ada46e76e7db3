package tracker

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"quattrini/internal/core"
	"quattrini/internal/storage"
)

// AddTag adds tag to the registry; existing tags are ignored.
func (t *Tracker) AddTag(ctx context.Context, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return core.ErrEmptyName
	}
	return t.mutate(ctx, func() error {
		tags, changed := unionTags(t.st.tags, []string{tag})
		if !changed {
			return nil
		}
		if err := storage.PutJSON(ctx, t.store, storage.KeyTags, tags); err != nil {
			return err
		}
		t.st.tags = tags
		return nil
	})
}

// DeleteTag removes tag from the registry and from every transaction.
func (t *Tracker) DeleteTag(ctx context.Context, tag string) error {
	return t.mutate(ctx, func() error {
		tags := slices.DeleteFunc(slices.Clone(t.st.tags), func(s string) bool { return s == tag })

		touched := 0
		txs := make([]core.Transaction, len(t.st.transactions))
		for i, tx := range t.st.transactions {
			if !tx.HasTag(tag) {
				txs[i] = tx
				continue
			}
			tx = tx.Clone()
			tx.Tags = slices.DeleteFunc(tx.Tags, func(s string) bool { return s == tag })
			txs[i] = tx
			touched++
		}

		values := map[string]any{storage.KeyTags: tags}
		if touched > 0 {
			values[storage.KeyTransactions] = txs
		}
		if err := storage.PutAllJSON(ctx, t.store, values); err != nil {
			return err
		}
		if touched > 0 {
			t.st.transactions = txs
		}
		t.st.tags = tags
		return nil
	})
}

// AddCategory adds a custom category of kind. Built-in and existing names
// are ignored.
func (t *Tracker) AddCategory(ctx context.Context, kind core.CategoryKind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if !kind.IsValid() {
		return fmt.Errorf("category kind %q: %w", kind, core.ErrInvalidType)
	}
	if core.IsBuiltinCategory(kind, name) {
		return nil
	}
	return t.mutate(ctx, func() error {
		key, current := t.customCategories(kind)
		if slices.Contains(current, name) {
			return nil
		}
		next := append(slices.Clone(current), name)
		if err := storage.PutJSON(ctx, t.store, key, next); err != nil {
			return err
		}
		t.setCustomCategories(kind, next)
		return nil
	})
}

// DeleteCategory removes a custom category along with its icon and color.
func (t *Tracker) DeleteCategory(ctx context.Context, kind core.CategoryKind, name string) error {
	if !kind.IsValid() {
		return fmt.Errorf("category kind %q: %w", kind, core.ErrInvalidType)
	}
	if core.IsBuiltinCategory(kind, name) {
		return fmt.Errorf("category %q: %w", name, core.ErrBuiltinCategory)
	}
	return t.mutate(ctx, func() error {
		key, current := t.customCategories(kind)
		if !slices.Contains(current, name) {
			return fmt.Errorf("category %q: %w", name, core.ErrNotFound)
		}
		next := slices.DeleteFunc(slices.Clone(current), func(s string) bool { return s == name })
		icons := maps.Clone(t.st.categoryIcons)
		delete(icons, name)
		colors := maps.Clone(t.st.categoryColors)
		delete(colors, name)

		if err := storage.PutAllJSON(ctx, t.store, map[string]any{
			key:                       next,
			storage.KeyCategoryIcons:  icons,
			storage.KeyCategoryColors: colors,
		}); err != nil {
			return err
		}
		t.setCustomCategories(kind, next)
		t.st.categoryIcons = icons
		t.st.categoryColors = colors
		return nil
	})
}

// SetCategoryIcon maps a category to an icon URL.
func (t *Tracker) SetCategoryIcon(ctx context.Context, category, url string) error {
	return t.mutate(ctx, func() error {
		icons := maps.Clone(t.st.categoryIcons)
		icons[category] = url
		if err := storage.PutJSON(ctx, t.store, storage.KeyCategoryIcons, icons); err != nil {
			return err
		}
		t.st.categoryIcons = icons
		return nil
	})
}

// SetCategoryColor maps a category to a display color.
func (t *Tracker) SetCategoryColor(ctx context.Context, category, color string) error {
	return t.mutate(ctx, func() error {
		colors := maps.Clone(t.st.categoryColors)
		colors[category] = color
		if err := storage.PutJSON(ctx, t.store, storage.KeyCategoryColors, colors); err != nil {
			return err
		}
		t.st.categoryColors = colors
		return nil
	})
}

// SetCurrency switches the active currency.
func (t *Tracker) SetCurrency(ctx context.Context, currency string) error {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return core.ErrEmptyCurrency
	}
	return t.mutate(ctx, func() error {
		if err := storage.PutJSON(ctx, t.store, storage.KeyFilterCurrency, currency); err != nil {
			return err
		}
		t.st.currency = currency
		return nil
	})
}

func (t *Tracker) customCategories(kind core.CategoryKind) (string, []string) {
	if kind == core.IncomeCategories {
		return storage.KeyCustomIncomeCategories, t.st.customIncome
	}
	return storage.KeyCustomExpenseCategories, t.st.customExpense
}

func (t *Tracker) setCustomCategories(kind core.CategoryKind, list []string) {
	if kind == core.IncomeCategories {
		t.st.customIncome = list
		return
	}
	t.st.customExpense = list
}
