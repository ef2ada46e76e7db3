package tracker

import (
	"context"
	"errors"
	"slices"
	"testing"

	"quattrini/internal/core"
	"quattrini/internal/services"
)

func TestTracker_TagsCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, june)

	tx := expenseOn("Groceries", "10", core.NewDate(2025, 6, 1))
	tx.Tags = []string{"food", "urgent"}
	added, _ := f.tr.AddTransaction(ctx, tx)

	if err := f.tr.AddTag(ctx, "food"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if err := f.tr.AddTag(ctx, "travel"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if got := f.tr.Tags(); !slices.Equal(got, []string{"food", "urgent", "travel"}) {
		t.Fatalf("tags = %v", got)
	}

	if err := f.tr.DeleteTag(ctx, "urgent"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if got := f.tr.Tags(); slices.Contains(got, "urgent") {
		t.Fatalf("tag still registered: %v", got)
	}
	if got, _ := f.tr.Transaction(added.ID); !slices.Equal(got.Tags, []string{"food"}) {
		t.Fatalf("transaction tags = %v", got.Tags)
	}
	if got := f.tr.FilterTags(); !slices.Equal(got, []string{"all", "food"}) {
		t.Fatalf("filter tags = %v", got)
	}
	if n := len(f.tr.Transactions(services.Filter{Tag: "urgent"})); n != 0 {
		t.Fatalf("filter by deleted tag returned %d", n)
	}
}

func TestTracker_Categories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, june)

	if err := f.tr.AddCategory(ctx, core.ExpenseCategories, "Pets"); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if err := f.tr.AddCategory(ctx, core.ExpenseCategories, "Pets"); err != nil {
		t.Fatalf("duplicate AddCategory: %v", err)
	}
	if err := f.tr.SetCategoryIcon(ctx, "Pets", "https://example.test/paw.png"); err != nil {
		t.Fatalf("SetCategoryIcon: %v", err)
	}
	if err := f.tr.SetCategoryColor(ctx, "Pets", "#aa7744"); err != nil {
		t.Fatalf("SetCategoryColor: %v", err)
	}

	cats := f.tr.Categories(core.ExpenseCategories)
	if !slices.Equal(cats.Custom, []string{"Pets"}) || cats.Icons["Pets"] == "" || cats.Colors["Pets"] != "#aa7744" {
		t.Fatalf("categories = %+v", cats)
	}
	if all := cats.All(); all[len(all)-1] != "Pets" || all[0] != "Groceries" {
		t.Fatalf("All = %v", all)
	}
	if len(f.tr.Categories(core.IncomeCategories).Custom) != 0 {
		t.Fatal("expense category leaked into income")
	}

	if err := f.tr.DeleteCategory(ctx, core.ExpenseCategories, "Groceries"); !errors.Is(err, core.ErrBuiltinCategory) {
		t.Fatalf("err = %v, want ErrBuiltinCategory", err)
	}
	if err := f.tr.DeleteCategory(ctx, core.ExpenseCategories, "Pets"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	cats = f.tr.Categories(core.ExpenseCategories)
	if len(cats.Custom) != 0 || cats.Icons["Pets"] != "" || cats.Colors["Pets"] != "" {
		t.Fatalf("category remnants after delete: %+v", cats)
	}
	if err := f.tr.DeleteCategory(ctx, core.ExpenseCategories, "Pets"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := f.tr.AddCategory(ctx, "bogus", "X"); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
}
