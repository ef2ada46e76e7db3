package core

const (
	ExpenseCategories CategoryKind = "expense"
	IncomeCategories  CategoryKind = "income"
)

// SettlementCategory marks transactions synthesized by settle-up.
const SettlementCategory = "Settlement"

type CategoryKind string

var (
	builtinExpenseCategories = []string{
		"Groceries", "Utilities", "Rent/Mortgage", "Transportation", "Entertainment",
		"Dining Out", "Shopping", "Health", "Education", "Subscriptions", SettlementCategory, "Other",
	}
	builtinIncomeCategories = []string{
		"Salary", "Freelance", "Investment", "Gift", SettlementCategory, "Other",
	}
)

func (k CategoryKind) IsValid() bool {
	return k == ExpenseCategories || k == IncomeCategories
}

// BuiltinCategories returns a copy of the fixed categories for kind.
func BuiltinCategories(kind CategoryKind) []string {
	switch kind {
	case ExpenseCategories:
		return append([]string(nil), builtinExpenseCategories...)
	case IncomeCategories:
		return append([]string(nil), builtinIncomeCategories...)
	default:
		return nil
	}
}

func IsBuiltinCategory(kind CategoryKind, name string) bool {
	for _, c := range BuiltinCategories(kind) {
		if c == name {
			return true
		}
	}
	return false
}
