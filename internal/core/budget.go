package core

import "time"

type BudgetCategory struct {
	Category   Category `json:"category"`
	Budgeted   Money    `json:"budgeted"`
	Spent      Money    `json:"spent"`
	Remaining  Money    `json:"remaining"`  // Budgeted - Spent, negative when overspent
	Percentage float64  `json:"percentage"` // Spent / Budgeted * 100, 0 when Budgeted is 0
}

// Budget is a per-month spending plan with one entry per expense
// category the user allocated to. TotalBudgeted is fixed at
// creation/edit time; TotalSpent and the per-category derived fields
// are rewritten by Reconcile.
type Budget struct {
	ID            string           `json:"id"`
	Month         string           `json:"month"` // "YYYY-MM"
	TotalBudgeted Money            `json:"total_budgeted"`
	TotalSpent    Money            `json:"total_spent"`
	Categories    []BudgetCategory `json:"categories"`
}

// Validate checks the creation-time invariants: a parseable month, a
// positive total allocation, and every entry an expense category with
// a positive target.
func (b Budget) Validate() error {
	if b.Month == "" {
		return ErrMissingMonth
	}
	if _, err := time.Parse("2006-01", b.Month); err != nil {
		return ErrMissingMonth
	}
	var total Money
	for _, bc := range b.Categories {
		typ, err := TypeOf(bc.Category)
		if err != nil {
			return err
		}
		if typ != Expense {
			return ErrCategoryMismatch
		}
		if err := bc.Budgeted.Validate(); err != nil {
			return err
		}
		total = total.Add(bc.Budgeted)
	}
	if total.Cents <= 0 {
		return ErrNoBudgetTotal
	}
	return nil
}

// ComputedTotalBudgeted sums the per-category targets.
func (b Budget) ComputedTotalBudgeted() Money {
	var total Money
	for _, bc := range b.Categories {
		total = total.Add(bc.Budgeted)
	}
	return total
}

// Reconcile recomputes a budget's spent figures from the full
// transaction collection and returns the updated copy. Expense
// transactions dated within the budget's month, inclusive of both
// month boundaries, are summed per category; each category's
// remaining and percentage are derived from its unchanged target.
// TotalBudgeted is left untouched. Reconciling twice with the same
// inputs yields the same output.
func Reconcile(b Budget, ts []Transaction) (Budget, error) {
	monthRange, err := MonthRange(b.Month)
	if err != nil {
		return b, err
	}

	spentByCategory := make(map[Category]Money)
	for _, t := range ts {
		if t.Type != Expense || !monthRange.Contains(t.Date) {
			continue
		}
		spentByCategory[t.Category] = spentByCategory[t.Category].Add(t.Amount)
	}

	out := b
	out.Categories = make([]BudgetCategory, len(b.Categories))
	var totalSpent Money
	for i, bc := range b.Categories {
		spent := spentByCategory[bc.Category]
		bc.Spent = spent
		bc.Remaining = bc.Budgeted.Sub(spent)
		if bc.Budgeted.Cents > 0 {
			bc.Percentage = float64(spent.Cents) / float64(bc.Budgeted.Cents) * 100
		} else {
			bc.Percentage = 0
		}
		out.Categories[i] = bc
		totalSpent = totalSpent.Add(spent)
	}
	out.TotalSpent = totalSpent
	return out, nil
}
