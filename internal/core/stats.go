package core

import "sort"

// Aggregation over transaction snapshots. Every function here is pure:
// the same input always yields the same output, and inputs are never
// mutated. Callers re-run them after each change instead of keeping
// incremental state.

type Totals struct {
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Balance  Money `json:"balance"`
}

// CategorySummary is an ephemeral per-category rollup. Percentage is
// relative to the summed total of the group it was computed in.
type CategorySummary struct {
	Category   Category `json:"category"`
	Amount     Money    `json:"amount"`
	Percentage float64  `json:"percentage"`
	Color      string   `json:"color"`
}

type MonthlySummary struct {
	Month   string `json:"month"` // "YYYY-MM"
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
	Balance Money  `json:"balance"`
}

type YearlySummary struct {
	Year             string           `json:"year"` // "YYYY"
	Income           Money            `json:"income"`
	Expense          Money            `json:"expense"`
	Balance          Money            `json:"balance"`
	MonthlySummaries []MonthlySummary `json:"monthly_summaries"`
}

// ComputeTotals sums income and expense amounts. Empty input yields an
// all-zero result.
func ComputeTotals(ts []Transaction) Totals {
	var totals Totals
	for _, t := range ts {
		switch t.Type {
		case Income:
			totals.Income = totals.Income.Add(t.Amount)
		case Expense:
			totals.Expenses = totals.Expenses.Add(t.Amount)
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expenses)
	return totals
}

// SummarizeByCategory restricts to the given type, sums amounts per
// category and computes each category's share of the restricted total.
// The result is sorted descending by amount; ties keep the order in
// which categories were first encountered.
func SummarizeByCategory(ts []Transaction, typ TransactionType) []CategorySummary {
	sums := make(map[Category]Money)
	var order []Category
	var total Money
	for _, t := range ts {
		if t.Type != typ {
			continue
		}
		if _, seen := sums[t.Category]; !seen {
			order = append(order, t.Category)
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	out := make([]CategorySummary, 0, len(order))
	for _, cat := range order {
		amount := sums[cat]
		pct := 0.0
		if total.Cents > 0 {
			pct = float64(amount.Cents) / float64(total.Cents) * 100
		}
		color, err := ColorOf(cat)
		if err != nil {
			color = NeutralColor
		}
		out = append(out, CategorySummary{
			Category:   cat,
			Amount:     amount,
			Percentage: pct,
			Color:      color,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// SummarizeByMonth groups transactions by calendar month and folds
// income/expense per group. Months with no transactions do not appear;
// the result is sorted ascending by month key.
func SummarizeByMonth(ts []Transaction) []MonthlySummary {
	months := make(map[string]*MonthlySummary)
	for _, t := range ts {
		key := t.Date.MonthKey()
		m, ok := months[key]
		if !ok {
			m = &MonthlySummary{Month: key}
			months[key] = m
		}
		switch t.Type {
		case Income:
			m.Income = m.Income.Add(t.Amount)
		case Expense:
			m.Expense = m.Expense.Add(t.Amount)
		}
		m.Balance = m.Income.Sub(m.Expense)
	}

	out := make([]MonthlySummary, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// SummarizeByYear folds monthly summaries by their year prefix,
// preserving each year's contributing months in ascending order. The
// input is expected sorted ascending by month (SummarizeByMonth output).
func SummarizeByYear(months []MonthlySummary) []YearlySummary {
	years := make(map[string]*YearlySummary)
	var order []string
	for _, m := range months {
		key := m.Month[:4]
		y, ok := years[key]
		if !ok {
			y = &YearlySummary{Year: key}
			years[key] = y
			order = append(order, key)
		}
		y.Income = y.Income.Add(m.Income)
		y.Expense = y.Expense.Add(m.Expense)
		y.Balance = y.Income.Sub(y.Expense)
		y.MonthlySummaries = append(y.MonthlySummaries, m)
	}

	out := make([]YearlySummary, 0, len(order))
	for _, key := range order {
		out = append(out, *years[key])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Recent returns the k transactions with the most recent dates,
// descending by date. Ties keep the input's relative order.
func Recent(ts []Transaction, k int) []Transaction {
	out := make([]Transaction, len(ts))
	copy(out, ts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.day().After(out[j].Date.day())
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// TopWithOther keeps the n largest summaries and collapses the rest
// into one synthetic "other" entry carrying the remainder's summed
// amount and percentage. Input with n entries or fewer is returned
// unchanged.
func TopWithOther(sums []CategorySummary, n int) []CategorySummary {
	if len(sums) <= n {
		return sums
	}
	top := make([]CategorySummary, n, n+1)
	copy(top, sums[:n])

	var restAmount Money
	var restPct float64
	for _, s := range sums[n:] {
		restAmount = restAmount.Add(s.Amount)
		restPct += s.Percentage
	}
	return append(top, CategorySummary{
		Category:   CategoryOther,
		Amount:     restAmount,
		Percentage: restPct,
		Color:      NeutralColor,
	})
}

// FilterByRange returns the transactions whose date falls within r,
// inclusive on both ends. The engine itself never filters; this is the
// caller-side helper applied before aggregation.
func FilterByRange(ts []Transaction, r DateRange) []Transaction {
	var out []Transaction
	for _, t := range ts {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
