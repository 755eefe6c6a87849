package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "t1",
		Amount:      Money{Cents: 1000},
		Type:        Expense,
		Category:    CategoryFood,
		Description: "groceries",
		Date:        NewDate(2025, 1, 10),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrMissingDate},
		{"unknown category", func(tx *Transaction) { tx.Category = "lottery" }, ErrUnknownCategory},
		{"income category on expense", func(tx *Transaction) { tx.Category = CategorySalary }, ErrCategoryMismatch},
		{"recurring without frequency", func(tx *Transaction) { tx.IsRecurring = true }, ErrInvalidFrequency},
		{"frequency without recurring", func(tx *Transaction) { tx.RecurringFrequency = Weekly }, ErrInvalidFrequency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTransactionValidateRecurring(t *testing.T) {
	tx := validTransaction()
	tx.IsRecurring = true
	tx.RecurringFrequency = Monthly
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestDateRangeValidate(t *testing.T) {
	ok := DateRange{Start: NewDate(2025, 1, 1), End: NewDate(2025, 1, 31)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	inverted := DateRange{Start: NewDate(2025, 2, 1), End: NewDate(2025, 1, 1)}
	if err := inverted.Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: NewDate(2025, 1, 1), End: NewDate(2025, 1, 31)}
	cases := []struct {
		d    Date
		want bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 1, 31), true},
		{NewDate(2025, 1, 15), true},
		{NewDate(2024, 12, 31), false},
		{NewDate(2025, 2, 1), false},
		// Time-of-day on the boundary day must not exclude it.
		{Date{Time: time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)}, true},
	}
	for i, tc := range cases {
		if got := r.Contains(tc.d); got != tc.want {
			t.Fatalf("case %d: Contains(%s) = %v, want %v", i, tc.d.ISO(), got, tc.want)
		}
	}
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2025-07-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.ISO() != "2025-07-05" || d.MonthKey() != "2025-07" || d.YearKey() != "2025" {
		t.Fatalf("unexpected keys: %s %s %s", d.ISO(), d.MonthKey(), d.YearKey())
	}
	if _, err := ParseISODate("07/05/2025"); err == nil {
		t.Fatal("expected error for non-ISO input")
	}
}
