package core

import (
	"errors"
	"testing"
)

func TestRegistryLookups(t *testing.T) {
	label, err := LabelOf(CategoryFood)
	if err != nil || label != "Food & Dining" {
		t.Fatalf("LabelOf(food) = %q, %v", label, err)
	}
	color, err := ColorOf(CategorySalary)
	if err != nil || color != "#4CAF50" {
		t.Fatalf("ColorOf(salary) = %q, %v", color, err)
	}
	typ, err := TypeOf(CategoryHousing)
	if err != nil || typ != Expense {
		t.Fatalf("TypeOf(housing) = %q, %v", typ, err)
	}

	for _, fn := range []func() error{
		func() error { _, err := LabelOf("mystery"); return err },
		func() error { _, err := ColorOf("mystery"); return err },
		func() error { _, err := TypeOf("mystery"); return err },
	} {
		if err := fn(); !errors.Is(err, ErrUnknownCategory) {
			t.Fatalf("expected ErrUnknownCategory, got %v", err)
		}
	}

	// The synthetic chart bucket is not a registry member.
	if _, err := TypeOf(CategoryOther); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory for %q, got %v", CategoryOther, err)
	}
}

func TestCategoriesFor(t *testing.T) {
	income := CategoriesFor(Income)
	if len(income) != 4 {
		t.Fatalf("expected 4 income categories, got %d", len(income))
	}
	if income[0].Category != CategorySalary {
		t.Fatalf("expected salary first, got %s", income[0].Category)
	}
	expense := CategoriesFor(Expense)
	if len(expense) != 14 {
		t.Fatalf("expected 14 expense categories, got %d", len(expense))
	}
	for _, opt := range expense {
		typ, err := TypeOf(opt.Category)
		if err != nil || typ != Expense {
			t.Fatalf("%s classified as %q (%v)", opt.Category, typ, err)
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"food", CategoryFood, true},
		{"Food & Dining", CategoryFood, true},
		{"FOOD", CategoryFood, true},
		{"personal care", CategoryPersonalCare, true},
		{"Other Income", CategoryOtherIncome, true},
		{" salary ", CategorySalary, true},
		{"lottery", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ParseCategory(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		} else if !errors.Is(err, ErrUnknownCategory) {
			t.Fatalf("ParseCategory(%q) expected ErrUnknownCategory, got %v", tc.in, err)
		}
	}
}
