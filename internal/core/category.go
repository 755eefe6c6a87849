package core

import "strings"

// Category identifies a fixed classification tag for a transaction.
// The set of categories is compiled in; lookups on anything outside it
// return ErrUnknownCategory rather than a placeholder.
type Category string

const (
	// Income categories.
	CategorySalary      Category = "salary"
	CategoryFreelance   Category = "freelance"
	CategoryInvestments Category = "investments"
	CategoryOtherIncome Category = "other_income"

	// Expense categories.
	CategoryHousing        Category = "housing"
	CategoryTransportation Category = "transportation"
	CategoryFood           Category = "food"
	CategoryUtilities      Category = "utilities"
	CategoryHealthcare     Category = "healthcare"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryEducation      Category = "education"
	CategoryPersonalCare   Category = "personal_care"
	CategoryTravel         Category = "travel"
	CategoryDebt           Category = "debt"
	CategorySavings        Category = "savings"
	CategoryGiftsDonations Category = "gifts_donations"
	CategoryOtherExpense   Category = "other_expense"
)

// CategoryOther is the synthetic chart bucket produced by TopWithOther.
// It is not part of the registry and never valid on a transaction.
const CategoryOther Category = "other"

// NeutralColor is the color token for the synthetic "other" bucket.
const NeutralColor = "#9E9E9E"

// CategoryOption pairs a category with its display label.
type CategoryOption struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
}

type categoryInfo struct {
	category Category
	label    string
	color    string
	txType   TransactionType
}

// registry order drives CategoriesFor output order.
var registry = []categoryInfo{
	{CategorySalary, "Salary", "#4CAF50", Income},
	{CategoryFreelance, "Freelance", "#8BC34A", Income},
	{CategoryInvestments, "Investments", "#009688", Income},
	{CategoryOtherIncome, "Other Income", "#2E7D32", Income},

	{CategoryHousing, "Housing", "#E91E63", Expense},
	{CategoryTransportation, "Transportation", "#9C27B0", Expense},
	{CategoryFood, "Food & Dining", "#FF9800", Expense},
	{CategoryUtilities, "Utilities", "#F44336", Expense},
	{CategoryHealthcare, "Healthcare", "#3F51B5", Expense},
	{CategoryEntertainment, "Entertainment", "#673AB7", Expense},
	{CategoryShopping, "Shopping", "#FF5722", Expense},
	{CategoryEducation, "Education", "#2196F3", Expense},
	{CategoryPersonalCare, "Personal Care", "#795548", Expense},
	{CategoryTravel, "Travel", "#607D8B", Expense},
	{CategoryDebt, "Debt Payments", "#D32F2F", Expense},
	{CategorySavings, "Savings & Investments", "#00BCD4", Expense},
	{CategoryGiftsDonations, "Gifts & Donations", "#FFC107", Expense},
	{CategoryOtherExpense, "Other Expenses", "#9E9E9E", Expense},
}

var registryIndex = func() map[Category]categoryInfo {
	m := make(map[Category]categoryInfo, len(registry))
	for _, info := range registry {
		m[info.category] = info
	}
	return m
}()

// LabelOf returns the display label for a category.
func LabelOf(c Category) (string, error) {
	info, ok := registryIndex[c]
	if !ok {
		return "", ErrUnknownCategory
	}
	return info.label, nil
}

// ColorOf returns the color token for a category.
func ColorOf(c Category) (string, error) {
	info, ok := registryIndex[c]
	if !ok {
		return "", ErrUnknownCategory
	}
	return info.color, nil
}

// TypeOf returns the income/expense classification of a category.
func TypeOf(c Category) (TransactionType, error) {
	info, ok := registryIndex[c]
	if !ok {
		return "", ErrUnknownCategory
	}
	return info.txType, nil
}

// CategoriesFor returns the registry entries whose classification
// matches the given type, in registry order.
func CategoriesFor(t TransactionType) []CategoryOption {
	var out []CategoryOption
	for _, info := range registry {
		if info.txType == t {
			out = append(out, CategoryOption{Category: info.category, Label: info.label})
		}
	}
	return out
}

// ParseCategory resolves a category identifier or display label,
// case-insensitively. "Food & Dining", "food" and "FOOD" all resolve
// to CategoryFood.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if _, ok := registryIndex[Category(norm)]; ok {
		return Category(norm), nil
	}
	// Identifier form with spaces instead of underscores.
	ident := strings.ReplaceAll(norm, " ", "_")
	if _, ok := registryIndex[Category(ident)]; ok {
		return Category(ident), nil
	}
	for _, info := range registry {
		if strings.EqualFold(info.label, strings.TrimSpace(s)) {
			return info.category, nil
		}
	}
	return "", ErrUnknownCategory
}
