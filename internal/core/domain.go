package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   RecurringFrequency = "daily"
	Weekly  RecurringFrequency = "weekly"
	Monthly RecurringFrequency = "monthly"
	Yearly  RecurringFrequency = "yearly"
)

type (
	TransactionType string

	RecurringFrequency string

	// Date is a calendar date with day granularity. The time-of-day
	// portion of the embedded time is ignored by all comparisons.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID                 string             `json:"id"`
		Amount             Money              `json:"amount"`
		Type               TransactionType    `json:"type"`
		Category           Category           `json:"category"`
		Description        string             `json:"description"`
		Date               Date               `json:"date"`
		IsRecurring        bool               `json:"is_recurring"`
		RecurringFrequency RecurringFrequency `json:"recurring_frequency,omitempty"` // set only when IsRecurring
	}

	// DateRange is an inclusive start/end calendar-date pair.
	DateRange struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCategoryMismatch = errors.New("category does not match transaction type")
	ErrInvalidFrequency = errors.New("invalid recurring frequency")
	ErrInvalidRange     = errors.New("start date after end date")
	ErrMissingMonth     = errors.New("missing budget month")
	ErrNoBudgetTotal    = errors.New("total budgeted must be positive")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (f RecurringFrequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseISODate parses a "YYYY-MM-DD" string.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as "YYYY-MM-DD".
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MarshalJSON emits the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON parses "YYYY-MM-DD"; an empty string yields the zero
// Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthKey returns the date's month formatted as "YYYY-MM".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// YearKey returns the date's year formatted as "YYYY".
func (d Date) YearKey() string {
	return d.Format("2006")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// day normalizes to midnight UTC so comparisons ignore time-of-day.
func (d Date) day() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	catType, err := TypeOf(t.Category)
	if err != nil {
		return err
	}
	if catType != t.Type {
		return ErrCategoryMismatch
	}
	if t.IsRecurring {
		if !t.RecurringFrequency.Valid() {
			return ErrInvalidFrequency
		}
	} else if t.RecurringFrequency != "" {
		return ErrInvalidFrequency
	}
	return nil
}

func (r DateRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	if r.Start.day().After(r.End.day()) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether d falls within the range, inclusive on both
// ends, at day granularity.
func (r DateRange) Contains(d Date) bool {
	day := d.day()
	return !day.Before(r.Start.day()) && !day.After(r.End.day())
}
