// Package importer reads transaction CSV files into domain records.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ErrFormat indicates a file-level problem with the CSV structure.
var ErrFormat = errors.New("invalid import format")

// Mode controls how row-level errors are handled.
type Mode string

const (
	// Strict aborts the whole import on the first bad row. Nothing is
	// returned for committing.
	Strict Mode = "strict"
	// BestEffort skips bad rows and imports the rest.
	BestEffort Mode = "best_effort"
)

// ParseMode maps a query value to a Mode, defaulting to Strict.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(Strict):
		return Strict, nil
	case string(BestEffort):
		return BestEffort, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrFormat, s)
	}
}

// RowError records why a single data row was rejected. Line is the
// 1-based line number in the file, header included.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result is the outcome of reading a file.
type Result struct {
	Transactions []core.Transaction
	Imported     int
	Skipped      int
	RowErrors    []RowError
}

// column indices of the header row, -1 when absent
type columns struct {
	date, typ, category, description, amount, recurring, frequency int
}

const (
	headerDate        = "Date"
	headerType        = "Type"
	headerCategory    = "Category"
	headerDescription = "Description"
	headerAmount      = "Amount"
	headerRecurring   = "Recurring"
	headerFrequency   = "Frequency"
)

// ReadTransactions parses a transaction CSV. The whole file is parsed
// before anything is returned so a strict import either yields every
// row or none. Returned transactions carry no IDs; the caller assigns
// them when committing.
func ReadTransactions(r io.Reader, mode Mode) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("%w: empty file", ErrFormat)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return Result{}, err
	}

	var result Result
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if rowErr := handleRowError(&result, mode, line, err); rowErr != nil {
				return Result{}, rowErr
			}
			continue
		}
		if isBlank(record) {
			continue
		}

		t, err := parseRow(record, cols)
		if err != nil {
			if rowErr := handleRowError(&result, mode, line, err); rowErr != nil {
				return Result{}, rowErr
			}
			continue
		}

		result.Transactions = append(result.Transactions, t)
		result.Imported++
	}

	return result, nil
}

func handleRowError(result *Result, mode Mode, line int, err error) error {
	if mode == Strict {
		return RowError{Line: line, Err: err}
	}
	result.Skipped++
	result.RowErrors = append(result.RowErrors, RowError{Line: line, Err: err})
	return nil
}

func resolveColumns(header []string) (columns, error) {
	index := func(name string) int {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
		return -1
	}

	cols := columns{
		date:        index(headerDate),
		typ:         index(headerType),
		category:    index(headerCategory),
		description: index(headerDescription),
		amount:      index(headerAmount),
		recurring:   index(headerRecurring),
		frequency:   index(headerFrequency),
	}

	var missing []string
	for _, c := range []struct {
		idx  int
		name string
	}{
		{cols.date, headerDate},
		{cols.typ, headerType},
		{cols.category, headerCategory},
		{cols.description, headerDescription},
		{cols.amount, headerAmount},
	} {
		if c.idx == -1 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: missing required columns %s", ErrFormat, strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRow(record []string, cols columns) (core.Transaction, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseDate(field(cols.date))
	if err != nil {
		return core.Transaction{}, err
	}

	typ := core.TransactionType(strings.ToLower(field(cols.typ)))

	category, err := core.ParseCategory(field(cols.category))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("category %q: %w", field(cols.category), err)
	}

	amount, err := core.ParseDecimalToCents(field(cols.amount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", field(cols.amount), err)
	}

	t := core.Transaction{
		Amount:      core.Money{Cents: amount},
		Type:        typ,
		Category:    category,
		Description: field(cols.description),
		Date:        date,
	}

	if cols.recurring != -1 && strings.EqualFold(field(cols.recurring), "yes") {
		t.IsRecurring = true
		t.RecurringFrequency = core.Monthly
		if cols.frequency != -1 && field(cols.frequency) != "" {
			t.RecurringFrequency = core.RecurringFrequency(strings.ToLower(field(cols.frequency)))
		}
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// parseDate accepts the original export's MM/DD/YYYY as well as ISO
// YYYY-MM-DD.
func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, core.ErrMissingDate
	}
	if strings.Contains(s, "/") {
		parsed, err := time.Parse("1/2/2006", s)
		if err != nil {
			return core.Date{}, fmt.Errorf("date %q: %w", s, core.ErrMissingDate)
		}
		return core.DateOf(parsed), nil
	}
	date, err := core.ParseISODate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("date %q: %w", s, core.ErrMissingDate)
	}
	return date, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
