// Package exporter writes the transaction list as CSV.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"fintrack/internal/core"
)

var header = []string{"Date", "Type", "Category", "Description", "Amount", "Recurring", "Frequency"}

// WriteCSV writes transactions in the interchange format the importer
// reads back: ISO dates, decimal amounts, category labels.
func WriteCSV(w io.Writer, transactions []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range transactions {
		label, err := core.LabelOf(t.Category)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		recurring, frequency := "No", ""
		if t.IsRecurring {
			recurring = "Yes"
			frequency = string(t.RecurringFrequency)
		}
		row := []string{
			t.Date.ISO(),
			string(t.Type),
			label,
			t.Description,
			t.Amount.Decimal(),
			recurring,
			frequency,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write transaction %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
