// Package exchange implements the export and import formats: CSV for
// spreadsheet use and a versioned JSON snapshot for full backup/restore.
package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"spendlog/internal/core"
)

var csvHeader = []string{"Date", "Category", "Description", "Amount", "Currency"}

// WriteCSV writes one row per record after the header, RFC 4180 quoted.
// Callers pass the current filtered view, not necessarily the whole store.
func WriteCSV(w io.Writer, records []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range records {
		row := []string{e.Date, e.Category, e.Description, e.Amount.String(), e.Currency}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename builds a date-stamped export filename, e.g.
// "expenses_2024-03-01.csv".
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02"), ext)
}
