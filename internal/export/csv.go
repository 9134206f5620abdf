// Package export writes invoice summaries to tabular formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"einvoice/internal/summary"
)

// Header is the column row of every export.
var Header = []string{"Invoice ID", "Issue Date", "Due Date", "Supplier", "Buyer", "Currency", "Total"}

// Row returns the export columns of s, in Header order.
func Row(s summary.Summary) []string {
	return []string{
		s.InvoiceID,
		s.IssueDate,
		s.DueDate,
		s.Supplier,
		s.Buyer,
		s.Currency,
		s.Total.StringFixed(2),
	}
}

// WriteCSV writes the header and one row per summary to w.
func WriteCSV(w io.Writer, rows []summary.Summary) error {
	const op = "WriteCSV"

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}
	for _, s := range rows {
		if err := cw.Write(Row(s)); err != nil {
			return fmt.Errorf("%s: failed to write row %s: %w", op, s.InvoiceID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: failed to flush: %w", op, err)
	}
	return nil
}
