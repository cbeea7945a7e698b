// Package gcsexport renders cashflow tables and uploads them to Google
// Cloud Storage.
package gcsexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/cashflow"
)

// Format is a supported export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format string, defaulting to CSV when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Render serializes a table in the given format.
func Render(t *cashflow.Table, f Format) ([]byte, error) {
	if f == FormatJSON {
		return json.MarshalIndent(t.Render(), "", "  ")
	}
	return renderCSV(t)
}

// renderCSV writes one row per card plus a TOTAL row, amounts with centavo
// precision.
func renderCSV(t *cashflow.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"card_name"}, t.Months...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("renderCSV: header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(t.Months)+1)
		record = append(record, row.CardName)
		for _, m := range t.Months {
			record = append(record, fixed(row.Totals[m]))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("renderCSV: row %s: %w", row.CardName, err)
		}
	}

	totals := make([]string, 0, len(t.Months)+1)
	totals = append(totals, "TOTAL")
	for _, m := range t.Months {
		totals = append(totals, fixed(t.Totals[m]))
	}
	if err := w.Write(totals); err != nil {
		return nil, fmt.Errorf("renderCSV: totals: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("renderCSV: flush: %w", err)
	}
	return buf.Bytes(), nil
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}
