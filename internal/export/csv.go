// Package export renders transaction lists for download.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finsight/internal/domain"
)

// Header is the first line of every CSV export.
var Header = []string{"Date", "Description", "Reference", "Category", "Type", "Amount", "Balance", "Notes"}

// ContentType is the media type served with a CSV export.
const ContentType = "text/csv;charset=utf-8"

// CSV renders txns as a header line followed by one row per transaction,
// joined by "\n" without a trailing newline. Description and notes are always
// quoted; the other text columns are quoted only when they contain a comma,
// a quote or a line break.
func CSV(txns []domain.Transaction) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, t := range txns {
		b.WriteByte('\n')
		b.WriteString(row(t))
	}
	return b.String()
}

// WriteCSV writes the CSV rendering of txns to w.
func WriteCSV(w io.Writer, txns []domain.Transaction) error {
	if _, err := io.WriteString(w, CSV(txns)); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// Filename is the download name for an export taken at now.
func Filename(now time.Time) string {
	return "transaction_history_" + now.Format(time.DateOnly) + ".csv"
}

func row(t domain.Transaction) string {
	fields := []string{
		quoteIfNeeded(t.Date),
		quote(t.Description),
		quoteIfNeeded(deref(t.ReferenceID)),
		quoteIfNeeded(t.Category),
		quoteIfNeeded(string(t.Type)),
		formatNumber(t.Amount),
		"",
		quote(deref(t.Notes)),
	}
	// A zero balance exports as an empty cell, same as a missing one.
	if t.BalanceAfterTxn != nil && *t.BalanceAfterTxn != 0 {
		fields[6] = formatNumber(*t.BalanceAfterTxn)
	}
	return strings.Join(fields, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
