// Package export renders grouped POs as CSV text. The format is a fixed
// contract with downstream spreadsheet consumers: string fields are
// always double-quoted, dates print as MM/DD/YYYY (or N/A), numerics are
// unquoted plain numbers. encoding/csv quotes only when it must, so the
// rows are rendered by hand.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// Header is the exact first line of every export.
const Header = "PO Number,Creation Date,Marketer Name,Vendor Name,Team Name,PO Amount,Invoice Sum,Amount Left"

// Write renders the groups to w, one line per PO, in the given order.
func Write(w io.Writer, groups []schema.GroupedPo) error {
	if _, err := io.WriteString(w, Header+"\n"); err != nil {
		return err
	}
	for _, g := range groups {
		line := strings.Join([]string{
			quote(g.PONumber),
			quote(formatDate(g.CreationDate)),
			quote(g.MarketerName),
			quote(g.VendorName),
			quote(g.TeamName),
			formatNumber(g.POAmount),
			formatNumber(g.InvoiceSum),
			formatNumber(g.AmountLeft),
		}, ",")
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the full CSV document as a string.
func Render(groups []schema.GroupedPo) string {
	var b strings.Builder
	_ = Write(&b, groups)
	return b.String()
}

// quote wraps a field in double quotes, doubling any embedded quote per
// the CSV convention.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("01/02/2006")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
