// Package coerce turns heterogeneous cell representations into typed
// values. Both coercers are total: whatever the cell holds, they return a
// usable value plus an optional warning diagnostic, and never an error.
package coerce

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

var currencyStripper = strings.NewReplacer(
	"$", "", "€", "", "£", "", "₹", "", ",", "",
)

// ParseNumeric coerces a cell to a float64. Empty cells and anything
// unparsable become 0 (with a diagnostic for the latter); numeric cells
// pass through unchanged. Currency symbols and thousands separators are
// stripped, and accounting-style parenthesised negatives such as
// "(1,000)" parse as -1000.
func ParseNumeric(v schema.CellValue) (float64, *schema.Diagnostic) {
	switch v.Kind {
	case schema.KindEmpty:
		return 0, nil
	case schema.KindNumber:
		return v.Number, nil
	case schema.KindText:
		if strings.TrimSpace(v.Text) == "" {
			return 0, nil
		}
		s := strings.TrimSpace(currencyStripper.Replace(v.Text))
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			s = "-" + s[1:len(s)-1]
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			diag := schema.Warn("could not parse numeric value, coerced to 0", "value", v.Text)
			return 0, &diag
		}
		f, _ := d.Float64()
		return f, nil
	default:
		diag := schema.Warn("unexpected cell type for numeric parsing, coerced to 0", "value", v.String())
		return 0, &diag
	}
}

// Layouts tried for string dates, most specific first. Slash and dash
// forms are month-first, matching how the source workbooks are produced.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006 15:04",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
	"1/2/06 15:04",
	"1/2/06",
	"01/02/06",
	"01-02-06 15:04",
	"1-2-06",
	"01-02-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDate coerces a cell to a calendar timestamp. Empty cells yield
// nil. Numeric cells are interpreted as Excel serial date numbers and
// decoded through the spreadsheet library. String cells go through a
// generic layout list. Every failure yields nil plus a diagnostic; the
// row itself is never aborted here.
func ParseDate(v schema.CellValue) (*time.Time, *schema.Diagnostic) {
	switch v.Kind {
	case schema.KindEmpty:
		return nil, nil
	case schema.KindTime:
		t := v.Time
		return &t, nil
	case schema.KindNumber:
		t, err := excelize.ExcelDateToTime(v.Number, false)
		if err != nil {
			diag := schema.Warn("failed to decode Excel date serial number", "value", v.Number)
			return nil, &diag
		}
		return &t, nil
	case schema.KindText:
		s := strings.TrimSpace(v.Text)
		if s == "" {
			return nil, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t, nil
			}
		}
		diag := schema.Warn("could not parse date value", "value", v.Text)
		return nil, &diag
	default:
		diag := schema.Warn("unexpected cell type for date parsing", "value", v.String())
		return nil, &diag
	}
}
