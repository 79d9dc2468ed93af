// Package header resolves arbitrary spreadsheet header spellings to
// canonical fields and locates the header row inside a raw sheet grid.
package header

import (
	"strings"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// DefaultMaxScanRows is how deep Detect searches for a header row when the
// caller does not override it.
const DefaultMaxScanRows = 8

// Normalize reduces a header spelling to its comparable form: lowercase
// with everything stripped except a-z, 0-9 and '#'. The '#' exception
// keeps spellings like "Vendor" and "Vendor#" distinct.
func Normalize(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(header) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '#' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Table is an immutable lookup from normalized header spellings to
// canonical fields. Build one at startup and inject it wherever headers
// are resolved; tests can supply their own synonym sets.
type Table struct {
	byNorm map[string]schema.Field
}

// NewTable builds a Table from a synonym map. If two fields normalize a
// synonym to the same string the later registration wins, so synonym
// lists must stay mutually exclusive after normalization.
func NewTable(synonyms map[schema.Field][]string) *Table {
	t := &Table{byNorm: make(map[string]schema.Field)}
	for field, spellings := range synonyms {
		for _, s := range spellings {
			norm := Normalize(s)
			if norm == "" {
				continue
			}
			t.byNorm[norm] = field
		}
	}
	return t
}

// NewDefaultTable builds the Table over schema.DefaultSynonyms.
func NewDefaultTable() *Table {
	return NewTable(schema.DefaultSynonyms())
}

// Resolve maps a raw header spelling to its canonical field.
func (t *Table) Resolve(header string) (schema.Field, bool) {
	f, ok := t.byNorm[Normalize(header)]
	return f, ok
}

// Contains reports whether the spelling resolves to any canonical field.
func (t *Table) Contains(header string) bool {
	_, ok := t.byNorm[Normalize(header)]
	return ok
}

// Detection is the outcome of a header-row scan.
type Detection struct {
	HeaderRowIndex int
	Headers        []string
	Score          int
}

// Detect scans the first min(maxScan, len(grid)) rows and picks the row
// with the most cells that resolve through the table. Ties keep the
// earliest row because the comparison is strictly greater-than. A scan
// with no matches at all falls back to row 0 and reports a warning
// diagnostic; the caller proceeds regardless.
func Detect(grid [][]schema.CellValue, table *Table, maxScan int) (Detection, *schema.Diagnostic) {
	if maxScan <= 0 {
		maxScan = DefaultMaxScanRows
	}

	best := Detection{HeaderRowIndex: 0, Headers: cellsToStrings(rowAt(grid, 0))}

	limit := maxScan
	if len(grid) < limit {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		headers := cellsToStrings(grid[i])
		score := 0
		for _, h := range headers {
			if table.Contains(h) {
				score++
			}
		}
		if score > best.Score {
			best = Detection{HeaderRowIndex: i, Headers: headers, Score: score}
		}
	}

	if best.Score == 0 {
		d := schema.Warn("no header row matched any known synonym, defaulting to first row",
			"rowsScanned", limit)
		return best, &d
	}
	return best, nil
}

func rowAt(grid [][]schema.CellValue, i int) []schema.CellValue {
	if i < 0 || i >= len(grid) {
		return nil
	}
	return grid[i]
}

func cellsToStrings(row []schema.CellValue) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.String()
	}
	return out
}
