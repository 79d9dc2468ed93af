package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// DecodeError means the input bytes could not be parsed as a spreadsheet
// container at all. It is the only fatal ingestion failure; row-level
// problems are diagnostics, never errors.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s container: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DecodeWorkbook sniffs the container format by magic bytes and returns
// the ordered sheets as raw cell grids. XLSX and legacy XLS decoding is
// delegated to the spreadsheet libraries; anything that is neither is
// read as CSV, which behaves as a one-sheet workbook whose sheet name is
// the file's base name without extension.
func DecodeWorkbook(data []byte, filename string) ([]Sheet, error) {
	switch {
	case len(data) == 0:
		return nil, &DecodeError{Format: "workbook", Err: fmt.Errorf("empty input")}
	case bytes.HasPrefix(data, zipMagic):
		return decodeXLSX(data)
	case bytes.HasPrefix(data, oleMagic):
		return decodeXLS(data)
	default:
		return decodeCSV(data, filename)
	}
}

func decodeXLSX(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, &DecodeError{Format: "xlsx", Err: fmt.Errorf("sheet %q: %w", name, err)}
		}
		raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &DecodeError{Format: "xlsx", Err: fmt.Errorf("sheet %q: %w", name, err)}
		}
		grid := make([][]schema.CellValue, len(rows))
		for i, row := range rows {
			cells := make([]schema.CellValue, len(row))
			for j, formatted := range row {
				cells[j] = classifyXLSXCell(formatted, rawAt(raw, i, j))
			}
			grid[i] = cells
		}
		sheets = append(sheets, Sheet{Name: name, Grid: grid})
	}
	return sheets, nil
}

// rawAt reads the unformatted grid; the formatted and raw passes can
// trim trailing blank rows and cells differently.
func rawAt(grid [][]string, i, j int) string {
	if i >= len(grid) || j >= len(grid[i]) {
		return ""
	}
	return grid[i][j]
}

// classifyXLSXCell classifies by the formatted text first, then falls
// back to the stored value when a number format rewrote it. Date and
// currency masks render serials and amounts as text the coercers cannot
// read back, so such cells become Numbers carrying the stored value.
func classifyXLSXCell(formatted, raw string) schema.CellValue {
	cv := classifyCell(formatted)
	if cv.Kind != schema.KindText {
		return cv
	}
	r := strings.TrimSpace(raw)
	if r != "" && r != strings.TrimSpace(formatted) {
		if f, err := strconv.ParseFloat(r, 64); err == nil {
			return schema.Number(f)
		}
	}
	return cv
}

func decodeXLS(data []byte) ([]Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &DecodeError{Format: "xls", Err: err}
	}

	var sheets []Sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		var grid [][]schema.CellValue
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				grid = append(grid, nil)
				continue
			}
			cells := make([]schema.CellValue, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells[c] = classifyCell(row.Col(c))
			}
			grid = append(grid, cells)
		}
		sheets = append(sheets, Sheet{Name: ws.Name, Grid: collapseEmptyGrid(grid)})
	}
	return sheets, nil
}

// collapseEmptyGrid empties a grid holding only nil rows. A stored xls
// sheet with no rows still reports MaxRow 0, and the walk above would
// hand normalization a one-row grid of nothing.
func collapseEmptyGrid(grid [][]schema.CellValue) [][]schema.CellValue {
	for _, row := range grid {
		if row != nil {
			return grid
		}
	}
	return nil
}

func decodeCSV(data []byte, filename string) ([]Sheet, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectDelimiter(firstLine(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, &DecodeError{Format: "csv", Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	grid := make([][]schema.CellValue, len(records))
	for i, rec := range records {
		cells := make([]schema.CellValue, len(rec))
		for j, raw := range rec {
			cells[j] = classifyCell(raw)
		}
		grid[i] = cells
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if name == "" || name == "." {
		name = "Sheet1"
	}
	return []Sheet{{Name: name, Grid: grid}}, nil
}

// classifyCell assigns the tagged variant for a decoded cell string.
// A cell only becomes a Number when the text round-trips through float
// formatting unchanged; that keeps identifiers with leading zeros, dates
// and currency-formatted amounts as text for the coercers to handle.
func classifyCell(raw string) schema.CellValue {
	s := strings.TrimSpace(raw)
	if s == "" {
		return schema.Empty()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if strconv.FormatFloat(f, 'f', -1, 64) == s {
			return schema.Number(f)
		}
	}
	return schema.Text(s)
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimRight(text[:i], "\r")
	}
	return text
}

// detectDelimiter picks the delimiter that splits the header line into
// the most fields. Comma wins ties by ordering.
func detectDelimiter(line string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
