// Package parser normalizes raw workbook grids into canonical rows. It
// owns container decoding (xlsx, legacy xls, csv), the per-sheet
// normalization walk and the whole-workbook ingestion pass.
package parser

import (
	"strings"

	"github.com/dcastanho/po-insight/internal/domain/ingest/coerce"
	"github.com/dcastanho/po-insight/internal/domain/ingest/header"
	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// Sheet is one worksheet's raw cell grid plus its name. The name matters:
// every row normalized out of a sheet carries it as the team attribute.
type Sheet struct {
	Name string
	Grid [][]schema.CellValue
}

// Result accumulates the output of normalizing one sheet or a whole
// workbook. Diagnostics carry every non-fatal event (skipped rows,
// coercion fallbacks, header detection warnings) so callers can assert
// on them without scraping logs.
type Result struct {
	Rows            []schema.CanonicalRow
	Diagnostics     []schema.Diagnostic
	RowsSkipped     int
	SheetsProcessed int
}

func (r *Result) warn(d *schema.Diagnostic) {
	if d != nil {
		r.Diagnostics = append(r.Diagnostics, *d)
	}
}

// Options tunes the normalization pass.
type Options struct {
	// MaxHeaderScanRows bounds the header-row search depth; zero means
	// header.DefaultMaxScanRows.
	MaxHeaderScanRows int
}

// NormalizeSheet runs the full pipeline over one sheet: header-row
// detection, positional field mapping, then row-by-row coercion and
// validation. Rows missing a PO number or a parseable creation date are
// dropped with a diagnostic; everything else is kept best-effort. Source
// row order is preserved.
func NormalizeSheet(sheet Sheet, table *header.Table, opts Options) Result {
	var res Result
	if len(sheet.Grid) == 0 {
		return res
	}
	res.SheetsProcessed = 1

	detection, diag := header.Detect(sheet.Grid, table, opts.MaxHeaderScanRows)
	res.warn(diag)

	// Positional map: column index -> canonical field ("" when the column
	// is unrecognized and therefore ignored).
	fieldByCol := make([]schema.Field, len(detection.Headers))
	for i, h := range detection.Headers {
		if f, ok := table.Resolve(h); ok {
			fieldByCol[i] = f
		}
	}

	teamName := strings.TrimSpace(sheet.Name)

	for rowIdx := detection.HeaderRowIndex + 1; rowIdx < len(sheet.Grid); rowIdx++ {
		row := sheet.Grid[rowIdx]
		if allEmpty(row) {
			continue
		}

		raw := make(map[schema.Field]schema.CellValue, len(fieldByCol))
		for col, field := range fieldByCol {
			if field == "" || col >= len(row) {
				continue
			}
			raw[field] = row[col]
		}

		creationDate, dateDiag := coerce.ParseDate(raw[schema.FieldCreationDate])
		poNumber := strings.TrimSpace(raw[schema.FieldPONumber].String())

		if poNumber == "" {
			d := schema.Warn("skipping row: missing PO number",
				"sheet", sheet.Name, "row", rowIdx)
			res.warn(&d)
			res.RowsSkipped++
			continue
		}
		if creationDate == nil {
			res.warn(dateDiag)
			d := schema.Warn("skipping row: missing or invalid creation date",
				"sheet", sheet.Name, "row", rowIdx)
			res.warn(&d)
			res.RowsSkipped++
			continue
		}

		poAmount, d1 := coerce.ParseNumeric(raw[schema.FieldPOAmount])
		res.warn(d1)
		invoiceAmount, d2 := coerce.ParseNumeric(raw[schema.FieldInvoiceAmount])
		res.warn(d2)
		grDate, d3 := coerce.ParseDate(raw[schema.FieldGRDate])
		res.warn(d3)

		status := strings.TrimSpace(raw[schema.FieldStatus].String())
		if status == "" {
			status = "N/A"
		}

		res.Rows = append(res.Rows, schema.CanonicalRow{
			PONumber:      poNumber,
			CreationDate:  creationDate,
			MarketerName:  strings.TrimSpace(raw[schema.FieldMarketerName].String()),
			VendorName:    strings.TrimSpace(raw[schema.FieldVendorName].String()),
			TeamName:      teamName,
			POAmount:      poAmount,
			InvoiceNumber: strings.TrimSpace(raw[schema.FieldInvoiceNumber].String()),
			InvoiceAmount: invoiceAmount,
			GRDate:        grDate,
			Status:        status,
		})
	}

	return res
}

// IngestSheets drives NormalizeSheet across every sheet in source order
// and concatenates the output. Row-level problems never abort the pass;
// an input with no sheets or only empty sheets yields an empty result.
func IngestSheets(sheets []Sheet, table *header.Table, opts Options) Result {
	var total Result
	for _, sheet := range sheets {
		if len(sheet.Grid) == 0 {
			continue
		}
		res := NormalizeSheet(sheet, table, opts)
		total.Rows = append(total.Rows, res.Rows...)
		total.Diagnostics = append(total.Diagnostics, res.Diagnostics...)
		total.RowsSkipped += res.RowsSkipped
		total.SheetsProcessed += res.SheetsProcessed
	}
	return total
}

func allEmpty(row []schema.CellValue) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
