// Package schema defines the canonical data model shared by the ingestion
// pipeline: the fixed set of canonical fields, the tagged cell-value variant
// produced at the decoding boundary, and the normalized row and grouped-PO
// records everything downstream consumes.
package schema

import (
	"strconv"
	"time"
)

// Field identifies one attribute of the canonical purchase-order schema.
type Field string

const (
	FieldPONumber      Field = "poNumber"
	FieldCreationDate  Field = "creationDate"
	FieldMarketerName  Field = "marketerName"
	FieldVendorName    Field = "vendorName"
	FieldTeamName      Field = "teamName"
	FieldPOAmount      Field = "poAmount"
	FieldInvoiceNumber Field = "invoiceNumber"
	FieldInvoiceAmount Field = "invoiceAmount"
	FieldGRDate        Field = "grDate"
	FieldStatus        Field = "status"
)

// CellKind discriminates the CellValue variant.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindTime
)

// CellValue is the closed union of everything a spreadsheet cell can hold
// once decoded. Coercers are total functions over this type, so no code
// past the decoding boundary ever inspects library-specific cell types.
type CellValue struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

func Empty() CellValue               { return CellValue{Kind: KindEmpty} }
func Text(s string) CellValue        { return CellValue{Kind: KindText, Text: s} }
func Number(f float64) CellValue     { return CellValue{Kind: KindNumber, Number: f} }
func Temporal(t time.Time) CellValue { return CellValue{Kind: KindTime, Time: t} }

// IsEmpty reports whether the cell carries no usable value.
func (v CellValue) IsEmpty() bool {
	return v.Kind == KindEmpty || (v.Kind == KindText && v.Text == "")
}

// String renders the cell the way a spreadsheet UI would: numbers without
// exponent notation, times as RFC 3339, empty cells as "".
func (v CellValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// CanonicalRow is one normalized invoice/PO line item. Rows in the final
// set always have a non-empty PONumber and a non-nil CreationDate; every
// other field is best-effort.
type CanonicalRow struct {
	PONumber      string     `json:"poNumber"`
	CreationDate  *time.Time `json:"creationDate"`
	MarketerName  string     `json:"marketerName"`
	VendorName    string     `json:"vendorName"`
	TeamName      string     `json:"teamName"`
	POAmount      float64    `json:"poAmount"`
	InvoiceNumber string     `json:"invoiceNumber"`
	InvoiceAmount float64    `json:"invoiceAmount"`
	GRDate        *time.Time `json:"grDate"`
	Status        string     `json:"status"`
}

// GroupedPo aggregates every CanonicalRow sharing one PO number. Rows is
// owned by the group: it is a copy, never a view into the caller's slice.
type GroupedPo struct {
	PONumber     string         `json:"poNumber"`
	CreationDate *time.Time     `json:"creationDate"`
	MarketerName string         `json:"marketerName"`
	VendorName   string         `json:"vendorName"`
	TeamName     string         `json:"teamName"`
	POAmount     float64        `json:"poAmount"`
	InvoiceSum   float64        `json:"invoiceSum"`
	AmountLeft   float64        `json:"amountLeft"`
	Rows         []CanonicalRow `json:"rows"`
}

// Severity levels for ingestion diagnostics.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one non-fatal ingestion event (coercion fallback, skipped
// row, missing header). Diagnostics are collected and returned with the
// result rather than only logged, so callers can assert on them.
type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Context  map[string]any `json:"context,omitempty"`
}

// Warn builds a warning-level diagnostic. Context key/value pairs are
// given alternating, mirroring slog argument style; a trailing odd key is
// dropped.
func Warn(message string, kv ...any) Diagnostic {
	d := Diagnostic{Severity: SeverityWarning, Message: message}
	if len(kv) >= 2 {
		d.Context = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, ok := kv[i].(string)
			if !ok {
				continue
			}
			d.Context[k] = kv[i+1]
		}
	}
	return d
}
