package schema

// DefaultSynonyms returns the recognized header spellings for each
// canonical field. Matching is case- and punctuation-insensitive: every
// entry is normalized before lookup, so "PO #", "po#" and "Po.#" all meet
// the same synonym.
//
// TeamName deliberately has no synonyms; it is derived from the sheet
// name, never from a column.
func DefaultSynonyms() map[Field][]string {
	return map[Field][]string{
		FieldPONumber:     {"po number", "po no", "po #", "purchase order no", "po"},
		FieldCreationDate: {"creation date", "created on", "po date", "date", "po request sent", "request date", "po sent date"},
		FieldMarketerName: {"marketer", "marketer name", "owner", "requestor"},
		FieldVendorName:   {"vendor", "supplier", "vendor name"},
		FieldTeamName:     {},
		FieldPOAmount: {
			"Estimate Amt.", "po amount", "amount", "total amount", "$ amount",
			"est. amount", "estimate amount", "po amt", "est amt", "estimated amount", "value",
		},
		FieldInvoiceNumber: {"invoice no", "inv #", "invoice number"},
		FieldInvoiceAmount: {"invoice amount", "inv amount"},
		FieldGRDate:        {"gr date", "goods received date", "receipt date"},
		// Some exports label the status column by what it tracks.
		FieldStatus: {"po open or closed", "open/closed", "status", "$ left on po"},
	}
}
