// Package aggregate computes the per-PO view over canonical rows:
// grouping with derived amounts, row-level filtering, free-text search
// and summary metrics. Groups are derived data, recomputed from the
// current row set on every call; nothing here mutates its input.
package aggregate

import (
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// GroupByPO groups rows by PO number in first-seen order and derives the
// aggregate fields: the group's PO amount is the maximum seen (exports
// repeat the PO line per invoice entry), the invoice sum is summed with
// decimals so float drift never reaches the totals, and amount left may
// go negative to signal overspend. Creation date, marketer and vendor
// come from the first contributing row.
func GroupByPO(rows []schema.CanonicalRow) []schema.GroupedPo {
	byPO := make(map[string][]schema.CanonicalRow)
	var order []string
	for _, row := range rows {
		if _, seen := byPO[row.PONumber]; !seen {
			order = append(order, row.PONumber)
		}
		byPO[row.PONumber] = append(byPO[row.PONumber], row)
	}

	groups := make([]schema.GroupedPo, 0, len(order))
	for _, poNumber := range order {
		members := byPO[poNumber]

		poAmount := members[0].POAmount
		invoiceSum := decimal.Zero
		for _, m := range members {
			if m.POAmount > poAmount {
				poAmount = m.POAmount
			}
			invoiceSum = invoiceSum.Add(decimal.NewFromFloat(m.InvoiceAmount))
		}
		sum, _ := invoiceSum.Float64()
		left, _ := decimal.NewFromFloat(poAmount).Sub(invoiceSum).Float64()

		owned := make([]schema.CanonicalRow, len(members))
		copy(owned, members)

		groups = append(groups, schema.GroupedPo{
			PONumber:     poNumber,
			CreationDate: members[0].CreationDate,
			MarketerName: members[0].MarketerName,
			VendorName:   members[0].VendorName,
			TeamName:     majorityTeam(members),
			POAmount:     poAmount,
			InvoiceSum:   sum,
			AmountLeft:   left,
			Rows:         owned,
		})
	}
	return groups
}

// majorityTeam returns the team name(s) with the highest occurrence count
// among the members. Ties are all kept, joined with " / " in the order
// the teams were first encountered.
func majorityTeam(members []schema.CanonicalRow) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range members {
		if _, seen := counts[m.TeamName]; !seen {
			order = append(order, m.TeamName)
		}
		counts[m.TeamName]++
	}

	max := 0
	for _, team := range order {
		if counts[team] > max {
			max = counts[team]
		}
	}

	var winners []string
	for _, team := range order {
		if counts[team] == max {
			winners = append(winners, team)
		}
	}
	return strings.Join(winners, " / ")
}

// RowFilter narrows the canonical row set before grouping. Zero values
// mean "no constraint" for each criterion.
type RowFilter struct {
	// StartDate keeps rows whose creation date is on or after it.
	StartDate *time.Time
	// Marketers keeps rows whose marketer name contains any entry,
	// case-insensitively.
	Marketers []string
	// Status keeps rows with a case-insensitive exact status match.
	// "All" behaves like empty.
	Status string
}

// Apply returns the rows passing every criterion, in source order.
func (f RowFilter) Apply(rows []schema.CanonicalRow) []schema.CanonicalRow {
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status == "all" {
		status = ""
	}

	var marketers []string
	for _, m := range f.Marketers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			marketers = append(marketers, m)
		}
	}

	var out []schema.CanonicalRow
	for _, row := range rows {
		if f.StartDate != nil {
			if row.CreationDate == nil || row.CreationDate.Before(*f.StartDate) {
				continue
			}
		}
		if len(marketers) > 0 && !matchesAnyMarketer(row.MarketerName, marketers) {
			continue
		}
		if status != "" && strings.ToLower(row.Status) != status {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matchesAnyMarketer(name string, marketers []string) bool {
	lower := strings.ToLower(name)
	for _, m := range marketers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ParseMarketers splits a comma-separated marketer filter the way users
// type it ("Smith, Jones") into individual terms.
func ParseMarketers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Search keeps the groups matching a free-text query against PO number,
// marketer, vendor, team and the invoice numbers of member rows. Substring
// matching comes first; a fuzzy fallback catches near-miss typos in the
// name fields.
func Search(groups []schema.GroupedPo, query string) []schema.GroupedPo {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return groups
	}

	var out []schema.GroupedPo
	for _, g := range groups {
		if groupMatches(g, q) {
			out = append(out, g)
		}
	}
	return out
}

func groupMatches(g schema.GroupedPo, q string) bool {
	for _, field := range []string{g.PONumber, g.MarketerName, g.VendorName, g.TeamName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, row := range g.Rows {
		if strings.Contains(strings.ToLower(row.InvoiceNumber), q) {
			return true
		}
	}
	return fuzzy.MatchNormalizedFold(q, g.MarketerName) ||
		fuzzy.MatchNormalizedFold(q, g.VendorName)
}

// Metrics summarizes a filtered dataset for display.
type Metrics struct {
	UniquePOs             int
	InvoicesGoodsReceived int
	TotalPOAmount         float64
	TotalAmountLeft       float64
}

// ComputeMetrics derives the summary figures the dashboard shows: unique
// PO count and goods-received invoice count from the rows, amount totals
// from the groups.
func ComputeMetrics(rows []schema.CanonicalRow, groups []schema.GroupedPo) Metrics {
	var m Metrics

	seen := make(map[string]struct{})
	for _, row := range rows {
		seen[row.PONumber] = struct{}{}
		if row.GRDate != nil {
			m.InvoicesGoodsReceived++
		}
	}
	m.UniquePOs = len(seen)

	amount := decimal.Zero
	left := decimal.Zero
	for _, g := range groups {
		amount = amount.Add(decimal.NewFromFloat(g.POAmount))
		left = left.Add(decimal.NewFromFloat(g.AmountLeft))
	}
	m.TotalPOAmount, _ = amount.Float64()
	m.TotalAmountLeft, _ = left.Float64()
	return m
}
