package aggregate

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func row(po, team string, poAmount, invAmount float64) schema.CanonicalRow {
	return schema.CanonicalRow{
		PONumber:      po,
		CreationDate:  date(2024, time.January, 10),
		MarketerName:  "Smith",
		VendorName:    "Acme",
		TeamName:      team,
		POAmount:      poAmount,
		InvoiceAmount: invAmount,
		Status:        "Open",
	}
}

func TestGroupByPO(t *testing.T) {
	t.Run("max amount, summed invoices, amount left", func(t *testing.T) {
		groups := GroupByPO([]schema.CanonicalRow{
			row("PO1", "A", 100, 30),
			row("PO1", "A", 100, 20),
		})
		require.Len(t, groups, 1)
		g := groups[0]
		assert.Equal(t, 100.0, g.POAmount)
		assert.Equal(t, 50.0, g.InvoiceSum)
		assert.Equal(t, 50.0, g.AmountLeft)
		assert.Len(t, g.Rows, 2)
	})

	t.Run("amount left can go negative", func(t *testing.T) {
		groups := GroupByPO([]schema.CanonicalRow{
			row("PO1", "A", 100, 90),
			row("PO1", "A", 100, 60),
		})
		require.Len(t, groups, 1)
		assert.Equal(t, -50.0, groups[0].AmountLeft)
	})

	t.Run("invoice sums do not accumulate float drift", func(t *testing.T) {
		rows := make([]schema.CanonicalRow, 10)
		for i := range rows {
			rows[i] = row("PO1", "A", 10, 0.1)
		}
		groups := GroupByPO(rows)
		require.Len(t, groups, 1)
		assert.Equal(t, 1.0, groups[0].InvoiceSum)
		assert.Equal(t, 9.0, groups[0].AmountLeft)
	})

	t.Run("majority team", func(t *testing.T) {
		groups := GroupByPO([]schema.CanonicalRow{
			row("PO1", "A", 100, 0),
			row("PO1", "A", 100, 0),
			row("PO1", "B", 100, 0),
		})
		require.Len(t, groups, 1)
		assert.Equal(t, "A", groups[0].TeamName)
	})

	t.Run("team ties join in first-encountered order", func(t *testing.T) {
		groups := GroupByPO([]schema.CanonicalRow{
			row("PO1", "A", 100, 0),
			row("PO1", "B", 100, 0),
		})
		require.Len(t, groups, 1)
		assert.Equal(t, "A / B", groups[0].TeamName)

		groups = GroupByPO([]schema.CanonicalRow{
			row("PO1", "B", 100, 0),
			row("PO1", "A", 100, 0),
		})
		assert.Equal(t, "B / A", groups[0].TeamName)
	})

	t.Run("first contributing row supplies identity fields", func(t *testing.T) {
		first := row("PO1", "A", 100, 0)
		first.MarketerName = "First Marketer"
		first.VendorName = "First Vendor"
		second := row("PO1", "A", 100, 0)
		second.MarketerName = "Second Marketer"
		second.VendorName = "Second Vendor"

		groups := GroupByPO([]schema.CanonicalRow{first, second})
		require.Len(t, groups, 1)
		assert.Equal(t, "First Marketer", groups[0].MarketerName)
		assert.Equal(t, "First Vendor", groups[0].VendorName)
		assert.True(t, groups[0].CreationDate.Equal(*first.CreationDate))
	})

	t.Run("groups appear in first-seen order", func(t *testing.T) {
		groups := GroupByPO([]schema.CanonicalRow{
			row("PO2", "A", 1, 0),
			row("PO1", "A", 1, 0),
			row("PO2", "A", 1, 0),
		})
		require.Len(t, groups, 2)
		assert.Equal(t, "PO2", groups[0].PONumber)
		assert.Equal(t, "PO1", groups[1].PONumber)
	})

	t.Run("group owns its row slice", func(t *testing.T) {
		input := []schema.CanonicalRow{row("PO1", "A", 100, 10)}
		groups := GroupByPO(input)
		input[0].PONumber = "mutated"
		assert.Equal(t, "PO1", groups[0].Rows[0].PONumber)
	})
}

func TestRowFilter(t *testing.T) {
	faker := gofakeit.New(7)
	base := func(po string) schema.CanonicalRow {
		r := row(po, "A", 100, 0)
		r.VendorName = faker.Company()
		return r
	}

	early := base("PO1")
	early.CreationDate = date(2024, time.January, 1)
	late := base("PO2")
	late.CreationDate = date(2024, time.June, 1)
	late.MarketerName = "Jones"
	late.Status = "Closed"
	rows := []schema.CanonicalRow{early, late}

	t.Run("start date keeps rows on or after", func(t *testing.T) {
		got := RowFilter{StartDate: date(2024, time.March, 1)}.Apply(rows)
		require.Len(t, got, 1)
		assert.Equal(t, "PO2", got[0].PONumber)

		got = RowFilter{StartDate: date(2024, time.June, 1)}.Apply(rows)
		require.Len(t, got, 1)
		assert.Equal(t, "PO2", got[0].PONumber)
	})

	t.Run("marketer terms match case-insensitive substrings", func(t *testing.T) {
		got := RowFilter{Marketers: []string{"jon"}}.Apply(rows)
		require.Len(t, got, 1)
		assert.Equal(t, "PO2", got[0].PONumber)

		got = RowFilter{Marketers: []string{"smith", "jones"}}.Apply(rows)
		assert.Len(t, got, 2)
	})

	t.Run("status matches exactly, All means everything", func(t *testing.T) {
		got := RowFilter{Status: "closed"}.Apply(rows)
		require.Len(t, got, 1)
		assert.Equal(t, "PO2", got[0].PONumber)

		assert.Len(t, RowFilter{Status: "All"}.Apply(rows), 2)
		assert.Len(t, RowFilter{}.Apply(rows), 2)
	})
}

func TestParseMarketers(t *testing.T) {
	assert.Equal(t, []string{"Smith", "Jones"}, ParseMarketers(" Smith , Jones ,"))
	assert.Nil(t, ParseMarketers("  "))
}

func TestSearch(t *testing.T) {
	withInvoice := row("PO-77", "Growth", 100, 10)
	withInvoice.InvoiceNumber = "INV-4455"
	groups := GroupByPO([]schema.CanonicalRow{
		withInvoice,
		row("PO-88", "Lifecycle", 200, 0),
	})

	t.Run("empty query returns everything", func(t *testing.T) {
		assert.Len(t, Search(groups, "  "), 2)
	})

	t.Run("matches PO number substring", func(t *testing.T) {
		got := Search(groups, "77")
		require.Len(t, got, 1)
		assert.Equal(t, "PO-77", got[0].PONumber)
	})

	t.Run("matches team name substring", func(t *testing.T) {
		got := Search(groups, "lifecycle")
		require.Len(t, got, 1)
		assert.Equal(t, "PO-88", got[0].PONumber)
	})

	t.Run("matches member invoice numbers", func(t *testing.T) {
		got := Search(groups, "4455")
		require.Len(t, got, 1)
		assert.Equal(t, "PO-77", got[0].PONumber)
	})

	t.Run("unmatched query filters everything out", func(t *testing.T) {
		assert.Empty(t, Search(groups, "zzzzzz"))
	})
}

func TestComputeMetrics(t *testing.T) {
	grd := row("PO1", "A", 100, 40)
	grd.GRDate = date(2024, time.February, 1)
	rows := []schema.CanonicalRow{
		grd,
		row("PO1", "A", 100, 10),
		row("PO2", "B", 200, 0),
	}
	groups := GroupByPO(rows)

	m := ComputeMetrics(rows, groups)
	assert.Equal(t, 2, m.UniquePOs)
	assert.Equal(t, 1, m.InvoicesGoodsReceived)
	assert.Equal(t, 300.0, m.TotalPOAmount)
	assert.Equal(t, 250.0, m.TotalAmountLeft)
}
