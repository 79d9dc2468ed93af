package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

func TestParseNumeric(t *testing.T) {
	t.Run("empty inputs coerce to zero without diagnostics", func(t *testing.T) {
		for _, v := range []schema.CellValue{schema.Empty(), schema.Text(""), schema.Text("   ")} {
			got, diag := ParseNumeric(v)
			assert.Zero(t, got)
			assert.Nil(t, diag)
		}
	})

	t.Run("numbers pass through unchanged", func(t *testing.T) {
		got, diag := ParseNumeric(schema.Number(1234.56))
		assert.Equal(t, 1234.56, got)
		assert.Nil(t, diag)
	})

	t.Run("strips currency symbols and separators", func(t *testing.T) {
		cases := map[string]float64{
			"$2,000":     2000,
			"€1,500.25":  1500.25,
			"£99":        99,
			"₹10,00,000": 1000000,
			"  42.5  ":   42.5,
			"-17":        -17,
		}
		for in, want := range cases {
			got, diag := ParseNumeric(schema.Text(in))
			assert.Equal(t, want, got, "input %q", in)
			assert.Nil(t, diag, "input %q", in)
		}
	})

	t.Run("accounting negatives", func(t *testing.T) {
		got, diag := ParseNumeric(schema.Text("(1,234.50)"))
		assert.Equal(t, -1234.5, got)
		assert.Nil(t, diag)

		got, diag = ParseNumeric(schema.Text("($500)"))
		assert.Equal(t, -500.0, got)
		assert.Nil(t, diag)
	})

	t.Run("unparsable text coerces to zero with a diagnostic", func(t *testing.T) {
		got, diag := ParseNumeric(schema.Text("pending approval"))
		assert.Zero(t, got)
		require.NotNil(t, diag)
		assert.Equal(t, schema.SeverityWarning, diag.Severity)
		assert.Equal(t, "pending approval", diag.Context["value"])
	})

	t.Run("temporal cells coerce to zero with a diagnostic", func(t *testing.T) {
		got, diag := ParseNumeric(schema.Temporal(time.Now()))
		assert.Zero(t, got)
		assert.NotNil(t, diag)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("empty yields nil without diagnostics", func(t *testing.T) {
		for _, v := range []schema.CellValue{schema.Empty(), schema.Text(""), schema.Text("  ")} {
			got, diag := ParseDate(v)
			assert.Nil(t, got)
			assert.Nil(t, diag)
		}
	})

	t.Run("temporal cells pass through", func(t *testing.T) {
		want := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)
		got, diag := ParseDate(schema.Temporal(want))
		require.NotNil(t, got)
		assert.True(t, got.Equal(want))
		assert.Nil(t, diag)
	})

	t.Run("ISO string keeps the calendar day", func(t *testing.T) {
		got, diag := ParseDate(schema.Text("2024-01-15"))
		require.NotNil(t, got)
		assert.Nil(t, diag)
		y, m, d := got.Date()
		assert.Equal(t, 2024, y)
		assert.Equal(t, time.January, m)
		assert.Equal(t, 15, d)
	})

	t.Run("US slash dates", func(t *testing.T) {
		got, diag := ParseDate(schema.Text("3/14/2024"))
		require.NotNil(t, got)
		assert.Nil(t, diag)
		y, m, d := got.Date()
		assert.Equal(t, 2024, y)
		assert.Equal(t, time.March, m)
		assert.Equal(t, 14, d)
	})

	t.Run("two-digit years resolve month-first", func(t *testing.T) {
		for _, s := range []string{"1/15/24", "01-15-24", "01-15-24 00:00"} {
			got, diag := ParseDate(schema.Text(s))
			require.NotNil(t, got, "input %q", s)
			assert.Nil(t, diag)
			y, m, d := got.Date()
			assert.Equal(t, 2024, y, "input %q", s)
			assert.Equal(t, time.January, m)
			assert.Equal(t, 15, d)
		}
	})

	t.Run("Excel serial numbers decode through the spreadsheet library", func(t *testing.T) {
		// Serial 45292 is 2024-01-01 in the 1900 date system.
		got, diag := ParseDate(schema.Number(45292))
		require.NotNil(t, got)
		assert.Nil(t, diag)
		y, m, d := got.Date()
		assert.Equal(t, 2024, y)
		assert.Equal(t, time.January, m)
		assert.Equal(t, 1, d)
	})

	t.Run("fractional serials carry the time of day", func(t *testing.T) {
		got, diag := ParseDate(schema.Number(45292.5))
		require.NotNil(t, got)
		assert.Nil(t, diag)
		assert.Equal(t, 12, got.Hour())
	})

	t.Run("invalid strings yield nil with a diagnostic", func(t *testing.T) {
		got, diag := ParseDate(schema.Text("not a date"))
		assert.Nil(t, got)
		require.NotNil(t, diag)
		assert.Equal(t, schema.SeverityWarning, diag.Severity)
	})

	t.Run("negative serials yield nil with a diagnostic", func(t *testing.T) {
		got, diag := ParseDate(schema.Number(-3))
		assert.Nil(t, got)
		assert.NotNil(t, diag)
	})
}
