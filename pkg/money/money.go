// Package money formats monetary amounts for display. It wraps go-money
// for locale-correct rendering and shopspring/decimal for the
// float-to-minor-units conversion, so "$1,234.50" style output never goes
// through lossy float math.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a display-oriented monetary value.
type Money struct {
	m *money.Money
}

// NewFromFloat converts a float amount into Money in the given ISO-4217
// currency. Unknown currency codes fall back to USD.
func NewFromFloat(amount float64, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency("USD")
	}

	d := decimal.NewFromFloat(amount)
	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := d.Mul(multiplier).Round(0).IntPart()

	return &Money{m: money.New(cents, currency.Code)}
}

// Display renders the amount with its currency symbol and grouping,
// e.g. "$2,000.00".
func (mo *Money) Display() string {
	return mo.m.Display()
}

// Format is shorthand for NewFromFloat(amount, code).Display().
func Format(amount float64, currencyCode string) string {
	return NewFromFloat(amount, currencyCode).Display()
}
