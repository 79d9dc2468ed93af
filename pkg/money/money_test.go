package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "$2,000.00", Format(2000, "USD"))
	assert.Equal(t, "$1,234.50", Format(1234.5, "USD"))
	assert.Equal(t, "-$50.00", Format(-50, "USD"))
}

func TestFormatUnknownCurrencyFallsBackToUSD(t *testing.T) {
	assert.Equal(t, "$10.00", Format(10, "???"))
}
