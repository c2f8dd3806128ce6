package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"-3", "-3", true},
		{"", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.out, got.String(), "input %q", tc.in)
	}
}

func TestRoundAmountHalfAwayFromZero(t *testing.T) {
	d := decimal.RequireFromString("12.345")
	assert.Equal(t, "12.35", RoundAmount(d, "USD").String())

	d = decimal.RequireFromString("12.344")
	assert.Equal(t, "12.34", RoundAmount(d, "USD").String())
}

func TestRoundAmountZeroDecimalCurrency(t *testing.T) {
	d := decimal.RequireFromString("1200.6")
	assert.Equal(t, "1201", RoundAmount(d, "JPY").String())
	assert.Equal(t, "1201", RoundAmount(d, "vnd").String())
	assert.Equal(t, "1200.6", RoundAmount(d, "EUR").String())
}

func TestCurrencyPrecision(t *testing.T) {
	assert.Equal(t, int32(2), CurrencyPrecision("USD"))
	assert.Equal(t, int32(0), CurrencyPrecision("JPY"))
	assert.Equal(t, int32(0), CurrencyPrecision("krw"))
	assert.Equal(t, int32(2), CurrencyPrecision(""))
}
