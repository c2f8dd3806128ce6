// Package core holds the expense domain: records, validation, money
// handling, the query engine and the aggregation helpers.
//
// Amounts are decimal values rounded half away from zero to the currency's
// precision, so 12.345 USD stores as 12.35. Zero-decimal currencies keep no
// fractional digits at all.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts travel as plain JSON numbers in stored documents and export
// snapshots.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Currencies whose minor unit is the whole unit. Amounts in these keep zero
// fractional digits.
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
}

// CurrencyPrecision returns the number of fractional digits kept for a
// currency code: 0 for zero-decimal currencies, 2 otherwise.
func CurrencyPrecision(code string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(code)]; ok {
		return 0
	}
	return 2
}

// RoundAmount rounds half away from zero to the currency's precision.
func RoundAmount(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(CurrencyPrecision(currency))
}

// ParseAmount parses a user-entered amount. Both dot and comma decimal
// separators are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}
