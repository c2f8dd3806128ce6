package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ActiveCurrency is the outcome of inspecting the currencies of a record
// list: either a single usable code or the mixed marker. A mixed result means
// a summed total is meaningless and callers must degrade the display instead
// of summing across currencies.
type ActiveCurrency struct {
	Code  string `json:"code,omitempty"`
	Mixed bool   `json:"mixed,omitempty"`
}

// SingleCurrency tags a list as using exactly one currency.
func SingleCurrency(code string) ActiveCurrency {
	return ActiveCurrency{Code: code}
}

// MixedCurrencies tags a list as spanning more than one currency.
func MixedCurrencies() ActiveCurrency {
	return ActiveCurrency{Mixed: true}
}

// CurrencyOf determines the single currency in use across records. An empty
// list yields the preferred currency; more than one distinct code yields the
// mixed marker. Records with an empty currency are ignored.
func CurrencyOf(records []Expense, preferred string) ActiveCurrency {
	var seen string
	found := false
	for _, e := range records {
		if e.Currency == "" {
			continue
		}
		if !found {
			seen = e.Currency
			found = true
			continue
		}
		if e.Currency != seen {
			return MixedCurrencies()
		}
	}
	if !found {
		return SingleCurrency(preferred)
	}
	return SingleCurrency(seen)
}

// Total sums the amounts of records. The sum is currency-agnostic; check
// CurrencyOf before presenting it as a single-currency value.
func Total(records []Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range records {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// CategoryTotal is an amount aggregated under one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// ByCategory sums amounts per category, ordered by descending total. Equal
// totals keep the order in which their categories first appear in the input.
func ByCategory(records []Expense) []CategoryTotal {
	index := make(map[string]int, len(records))
	out := make([]CategoryTotal, 0, len(records))
	for _, e := range records {
		if i, ok := index[e.Category]; ok {
			out[i].Total = out[i].Total.Add(e.Amount)
			continue
		}
		index[e.Category] = len(out)
		out = append(out, CategoryTotal{Category: e.Category, Total: e.Amount})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// Categories returns the sorted unique category names present in records.
func Categories(records []Expense) []string {
	set := make(map[string]struct{}, len(records))
	for _, e := range records {
		set[e.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
