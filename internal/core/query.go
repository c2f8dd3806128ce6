package core

import (
	"sort"
	"strings"
)

// SortKey selects the ordering of a filtered view.
type SortKey string

const (
	SortDateDesc   SortKey = "date_desc"
	SortDateAsc    SortKey = "date_asc"
	SortAmountDesc SortKey = "amount_desc"
	SortAmountAsc  SortKey = "amount_asc"
)

// IsValid reports whether k names a known sort order.
func (k SortKey) IsValid() bool {
	switch k {
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return true
	default:
		return false
	}
}

// FilterSpec describes a requested view of the store. Zero values mean "no
// constraint"; an empty sort key falls back to date descending.
type FilterSpec struct {
	Month    string  // YYYY-MM prefix match on the date
	Category string  // exact match
	Search   string  // case-insensitive substring match on the description
	Sort     SortKey // ordering of the result
}

// Filter derives a new, independently ordered slice from records without
// mutating the input. Filters apply in sequence: month prefix, exact
// category, description substring, then sort.
//
// Every sort order is a total order with an explicit tie-break so that equal
// primary keys still produce a deterministic result: date ties break on
// creation time (matching the date direction), amount ties break on
// descending date.
func Filter(records []Expense, spec FilterSpec) []Expense {
	out := make([]Expense, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(spec.Search))
	for _, e := range records {
		if spec.Month != "" && !strings.HasPrefix(e.Date, spec.Month) {
			continue
		}
		if spec.Category != "" && e.Category != spec.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		out = append(out, e)
	}

	less := lessFunc(spec.Sort)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessFunc(key SortKey) func(a, b Expense) bool {
	switch key {
	case SortDateAsc:
		return func(a, b Expense) bool {
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.CreatedAt < b.CreatedAt
		}
	case SortAmountDesc:
		return func(a, b Expense) bool {
			if c := a.Amount.Cmp(b.Amount); c != 0 {
				return c > 0
			}
			return a.Date > b.Date
		}
	case SortAmountAsc:
		return func(a, b Expense) bool {
			if c := a.Amount.Cmp(b.Amount); c != 0 {
				return c < 0
			}
			return a.Date > b.Date
		}
	default: // SortDateDesc
		return func(a, b Expense) bool {
			if a.Date != b.Date {
				return a.Date > b.Date
			}
			return a.CreatedAt > b.CreatedAt
		}
	}
}
