package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Normalize turns a loosely shaped candidate object (a decoded JSON map, as
// read from storage or an import file) into a well-formed expense record, or
// reports why the candidate must be dropped.
//
// Field rules, applied independently:
//   - id: kept if a non-empty string, otherwise a fresh identifier
//   - date: must match YYYY-MM-DD or the whole candidate is rejected
//   - category: coerced to string and trimmed, must be non-empty
//   - description: coerced to string and trimmed, may be empty
//   - amount: coerced to a decimal, rounded to the currency's precision;
//     rejected when missing or not a finite number
//   - currency: DefaultCurrency when missing or not a non-empty string
//   - createdAt: now when absent; updatedAt: createdAt when absent
func Normalize(raw map[string]any, now time.Time) (Expense, error) {
	id := coerceString(raw["id"])
	if id == "" {
		id = uuid.NewString()
	}

	date := coerceString(raw["date"])
	if !ValidDate(date) {
		return Expense{}, ErrInvalidDate
	}

	category := strings.TrimSpace(coerceString(raw["category"]))
	if category == "" {
		return Expense{}, ErrMissingCategory
	}
	description := strings.TrimSpace(coerceString(raw["description"]))

	amount, ok := coerceDecimal(raw["amount"])
	if !ok {
		return Expense{}, ErrInvalidAmount
	}

	currency := strings.TrimSpace(coerceString(raw["currency"]))
	if currency == "" {
		currency = DefaultCurrency
	}
	amount = RoundAmount(amount, currency)

	createdAt, ok := coerceMillis(raw["createdAt"])
	if !ok {
		createdAt = now.UnixMilli()
	}
	updatedAt, ok := coerceMillis(raw["updatedAt"])
	if !ok || updatedAt < createdAt {
		updatedAt = createdAt
	}

	return Expense{
		ID:          id,
		Date:        date,
		Category:    category,
		Description: description,
		Amount:      amount,
		Currency:    currency,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// NormalizeAll normalizes a batch of candidates, discarding invalid entries.
// Partial success is the intended behavior: one malformed candidate never
// aborts the batch. The number of dropped candidates is returned alongside
// the surviving records.
func NormalizeAll(raws []map[string]any, now time.Time) (records []Expense, dropped int) {
	records = make([]Expense, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			dropped++
			continue
		}
		e, err := Normalize(raw, now)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, e)
	}
	return records, dropped
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func coerceDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case decimal.Decimal:
		return t, true
	default:
		return decimal.Decimal{}, false
	}
}

func coerceMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
