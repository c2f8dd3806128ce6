package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used whenever no currency is configured or supplied.
const DefaultCurrency = "USD"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type (
	// Expense is one persisted spending entry. JSON tags define both the
	// storage document format and the export/import snapshot format.
	Expense struct {
		ID          string          `json:"id"`
		Date        string          `json:"date"` // YYYY-MM-DD
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Currency    string          `json:"currency"`
		CreatedAt   int64           `json:"createdAt"` // Unix milliseconds
		UpdatedAt   int64           `json:"updatedAt"` // Unix milliseconds
	}

	// Settings holds the per-installation preferences.
	Settings struct {
		Currency string `json:"currency"`
	}

	// Draft carries the mutable fields of an expense as entered by the
	// user, before validation.
	Draft struct {
		Date        string
		Category    string
		Description string
		Amount      decimal.Decimal
		Currency    string
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrMissingCategory = errors.New("missing category")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// DefaultSettings returns the settings used before any were persisted.
func DefaultSettings() Settings {
	return Settings{Currency: DefaultCurrency}
}

// ValidDate reports whether s matches the YYYY-MM-DD calendar pattern.
func ValidDate(s string) bool {
	return datePattern.MatchString(s)
}

// Clean validates and normalizes a draft. The date must match the calendar
// pattern, the category must be non-empty after trimming and the amount must
// be strictly positive. The currency falls back to preferred, then to
// DefaultCurrency, and the amount is rounded to the currency's precision.
func (d Draft) Clean(preferred string) (Draft, error) {
	d.Date = strings.TrimSpace(d.Date)
	if !ValidDate(d.Date) {
		return Draft{}, ErrInvalidDate
	}
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		return Draft{}, ErrMissingCategory
	}
	if d.Amount.Sign() <= 0 {
		return Draft{}, ErrInvalidAmount
	}
	d.Description = strings.TrimSpace(d.Description)
	d.Currency = strings.TrimSpace(d.Currency)
	if d.Currency == "" {
		d.Currency = preferred
	}
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	d.Amount = RoundAmount(d.Amount, d.Currency)
	return d, nil
}

// NewExpense builds a record from a cleaned draft, assigning a fresh
// identifier and both timestamps.
func NewExpense(d Draft, now time.Time) Expense {
	ts := now.UnixMilli()
	return Expense{
		ID:          uuid.NewString(),
		Date:        d.Date,
		Category:    d.Category,
		Description: d.Description,
		Amount:      d.Amount,
		Currency:    d.Currency,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// Apply replaces the mutable fields of e with the cleaned draft. The
// identifier and creation timestamp are preserved, UpdatedAt is refreshed.
func (e Expense) Apply(d Draft, now time.Time) Expense {
	e.Date = d.Date
	e.Category = d.Category
	e.Description = d.Description
	e.Amount = d.Amount
	e.Currency = d.Currency
	e.UpdatedAt = now.UnixMilli()
	return e
}
