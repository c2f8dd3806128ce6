package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftClean(t *testing.T) {
	good := Draft{
		Date:        "2024-03-01",
		Category:    " Food ",
		Description: " lunch ",
		Amount:      decimal.RequireFromString("12.345"),
		Currency:    "USD",
	}
	d, err := good.Clean("EUR")
	require.NoError(t, err)
	assert.Equal(t, "Food", d.Category)
	assert.Equal(t, "lunch", d.Description)
	assert.Equal(t, "12.35", d.Amount.String(), "half away from zero")
	assert.Equal(t, "USD", d.Currency)
}

func TestDraftCleanRejections(t *testing.T) {
	base := Draft{Date: "2024-03-01", Category: "Food", Amount: decimal.NewFromInt(1)}

	cases := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"bad date", func(d *Draft) { d.Date = "03/01/2024" }, ErrInvalidDate},
		{"empty date", func(d *Draft) { d.Date = "" }, ErrInvalidDate},
		{"blank category", func(d *Draft) { d.Category = "   " }, ErrMissingCategory},
		{"zero amount", func(d *Draft) { d.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(d *Draft) { d.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.mutate(&d)
			_, err := d.Clean("USD")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDraftCleanCurrencyFallback(t *testing.T) {
	d := Draft{Date: "2024-03-01", Category: "Food", Amount: decimal.NewFromInt(1)}

	got, err := d.Clean("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)

	got, err = d.Clean("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, got.Currency)
}

func TestNewExpenseAndApply(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	d, err := Draft{Date: "2024-03-01", Category: "Food", Amount: decimal.NewFromInt(5)}.Clean("USD")
	require.NoError(t, err)

	e := NewExpense(d, now)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, now.UnixMilli(), e.CreatedAt)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	later := now.Add(time.Hour)
	d2, err := Draft{Date: "2024-03-02", Category: "Travel", Amount: decimal.NewFromInt(9)}.Clean("USD")
	require.NoError(t, err)

	e2 := e.Apply(d2, later)
	assert.Equal(t, e.ID, e2.ID)
	assert.Equal(t, e.CreatedAt, e2.CreatedAt)
	assert.Equal(t, later.UnixMilli(), e2.UpdatedAt)
	assert.Equal(t, "Travel", e2.Category)
	assert.Equal(t, "2024-03-02", e2.Date)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-03-05"))
	assert.False(t, ValidDate("2024-3-05"))
	assert.False(t, ValidDate("2024-03-05T00:00"))
	assert.False(t, ValidDate(""))
}
