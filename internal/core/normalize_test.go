package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normalizeNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeValidCandidate(t *testing.T) {
	raw := map[string]any{
		"id":          "abc",
		"date":        "2024-03-01",
		"category":    " Food ",
		"description": " lunch ",
		"amount":      12.345,
		"currency":    "USD",
		"createdAt":   float64(1000),
		"updatedAt":   float64(2000),
	}
	e, err := Normalize(raw, normalizeNow)
	require.NoError(t, err)
	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, "Food", e.Category)
	assert.Equal(t, "lunch", e.Description)
	assert.Equal(t, "12.35", e.Amount.String())
	assert.Equal(t, int64(1000), e.CreatedAt)
	assert.Equal(t, int64(2000), e.UpdatedAt)
}

func TestNormalizeDefaults(t *testing.T) {
	raw := map[string]any{
		"date":     "2024-03-01",
		"category": "Food",
		"amount":   "7",
	}
	e, err := Normalize(raw, normalizeNow)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID, "missing id gets a fresh one")
	assert.Equal(t, DefaultCurrency, e.Currency)
	assert.Equal(t, normalizeNow.UnixMilli(), e.CreatedAt)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestNormalizeRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want error
	}{
		{"bad date", map[string]any{"date": "01-03-2024", "category": "Food", "amount": 1.0}, ErrInvalidDate},
		{"date not a string", map[string]any{"date": 20240301, "category": "Food", "amount": 1.0}, ErrInvalidDate},
		{"missing category", map[string]any{"date": "2024-03-01", "amount": 1.0}, ErrMissingCategory},
		{"missing amount", map[string]any{"date": "2024-03-01", "category": "Food"}, ErrInvalidAmount},
		{"amount not numeric", map[string]any{"date": "2024-03-01", "category": "Food", "amount": "x"}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.raw, normalizeNow)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNormalizeUpdatedAtNeverBeforeCreatedAt(t *testing.T) {
	raw := map[string]any{
		"date":      "2024-03-01",
		"category":  "Food",
		"amount":    1.0,
		"createdAt": float64(5000),
		"updatedAt": float64(10),
	}
	e, err := Normalize(raw, normalizeNow)
	require.NoError(t, err)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestNormalizeAllDropsInvalid(t *testing.T) {
	raws := []map[string]any{
		{"date": "2024-03-01", "category": "Food", "amount": 1.0},
		{"date": "2024-03-02", "amount": 2.0}, // missing category
		nil,
		{"date": "2024-03-03", "category": "Travel", "amount": 3.0},
	}
	records, dropped := NormalizeAll(raws, normalizeNow)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, "Food", records[0].Category)
	assert.Equal(t, "Travel", records[1].Category)
}

func TestNormalizeFromDecodedJSON(t *testing.T) {
	// Same path storage and import take: decode then normalize.
	var raws []map[string]any
	payload := `[{"id":"a","date":"2024-03-01","category":"Food","description":"","amount":12.5,"currency":"USD","createdAt":1,"updatedAt":1}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &raws))

	records, dropped := NormalizeAll(raws, normalizeNow)
	require.Len(t, records, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "12.5", records[0].Amount.String())
}
