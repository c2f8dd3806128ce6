package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendlog/internal/core"
)

// State is the fully loaded application state.
type State struct {
	Expenses []core.Expense
	Settings core.Settings
	// Dropped counts persisted candidates that failed normalization and
	// were discarded on load.
	Dropped int
}

// LoadState reads both documents from the store. Missing documents and
// malformed JSON yield empty state rather than an error; individual invalid
// records are dropped by the normalizer.
func LoadState(ctx context.Context, docs DocumentStore, now time.Time) (State, error) {
	state := State{Settings: core.DefaultSettings()}

	raw, err := docs.Get(ctx, KeyExpenses)
	switch {
	case err == nil:
		var candidates []map[string]any
		if jerr := json.Unmarshal(raw, &candidates); jerr != nil {
			slog.WarnContext(ctx, "Expenses document is not valid JSON, starting empty", "error", jerr)
		} else {
			state.Expenses, state.Dropped = core.NormalizeAll(candidates, now)
			if state.Dropped > 0 {
				slog.WarnContext(ctx, "Dropped invalid persisted records", "dropped", state.Dropped)
			}
		}
	case errors.Is(err, ErrNotFound):
		// first run
	default:
		return State{}, fmt.Errorf("load expenses document: %w", err)
	}

	raw, err = docs.Get(ctx, KeySettings)
	switch {
	case err == nil:
		var s core.Settings
		if jerr := json.Unmarshal(raw, &s); jerr != nil || strings.TrimSpace(s.Currency) == "" {
			slog.WarnContext(ctx, "Settings document unusable, using defaults")
		} else {
			state.Settings = s
		}
	case errors.Is(err, ErrNotFound):
		// keep defaults
	default:
		return State{}, fmt.Errorf("load settings document: %w", err)
	}

	return state, nil
}

// SaveExpenses replaces the expenses document wholesale.
func SaveExpenses(ctx context.Context, docs DocumentStore, records []core.Expense) error {
	value, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}
	return docs.Put(ctx, KeyExpenses, value)
}

// SaveSettings replaces the settings document.
func SaveSettings(ctx context.Context, docs DocumentStore, settings core.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return docs.Put(ctx, KeySettings, value)
}

// ClearExpenses removes the expenses document entirely.
func ClearExpenses(ctx context.Context, docs DocumentStore) error {
	return docs.Delete(ctx, KeyExpenses)
}
