// Package store holds the in-memory expense collection that is the single
// source of truth during a session. Every mutation re-serializes the full
// state to the document store before returning, then emits an optional
// change event.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/events"
	"spendlog/internal/storage"
)

// ErrEmptyCurrency rejects a settings update with a blank currency code.
var ErrEmptyCurrency = errors.New("empty currency code")

// Publisher notifies external consumers of store mutations. Publishing is
// best effort; a nil Publisher disables it entirely.
type Publisher interface {
	Publish(ctx context.Context, msg *events.ChangeMessage) error
}

type Store struct {
	mu        sync.RWMutex
	docs      storage.DocumentStore
	publisher Publisher
	now       func() time.Time

	expenses []core.Expense
	settings core.Settings
}

// Option configures a Store at open time.
type Option func(*Store)

// WithPublisher attaches a change-event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads persisted state from docs and returns a ready store. Corrupt or
// partial persisted data degrades to empty state, never to a failed open.
func Open(ctx context.Context, docs storage.DocumentStore, opts ...Option) (*Store, error) {
	s := &Store{docs: docs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	state, err := storage.LoadState(ctx, docs, s.now())
	if err != nil {
		return nil, err
	}
	s.expenses = state.Expenses
	s.settings = state.Settings

	slog.InfoContext(ctx, "Expense store loaded",
		"records", len(s.expenses),
		"dropped", state.Dropped,
		"currency", s.settings.Currency)
	return s, nil
}

// List returns a copy of all records in insertion order.
func (s *Store) List() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expenses)
}

// Settings returns the current settings.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Add validates the draft and appends a new record. Validation failures
// leave the store untouched and surface the specific rejection reason.
func (s *Store) Add(ctx context.Context, draft core.Draft) (core.Expense, error) {
	s.mu.Lock()

	d, err := draft.Clean(s.settings.Currency)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}

	e := core.NewExpense(d, s.now())
	s.expenses = append(s.expenses, e)
	if err := storage.SaveExpenses(ctx, s.docs, s.expenses); err != nil {
		s.expenses = s.expenses[:len(s.expenses)-1]
		s.mu.Unlock()
		return core.Expense{}, err
	}
	s.adoptCurrencyLocked(ctx, d.Currency)
	s.mu.Unlock()

	s.publish(ctx, events.NewChangeMessage(events.ActionCreated, e.ID))
	return e, nil
}

// Update replaces the mutable fields of the record with the given
// identifier, refreshing UpdatedAt and preserving identity and CreatedAt.
// An unknown identifier behaves as Add.
func (s *Store) Update(ctx context.Context, id string, draft core.Draft) (core.Expense, error) {
	s.mu.Lock()

	d, err := draft.Clean(s.settings.Currency)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}

	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return s.Add(ctx, draft)
	}

	prev := s.expenses[idx]
	s.expenses[idx] = prev.Apply(d, s.now())
	if err := storage.SaveExpenses(ctx, s.docs, s.expenses); err != nil {
		s.expenses[idx] = prev
		s.mu.Unlock()
		return core.Expense{}, err
	}
	updated := s.expenses[idx]
	s.adoptCurrencyLocked(ctx, d.Currency)
	s.mu.Unlock()

	s.publish(ctx, events.NewChangeMessage(events.ActionUpdated, updated.ID))
	return updated, nil
}

// Delete removes the record with the given identifier. A missing identifier
// is reported as found=false, not as an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	removed := s.expenses[idx]
	s.expenses = append(s.expenses[:idx], s.expenses[idx+1:]...)
	if err := storage.SaveExpenses(ctx, s.docs, s.expenses); err != nil {
		s.expenses = append(s.expenses[:idx], append([]core.Expense{removed}, s.expenses[idx:]...)...)
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.publish(ctx, events.NewChangeMessage(events.ActionDeleted, removed.ID))
	return true, nil
}

// ReplaceAll swaps the whole collection wholesale and persists it.
func (s *Store) ReplaceAll(ctx context.Context, records []core.Expense) error {
	s.mu.Lock()

	prev := s.expenses
	s.expenses = make([]core.Expense, len(records))
	copy(s.expenses, records)
	if err := storage.SaveExpenses(ctx, s.docs, s.expenses); err != nil {
		s.expenses = prev
		s.mu.Unlock()
		return err
	}
	count := len(s.expenses)
	s.mu.Unlock()

	s.publish(ctx, events.NewBulkChangeMessage(events.ActionImported, count))
	return nil
}

// Clear removes every record and deletes the expenses document. The number
// of removed records is returned.
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()

	prev := s.expenses
	s.expenses = nil
	if err := storage.ClearExpenses(ctx, s.docs); err != nil {
		s.expenses = prev
		s.mu.Unlock()
		return 0, err
	}
	removed := len(prev)
	s.mu.Unlock()

	s.publish(ctx, events.NewBulkChangeMessage(events.ActionCleared, removed))
	return removed, nil
}

// ImportResult reports how an import batch fared.
type ImportResult struct {
	Imported int `json:"imported"`
	Dropped  int `json:"dropped"`
}

// Import destructively replaces the store with the normalized candidates,
// dropping malformed entries rather than aborting. When the payload carried
// settings with a usable currency, it becomes the preferred currency.
func (s *Store) Import(ctx context.Context, candidates []map[string]any, imported *core.Settings) (ImportResult, error) {
	records, dropped := core.NormalizeAll(candidates, s.now())
	if err := s.ReplaceAll(ctx, records); err != nil {
		return ImportResult{}, err
	}

	if imported != nil {
		if cur := strings.TrimSpace(imported.Currency); cur != "" {
			if err := s.SetCurrency(ctx, cur); err != nil {
				slog.WarnContext(ctx, "Imported settings not applied", "error", err)
			}
		}
	}

	return ImportResult{Imported: len(records), Dropped: dropped}, nil
}

// SetCurrency updates the preferred currency and persists settings
// immediately.
func (s *Store) SetCurrency(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCurrency
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.Currency == code {
		return nil
	}
	prev := s.settings
	s.settings.Currency = code
	if err := storage.SaveSettings(ctx, s.docs, s.settings); err != nil {
		s.settings = prev
		return err
	}
	return nil
}

// adoptCurrencyLocked follows the record's currency as the new preferred
// currency when it differs. Persist failures only log: the record mutation
// already succeeded.
func (s *Store) adoptCurrencyLocked(ctx context.Context, currency string) {
	if currency == "" || currency == s.settings.Currency {
		return
	}
	s.settings.Currency = currency
	if err := storage.SaveSettings(ctx, s.docs, s.settings); err != nil {
		slog.WarnContext(ctx, "Failed to persist preferred currency", "error", err, "currency", currency)
	}
}

func (s *Store) indexOfLocked(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) publish(ctx context.Context, msg *events.ChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish change event",
			"error", err, "action", msg.Action, "record_id", msg.RecordID)
	}
}
