package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"spendlog/internal/core"
)

// SnapshotVersion marks the current snapshot format.
const SnapshotVersion = 1

// ErrBadShape rejects an import payload that is neither an array of records
// nor an object with an expenses array.
var ErrBadShape = errors.New("expected an array of expenses or an object with an expenses array")

// Snapshot is a complete, re-importable export: settings plus the full
// unfiltered record list.
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt string         `json:"exportedAt"`
	Settings   core.Settings  `json:"settings"`
	Expenses   []core.Expense `json:"expenses"`
}

// NewSnapshot assembles a snapshot stamped with now.
func NewSnapshot(settings core.Settings, records []core.Expense, now time.Time) Snapshot {
	if records == nil {
		records = []core.Expense{}
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Settings:   settings,
		Expenses:   records,
	}
}

// Marshal renders the snapshot as indented JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ImportPayload is the parsed shape of an import file before validation.
// Candidates still need normalization; Settings is nil when the payload
// carried none.
type ImportPayload struct {
	Candidates []map[string]any
	Settings   *core.Settings
}

// ParseImport accepts either a bare JSON array of candidate records or an
// object with an expenses array and optional settings object. Anything else
// is a shape rejection; invalid JSON is a parse failure. Candidate entries
// that are not objects are kept as nil so the normalizer counts them as
// dropped.
func ParseImport(data []byte) (ImportPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return ImportPayload{}, fmt.Errorf("parse import payload: %w", err)
	}

	switch t := v.(type) {
	case []any:
		return ImportPayload{Candidates: toCandidates(t)}, nil
	case map[string]any:
		items, ok := t["expenses"].([]any)
		if !ok {
			return ImportPayload{}, ErrBadShape
		}
		payload := ImportPayload{Candidates: toCandidates(items)}
		if sm, ok := t["settings"].(map[string]any); ok {
			cur, _ := sm["currency"].(string)
			payload.Settings = &core.Settings{Currency: strings.TrimSpace(cur)}
		}
		return payload, nil
	default:
		return ImportPayload{}, ErrBadShape
	}
}

func toCandidates(items []any) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			out[i] = m
		}
	}
	return out
}
