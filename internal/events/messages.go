package events

import (
	"encoding/json"
	"time"
)

// Action names the kind of store mutation a change message describes.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionCleared  Action = "cleared"
	ActionImported Action = "imported"
)

// ChangeMessage is a lightweight notification that the expense store
// mutated. Consumers interested in the record contents fetch them from the
// store themselves.
type ChangeMessage struct {
	Action     Action    `json:"action"`
	RecordID   string    `json:"recordId,omitempty"` // empty for bulk actions
	Count      int       `json:"count,omitempty"`    // records affected by bulk actions
	OccurredAt time.Time `json:"occurredAt"`
}

// NewChangeMessage builds a message for a single-record mutation.
func NewChangeMessage(action Action, recordID string) *ChangeMessage {
	return &ChangeMessage{
		Action:     action,
		RecordID:   recordID,
		OccurredAt: time.Now(),
	}
}

// NewBulkChangeMessage builds a message for clear/import mutations.
func NewBulkChangeMessage(action Action, count int) *ChangeMessage {
	return &ChangeMessage{
		Action:     action,
		Count:      count,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
