package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeMessage(t *testing.T) {
	msg := NewChangeMessage(ActionCreated, "abc")
	assert.Equal(t, ActionCreated, msg.Action)
	assert.Equal(t, "abc", msg.RecordID)
	assert.Zero(t, msg.Count)
	assert.WithinDuration(t, time.Now(), msg.OccurredAt, time.Second)
}

func TestNewBulkChangeMessage(t *testing.T) {
	msg := NewBulkChangeMessage(ActionImported, 12)
	assert.Equal(t, ActionImported, msg.Action)
	assert.Empty(t, msg.RecordID)
	assert.Equal(t, 12, msg.Count)
}

func TestChangeMessageJSONRoundTrip(t *testing.T) {
	msg := &ChangeMessage{
		Action:     ActionDeleted,
		RecordID:   "rec-1",
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	require.NoError(t, err)

	parsed, err := ChangeMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.Action, parsed.Action)
	assert.Equal(t, msg.RecordID, parsed.RecordID)
	assert.True(t, parsed.OccurredAt.Equal(msg.OccurredAt))
}

func TestChangeMessageFromInvalidJSON(t *testing.T) {
	_, err := ChangeMessageFromJSON([]byte(`{"action": 5`))
	assert.Error(t, err)
}
