package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/core"
	"spendlog/internal/events"
	"spendlog/internal/storage"
)

type recordingPublisher struct {
	messages []*events.ChangeMessage
}

func (p *recordingPublisher) Publish(_ context.Context, msg *events.ChangeMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}

func newTestStore(t *testing.T) (*Store, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	s, err := Open(context.Background(), storage.NewMemoryStore(),
		WithPublisher(pub), WithClock(clock))
	require.NoError(t, err)
	return s, pub
}

func draft(date, category, amount string) core.Draft {
	return core.Draft{
		Date:     date,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Currency: "USD",
	}
}

func TestAddStoresRoundedAmount(t *testing.T) {
	s, pub := newTestStore(t)

	e, err := s.Add(context.Background(), draft("2024-03-01", "Food", "12.345"))
	require.NoError(t, err)
	assert.Equal(t, "12.35", e.Amount.String(), "half away from zero")
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	assert.Equal(t, 1, s.Count())

	require.Len(t, pub.messages, 1)
	assert.Equal(t, events.ActionCreated, pub.messages[0].Action)
	assert.Equal(t, e.ID, pub.messages[0].RecordID)
}

func TestAddRejectionsLeaveStoreUntouched(t *testing.T) {
	s, pub := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name string
		d    core.Draft
		want error
	}{
		{"bad date", draft("bad", "Food", "1"), core.ErrInvalidDate},
		{"no category", draft("2024-03-01", " ", "1"), core.ErrMissingCategory},
		{"zero amount", draft("2024-03-01", "Food", "0"), core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Add(ctx, tc.d)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, s.Count())
	assert.Empty(t, pub.messages)
}

func TestAddPersistsBeforeReturning(t *testing.T) {
	docs := storage.NewMemoryStore()
	ctx := context.Background()
	s, err := Open(ctx, docs)
	require.NoError(t, err)

	_, err = s.Add(ctx, draft("2024-03-01", "Food", "5"))
	require.NoError(t, err)

	// A second store opened over the same documents sees the record.
	reopened, err := Open(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())
}

func TestUpdatePreservesIdentity(t *testing.T) {
	s, pub := newTestStore(t)
	ctx := context.Background()

	e, err := s.Add(ctx, draft("2024-03-01", "Food", "5"))
	require.NoError(t, err)

	updated, err := s.Update(ctx, e.ID, draft("2024-03-02", "Travel", "9"))
	require.NoError(t, err)
	assert.Equal(t, e.ID, updated.ID)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, updated.CreatedAt)
	assert.Equal(t, "Travel", updated.Category)
	assert.Equal(t, 1, s.Count())

	assert.Equal(t, events.ActionUpdated, pub.messages[len(pub.messages)-1].Action)
}

func TestUpdateUnknownIDBehavesAsAdd(t *testing.T) {
	s, _ := newTestStore(t)

	e, err := s.Update(context.Background(), "missing", draft("2024-03-01", "Food", "5"))
	require.NoError(t, err)
	assert.NotEqual(t, "missing", e.ID)
	assert.Equal(t, 1, s.Count())
}

func TestDelete(t *testing.T) {
	s, pub := newTestStore(t)
	ctx := context.Background()

	e, err := s.Add(ctx, draft("2024-03-01", "Food", "5"))
	require.NoError(t, err)

	found, err := s.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, s.Count())
	assert.Equal(t, events.ActionDeleted, pub.messages[len(pub.messages)-1].Action)
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	s, pub := newTestStore(t)
	before := s.Count()

	found, err := s.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, s.Count())
	assert.Empty(t, pub.messages)
}

func TestClear(t *testing.T) {
	s, pub := newTestStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, draft("2024-03-01", "Food", "5"))
	require.NoError(t, err)
	_, err = s.Add(ctx, draft("2024-03-02", "Food", "6"))
	require.NoError(t, err)

	removed, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Zero(t, s.Count())
	assert.Equal(t, events.ActionCleared, pub.messages[len(pub.messages)-1].Action)
}

func TestImportReplacesAndDropsInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, draft("2024-01-01", "Old", "1"))
	require.NoError(t, err)

	candidates := []map[string]any{
		{"date": "2024-03-01", "category": "Food", "amount": 5.0},
		{"date": "2024-03-02", "amount": 6.0}, // missing category
	}
	res, err := s.Import(ctx, candidates, &core.Settings{Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, "Food", s.List()[0].Category)
	assert.Equal(t, "EUR", s.Settings().Currency)
}

func TestAddAdoptsDraftCurrency(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	d := draft("2024-03-01", "Food", "5")
	d.Currency = "GBP"
	_, err := s.Add(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "GBP", s.Settings().Currency)
}

func TestSetCurrency(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCurrency(ctx, "EUR"))
	assert.Equal(t, "EUR", s.Settings().Currency)

	assert.ErrorIs(t, s.SetCurrency(ctx, "  "), ErrEmptyCurrency)
	assert.Equal(t, "EUR", s.Settings().Currency)
}

func TestListReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Add(context.Background(), draft("2024-03-01", "Food", "5"))
	require.NoError(t, err)

	list := s.List()
	list[0].Category = "Hacked"
	assert.Equal(t, "Food", s.List()[0].Category)
}
