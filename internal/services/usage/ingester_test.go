package usage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Traijan1/emote-counter/internal/models"
)

type fakeRecorder struct {
	mu          sync.Mutex
	records     []string
	removes     []string
	RecordFunc  func(emoteID int64, name string) error
	RemoveFunc  func(emoteID int64, name string) error
}

func (f *fakeRecorder) RecordOccurrence(_ context.Context, emoteID int64, name string) error {
	if f.RecordFunc != nil {
		if err := f.RecordFunc(emoteID, name); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, models.Canonical(emoteID, name))
	return nil
}

func (f *fakeRecorder) RemoveOneOccurrence(_ context.Context, emoteID int64, name string) error {
	if f.RemoveFunc != nil {
		if err := f.RemoveFunc(emoteID, name); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, models.Canonical(emoteID, name))
	return nil
}

func mustFilter(t *testing.T, pattern string) *Filter {
	t.Helper()
	filter, err := NewFilter(pattern)
	require.NoError(t, err)
	return filter
}

func TestOnMessagePostedCountsOccurrences(t *testing.T) {
	pog := models.Emote{ID: 42, Name: "pog"}

	tests := []struct {
		name        string
		content     string
		wantRecords int
	}{
		{name: "no occurrence", content: "hello world", wantRecords: 0},
		{name: "single occurrence", content: "nice <:pog:42>", wantRecords: 1},
		{name: "three occurrences", content: "<:pog:42><:pog:42> and <:pog:42>", wantRecords: 3},
		{name: "name alone does not count", content: "pog pog pog", wantRecords: 0},
		{name: "id alone does not count", content: "42 42", wantRecords: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			ingester := NewIngester(recorder, mustFilter(t, ""))

			ingester.OnMessagePosted(context.Background(), tt.content, []models.Emote{pog})

			assert.Len(t, recorder.records, tt.wantRecords)
		})
	}
}

func TestOnMessagePostedFiltersUntrackableEmotes(t *testing.T) {
	recorder := &fakeRecorder{}
	ingester := NewIngester(recorder, mustFilter(t, "srv_"))

	catalog := []models.Emote{
		{ID: 1, Name: "srv_hype"},
		{ID: 2, Name: "pog"},
	}
	ingester.OnMessagePosted(context.Background(), "<:srv_hype:1> <:pog:2>", catalog)

	assert.Equal(t, []string{"<:srv_hype:1>"}, recorder.records)
}

func TestOnMessagePostedFailureDoesNotBlockSiblings(t *testing.T) {
	recorder := &fakeRecorder{
		RecordFunc: func(emoteID int64, _ string) error {
			if emoteID == 42 {
				return errors.New("storage unavailable")
			}
			return nil
		},
	}
	ingester := NewIngester(recorder, mustFilter(t, ""))

	catalog := []models.Emote{
		{ID: 42, Name: "pog"},
		{ID: 7, Name: "sad"},
	}
	ingester.OnMessagePosted(context.Background(), "<:pog:42> <:sad:7>", catalog)

	// The pog insert failed but sad was still attempted and recorded.
	assert.Equal(t, []string{"<:sad:7>"}, recorder.records)
}

func TestOnReactionAdded(t *testing.T) {
	recorder := &fakeRecorder{}
	ingester := NewIngester(recorder, mustFilter(t, "srv_"))

	ingester.OnReactionAdded(context.Background(), 1, "srv_hype")
	ingester.OnReactionAdded(context.Background(), 2, "pog")

	assert.Equal(t, []string{"<:srv_hype:1>"}, recorder.records)
}

func TestOnReactionRemoved(t *testing.T) {
	t.Run("removes one occurrence", func(t *testing.T) {
		recorder := &fakeRecorder{}
		ingester := NewIngester(recorder, mustFilter(t, ""))

		ingester.OnReactionRemoved(context.Background(), 42, "pog")

		assert.Equal(t, []string{"<:pog:42>"}, recorder.removes)
	})

	t.Run("missing occurrence is benign", func(t *testing.T) {
		recorder := &fakeRecorder{
			RemoveFunc: func(int64, string) error { return ErrNoOccurrence },
		}
		ingester := NewIngester(recorder, mustFilter(t, ""))

		assert.NotPanics(t, func() {
			ingester.OnReactionRemoved(context.Background(), 42, "pog")
		})
	})

	t.Run("untrackable name is skipped", func(t *testing.T) {
		recorder := &fakeRecorder{}
		ingester := NewIngester(recorder, mustFilter(t, "srv_"))

		ingester.OnReactionRemoved(context.Background(), 42, "pog")

		assert.Empty(t, recorder.removes)
	})
}

// memoryLog mimics the append-only event log: one entry per occurrence,
// removal drops the most recent match.
type memoryLog struct {
	mu  sync.Mutex
	log []string
}

func (m *memoryLog) RecordOccurrence(_ context.Context, emoteID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, models.Canonical(emoteID, name))
	return nil
}

func (m *memoryLog) RemoveOneOccurrence(_ context.Context, emoteID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.Canonical(emoteID, name)
	for i := len(m.log) - 1; i >= 0; i-- {
		if m.log[i] == key {
			m.log = append(m.log[:i], m.log[i+1:]...)
			return nil
		}
	}
	return ErrNoOccurrence
}

func (m *memoryLog) CountByEmote(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, key := range m.log {
		counts[key]++
	}
	return counts, nil
}

func TestAggregationConsistency(t *testing.T) {
	store := &memoryLog{}
	ingester := NewIngester(store, mustFilter(t, ""))
	ctx := context.Background()

	pog := models.Emote{ID: 42, Name: "pog"}
	sad := models.Emote{ID: 7, Name: "sad"}

	// Three typed pogs, one sad reaction, then a record/remove pair that
	// must cancel out exactly.
	ingester.OnMessagePosted(ctx, "<:pog:42> <:pog:42> <:pog:42>", []models.Emote{pog, sad})
	ingester.OnReactionAdded(ctx, sad.ID, sad.Name)
	ingester.OnReactionAdded(ctx, pog.ID, pog.Name)
	ingester.OnReactionRemoved(ctx, pog.ID, pog.Name)

	counts, err := store.CountByEmote(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), counts["<:pog:42>"])
	assert.Equal(t, int64(1), counts["<:sad:7>"])

	// Removing beyond zero never goes negative; the log just has no row.
	ingester.OnReactionRemoved(ctx, sad.ID, sad.Name)
	ingester.OnReactionRemoved(ctx, sad.ID, sad.Name)

	counts, err = store.CountByEmote(ctx)
	require.NoError(t, err)
	assert.NotContains(t, counts, "<:sad:7>")
}
