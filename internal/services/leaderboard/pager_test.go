package leaderboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNavClient struct {
	mu      sync.Mutex
	edits   []string
	deletes int
	EditErr error
}

func (f *fakeNavClient) EditMessage(_ context.Context, _, _, content string) error {
	if f.EditErr != nil {
		return f.EditErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, content)
	return nil
}

func (f *fakeNavClient) DeleteReaction(context.Context, string, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

// newTrackedPager returns a pager with one tracked message at page zero and
// a two-emote ranking paged one entry at a time.
func newTrackedPager(t *testing.T) (*Pager, *fakeNavClient) {
	t.Helper()
	client := &fakeNavClient{}
	pager := NewPager(NewService(twoEmoteCounter(), 1), client)
	pager.Track("m1")
	return pager, client
}

func TestIsNavigation(t *testing.T) {
	assert.True(t, IsNavigation(BackReaction))
	assert.True(t, IsNavigation(ForwardReaction))
	assert.False(t, IsNavigation("pog"))
	assert.False(t, IsNavigation(""))
}

func TestBackAtFirstPageIsRejected(t *testing.T) {
	pager, client := newTrackedPager(t)

	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", BackReaction, false)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 0, page)
	assert.Empty(t, client.edits)
	assert.Equal(t, 1, client.deletes)
}

func TestForwardAdvancesAndEdits(t *testing.T) {
	pager, client := newTrackedPager(t)

	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 1, page)
	assert.Equal(t, []string{"sad => 1\n"}, client.edits)
	assert.Equal(t, 1, client.deletes)
}

func TestForwardPastLastPageKeepsCurrent(t *testing.T) {
	pager, client := newTrackedPager(t)

	// Advance to the last page, then try to go beyond it.
	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)
	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 1, page)
	assert.Len(t, client.edits, 1)
	assert.Equal(t, 2, client.deletes)
}

func TestBackReturnsToPreviousPage(t *testing.T) {
	pager, client := newTrackedPager(t)

	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)
	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", BackReaction, false)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 0, page)
	assert.Equal(t, []string{"sad => 1\n", "pog => 3\n"}, client.edits)
}

func TestBotReactionsAreIgnored(t *testing.T) {
	pager, client := newTrackedPager(t)

	pager.HandleNavigation(context.Background(), "c1", "m1", "bot", ForwardReaction, true)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 0, page)
	assert.Empty(t, client.edits)
	assert.Zero(t, client.deletes)
}

func TestUntrackedMessageIsNoOp(t *testing.T) {
	pager, client := newTrackedPager(t)

	pager.HandleNavigation(context.Background(), "c1", "unknown", "u1", ForwardReaction, false)

	assert.Empty(t, client.edits)
	assert.Zero(t, client.deletes)
}

func TestFailedEditLeavesPageIntact(t *testing.T) {
	client := &fakeNavClient{EditErr: errors.New("platform API unavailable")}
	pager := NewPager(NewService(twoEmoteCounter(), 1), client)
	pager.Track("m1")

	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 0, page)
	assert.Equal(t, 1, client.deletes)
}

func TestFailedRenderLeavesPageIntact(t *testing.T) {
	client := &fakeNavClient{}
	pager := NewPager(NewService(&fakeCounter{err: errors.New("storage unavailable")}, 1), client)
	pager.Track("m1")

	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 0, page)
	assert.Empty(t, client.edits)
	assert.Equal(t, 1, client.deletes)
}

func TestTrackIsIdempotent(t *testing.T) {
	pager, _ := newTrackedPager(t)

	pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)
	pager.Track("m1")

	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.Equal(t, 1, page)
}

func TestConcurrentNavigationDoesNotRace(t *testing.T) {
	pager, _ := newTrackedPager(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pager.HandleNavigation(context.Background(), "c1", "m1", "u1", ForwardReaction, false)
			pager.HandleNavigation(context.Background(), "c1", "m1", "u1", BackReaction, false)
		}()
	}
	wg.Wait()

	// With two pages the state must land on a valid page either way.
	page, ok := pager.Page("m1")
	require.True(t, ok)
	assert.GreaterOrEqual(t, page, 0)
	assert.LessOrEqual(t, page, 1)
}
