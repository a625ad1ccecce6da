package lifecycle

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"pulse-backend/internal/audit"
	"pulse-backend/internal/models"
	"pulse-backend/internal/notify"
	"pulse-backend/internal/screening"
	"pulse-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.Identity{Username: "alice", Role: models.RoleUser}
	bob   = models.Identity{Username: "bob", Role: models.RoleModerator}
)

type captureNotifier struct {
	mu    sync.Mutex
	items []models.FeedbackItem
}

func (c *captureNotifier) Publish(ctx context.Context, item models.FeedbackItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return nil
}

func (c *captureNotifier) all() []models.FeedbackItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.FeedbackItem(nil), c.items...)
}

type testEnv struct {
	engine     *Engine
	store      *store.MemoryStore
	notifier   *captureNotifier
	dispatcher *notify.Dispatcher
	drainOnce  sync.Once
}

// drain stops the dispatcher and waits for queued notifications to be
// delivered, so tests can assert on the notifier's capture.
func (e *testEnv) drain() {
	e.drainOnce.Do(e.dispatcher.Close)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	notifier := &captureNotifier{}
	env := &testEnv{
		store:      store.NewMemoryStore(),
		notifier:   notifier,
		dispatcher: notify.NewDispatcher(notifier, 16),
	}
	env.engine = NewEngine(env.store, screening.NewScreener(screening.DefaultBlockedTerms), env.dispatcher, audit.NewNop())
	t.Cleanup(env.drain)
	return env
}

// --- Submission ---

func TestSubmitRejectsProfanity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "This is nasty")
	require.Error(t, err)
	assert.Nil(t, item)

	var rejected *ContentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "nasty", rejected.Term)

	// No record may exist for a screened-out submission.
	items, err := env.store.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmitRejectsProfanityCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Submit(context.Background(), alice, "well this is NASTY indeed")
	var rejected *ContentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "nasty", rejected.Term)
}

func TestSubmitValid(t *testing.T) {
	env := newTestEnv(t)

	item, err := env.engine.Submit(context.Background(), alice, "Great service, thanks!")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.StatusPending, item.Status)
	assert.Equal(t, "alice", item.Author)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Nil(t, item.ApprovedAt)
	assert.Nil(t, item.RejectedAt)
	assert.Nil(t, item.Moderator)
}

func TestSubmitAssignsUniqueIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		item, err := env.engine.Submit(ctx, alice, "perfectly reasonable feedback")
		require.NoError(t, err)
		assert.False(t, seen[item.ID], "id %s issued twice", item.ID)
		seen[item.ID] = true
	}
}

func TestSubmitLengthBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var validation *ValidationError

	_, err := env.engine.Submit(ctx, alice, "four")
	require.ErrorAs(t, err, &validation)

	_, err = env.engine.Submit(ctx, alice, strings.Repeat("x", 501))
	require.ErrorAs(t, err, &validation)

	// Boundaries are inclusive.
	_, err = env.engine.Submit(ctx, alice, "fives")
	require.NoError(t, err)
	_, err = env.engine.Submit(ctx, alice, strings.Repeat("x", 500))
	require.NoError(t, err)

	// Runes, not bytes.
	_, err = env.engine.Submit(ctx, alice, strings.Repeat("ü", 500))
	require.NoError(t, err)
}

// --- Transition ---

func TestTransitionApprove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Great service, thanks!")
	require.NoError(t, err)

	updated, err := env.engine.Transition(ctx, bob, item.ID, models.StatusApproved)
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovedAt)
	assert.Nil(t, updated.RejectedAt)
	require.NotNil(t, updated.Moderator)
	assert.Equal(t, "bob", *updated.Moderator)

	env.drain()
	notifications := env.notifier.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, item.ID, notifications[0].ID)
	assert.Equal(t, models.StatusApproved, notifications[0].Status)
}

func TestTransitionReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Not great, honestly")
	require.NoError(t, err)

	updated, err := env.engine.Transition(ctx, bob, item.ID, models.StatusRejected)
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, updated.Status)
	require.NotNil(t, updated.RejectedAt)
	assert.Nil(t, updated.ApprovedAt)
}

func TestTransitionIsOneShot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Great service, thanks!")
	require.NoError(t, err)

	_, err = env.engine.Transition(ctx, bob, item.ID, models.StatusApproved)
	require.NoError(t, err)

	// Second attempt fails regardless of target, including the opposite one.
	for _, target := range []models.Status{models.StatusRejected, models.StatusApproved} {
		_, err := env.engine.Transition(ctx, bob, item.ID, target)
		var finalized *AlreadyFinalizedError
		require.ErrorAs(t, err, &finalized)
		assert.Equal(t, models.StatusApproved, finalized.Current)
	}

	// Item unchanged.
	got, err := env.store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.Moderator)
	assert.Equal(t, "bob", *got.Moderator)
}

func TestTransitionForbiddenForUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Great service, thanks!")
	require.NoError(t, err)

	_, err = env.engine.Transition(ctx, alice, item.ID, models.StatusApproved)
	assert.ErrorIs(t, err, ErrForbidden)

	// Role is checked first, before existence or target validity.
	_, err = env.engine.Transition(ctx, alice, "missing-id", models.Status("bogus"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTransitionNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Transition(context.Background(), bob, "missing-id", models.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	// Existence is checked before target validity.
	_, err = env.engine.Transition(context.Background(), bob, "missing-id", models.Status("bogus"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionInvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Great service, thanks!")
	require.NoError(t, err)

	for _, target := range []models.Status{models.StatusPending, models.Status("bogus"), models.Status("")} {
		_, err := env.engine.Transition(ctx, bob, item.ID, target)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	}

	// Item untouched by the failed attempts.
	got, err := env.store.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestTransitionClearsOppositeTimestamp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A corrupted record: pending but with a stale rejected_at. The
	// transition must repair it by clearing the opposite timestamp.
	stale := time.Now().UTC().Add(-time.Hour)
	corrupted := &models.FeedbackItem{
		ID:         "corrupted",
		Content:    "record with a stale timestamp",
		Status:     models.StatusPending,
		Author:     "alice",
		CreatedAt:  stale,
		RejectedAt: &stale,
	}
	require.NoError(t, env.store.Insert(ctx, corrupted))

	updated, err := env.engine.Transition(ctx, bob, "corrupted", models.StatusApproved)
	require.NoError(t, err)
	require.NotNil(t, updated.ApprovedAt)
	assert.Nil(t, updated.RejectedAt)
}

func TestTransitionConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Great service, thanks!")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	targets := []models.Status{models.StatusApproved, models.StatusRejected}
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.engine.Transition(ctx, bob, item.ID, targets[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	var finalized *AlreadyFinalizedError
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorAs(t, err, &finalized)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent transition must win")

	env.drain()
	assert.Len(t, env.notifier.all(), 1, "only the winning transition notifies")
}

// --- Listing ---

func TestListRequiresModerator(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.List(context.Background(), alice, ListQuery{Limit: 20})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListSortsByCreatedAtDescending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(2 * time.Minute), base.Add(time.Minute)}
	var ids []string
	for i, ts := range times {
		env.engine.now = func() time.Time { return ts }
		item, err := env.engine.Submit(ctx, alice, "feedback entry number "+string(rune('a'+i)))
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	items, err := env.engine.List(ctx, bob, ListQuery{Limit: 20})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, ids[1], items[0].ID)
	assert.Equal(t, ids[2], items[1].ID)
	assert.Equal(t, ids[0], items[2].ID)
}

func TestListStableOrderForEqualTimestamps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.engine.now = func() time.Time { return fixed }

	var ids []string
	for i := 0; i < 5; i++ {
		item, err := env.engine.Submit(ctx, alice, "identical timestamp entry")
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	// Ties keep store insertion order, on every call.
	for call := 0; call < 3; call++ {
		items, err := env.engine.List(ctx, bob, ListQuery{Limit: 20})
		require.NoError(t, err)
		require.Len(t, items, 5)
		for i, item := range items {
			assert.Equal(t, ids[i], item.ID)
		}
	}
}

func TestListStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item, err := env.engine.Submit(ctx, alice, "Great service, thanks!")
	require.NoError(t, err)
	_, err = env.engine.Transition(ctx, bob, item.ID, models.StatusApproved)
	require.NoError(t, err)

	approved, err := env.engine.List(ctx, bob, ListQuery{Status: "approved", Limit: 20})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, item.ID, approved[0].ID)

	pending, err := env.engine.List(ctx, bob, ListQuery{Status: "pending", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, pending)

	// An unknown status value matches nothing rather than failing.
	none, err := env.engine.List(ctx, bob, ListQuery{Status: "bogus", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTextFilterCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.engine.Submit(ctx, alice, "The delivery was Slow today")
	require.NoError(t, err)
	_, err = env.engine.Submit(ctx, alice, "Everything arrived on time")
	require.NoError(t, err)

	items, err := env.engine.List(ctx, bob, ListQuery{Query: "slow", Limit: 20})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)
}

func TestListPaginationWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		env.engine.now = func() time.Time { return ts }
		_, err := env.engine.Submit(ctx, alice, "paginated feedback entry")
		require.NoError(t, err)
	}

	full, err := env.engine.List(ctx, bob, ListQuery{Limit: 100})
	require.NoError(t, err)
	require.Len(t, full, 7)

	page, err := env.engine.List(ctx, bob, ListQuery{Skip: 2, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, full[2].ID, page[0].ID)
	assert.Equal(t, full[4].ID, page[2].ID)

	// Truncated tail window.
	tail, err := env.engine.List(ctx, bob, ListQuery{Skip: 5, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, tail, 2)

	// Skip beyond the result length yields empty, never an error.
	empty, err := env.engine.List(ctx, bob, ListQuery{Skip: 50, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Negative values clamp instead of failing.
	clamped, err := env.engine.List(ctx, bob, ListQuery{Skip: -1, Limit: -1})
	require.NoError(t, err)
	assert.Empty(t, clamped)
}
