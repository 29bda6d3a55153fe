package rules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizwana27/psa/db"
)

func testNotification(priority, category string) *db.SmartNotification {
	return &db.SmartNotification{
		ID:              uuid.New().String(),
		Type:            db.NotificationTypeAlert,
		Category:        category,
		Priority:        priority,
		Title:           "Test",
		Message:         "test message",
		RelatedEntityID: "entity-1",
		Actionable:      true,
		Timestamp:       time.Now(),
	}
}

func TestMemoryStore_ReadLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	n := testNotification(db.PriorityMedium, db.NotificationCategoryFinancial)
	require.NoError(t, store.Append(ctx, n))

	count, err := store.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.MarkRead(ctx, n.ID))
	count, err = store.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Marking read twice is idempotent.
	require.NoError(t, store.MarkRead(ctx, n.ID))

	got, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
}

func TestMemoryStore_DismissIsPermanent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	n := testNotification(db.PriorityHigh, db.NotificationCategoryProject)
	require.NoError(t, store.Append(ctx, n))
	require.NoError(t, store.Dismiss(ctx, n.ID))

	_, err := store.Get(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// markAsRead after dismissal is a silent no-op and must not
	// resurrect the notification.
	require.NoError(t, store.MarkRead(ctx, n.ID))
	_, err = store.Get(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_UnknownIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	assert.NoError(t, store.MarkRead(ctx, "nope"))
	assert.NoError(t, store.Dismiss(ctx, "nope"))

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_MarkAllRead(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, testNotification(db.PriorityLow, db.NotificationCategorySystem)))
	}
	require.NoError(t, store.MarkAllRead(ctx))

	count, err := store.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	fin := testNotification(db.PriorityHigh, db.NotificationCategoryFinancial)
	proj := testNotification(db.PriorityMedium, db.NotificationCategoryProject)
	read := testNotification(db.PriorityLow, db.NotificationCategoryProject)
	for _, n := range []*db.SmartNotification{fin, proj, read} {
		require.NoError(t, store.Append(ctx, n))
	}
	require.NoError(t, store.MarkRead(ctx, read.ID))

	byCategory, err := store.List(ctx, Filter{Category: db.NotificationCategoryFinancial})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, fin.ID, byCategory[0].ID)

	byPriority, err := store.List(ctx, Filter{Priority: db.PriorityMedium})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, proj.ID, byPriority[0].ID)

	unread, err := store.List(ctx, Filter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	limited, err := store.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	older := testNotification(db.PriorityLow, db.NotificationCategorySystem)
	older.Timestamp = time.Now().Add(-time.Hour)
	newer := testNotification(db.PriorityLow, db.NotificationCategorySystem)

	require.NoError(t, store.Append(ctx, older))
	require.NoError(t, store.Append(ctx, newer))

	list, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	n := testNotification(db.PriorityLow, db.NotificationCategorySystem)
	require.NoError(t, store.Append(ctx, n))

	got, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test", again.Title)
}
