package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/internal/models"
)

func TestEnqueueItemDefaults(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	item := &models.SyncQueueItem{
		EntityType: models.EntityBooking,
		EntityID:   "bk-1",
		Operation:  models.OpCreate,
	}
	require.NoError(t, st.EnqueueItem(ctx, item))

	assert.NotZero(t, item.ID)
	assert.Equal(t, models.ItemPending, item.Status)
	assert.False(t, item.ScheduledAt.IsZero())

	n, err := st.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetPendingItemsSkipsFutureAndOrders(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	later := &models.SyncQueueItem{
		EntityType:  models.EntityBooking,
		EntityID:    "bk-later",
		Operation:   models.OpCreate,
		ScheduledAt: now.Add(-time.Minute),
	}
	earlier := &models.SyncQueueItem{
		EntityType:  models.EntityBooking,
		EntityID:    "bk-earlier",
		Operation:   models.OpCreate,
		ScheduledAt: now.Add(-time.Hour),
	}
	future := &models.SyncQueueItem{
		EntityType:  models.EntityBooking,
		EntityID:    "bk-future",
		Operation:   models.OpCreate,
		ScheduledAt: now.Add(time.Hour),
	}
	for _, it := range []*models.SyncQueueItem{later, earlier, future} {
		require.NoError(t, st.EnqueueItem(ctx, it))
	}

	items, err := st.GetPendingItems(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "bk-earlier", items[0].EntityID)
	assert.Equal(t, "bk-later", items[1].EntityID)
}

func TestGetPendingItemsRespectsLimit(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		item := &models.SyncQueueItem{
			EntityType:  models.EntityProfile,
			EntityID:    "user-1",
			Operation:   models.OpUpdate,
			ScheduledAt: now.Add(-time.Minute),
		}
		require.NoError(t, st.EnqueueItem(ctx, item))
	}

	items, err := st.GetPendingItems(ctx, now, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestMarkItemRetry(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	item := &models.SyncQueueItem{
		EntityType:  models.EntityBooking,
		EntityID:    "bk-1",
		Operation:   models.OpCreate,
		ScheduledAt: now.Add(-time.Minute),
	}
	require.NoError(t, st.EnqueueItem(ctx, item))

	nextAt := now.Add(30 * time.Second)
	require.NoError(t, st.MarkItemRetry(ctx, item.ID, "connection refused", nextAt))

	// Not due yet.
	due, err := st.GetPendingItems(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	// Due once the clock passes the reschedule point.
	due, err = st.GetPendingItems(ctx, nextAt.Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, models.ItemRetry, due[0].Status)
	assert.Equal(t, 1, due[0].RetryCount)
	require.NotNil(t, due[0].LastError)
	assert.Equal(t, "connection refused", *due[0].LastError)
}

func TestMarkItemFailed(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	item := &models.SyncQueueItem{
		EntityType:  models.EntityBooking,
		EntityID:    "bk-1",
		Operation:   models.OpCreate,
		ScheduledAt: now.Add(-time.Minute),
	}
	require.NoError(t, st.EnqueueItem(ctx, item))

	require.NoError(t, st.MarkItemFailed(ctx, item.ID, "permanent failure"))

	due, err := st.GetPendingItems(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	failed, err := st.GetFailedItems(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, models.ItemFailed, failed[0].Status)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "permanent failure", *failed[0].LastError)
	assert.NotNil(t, failed[0].ProcessedAt)

	n, err := st.CountFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRemoveItem(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	item := &models.SyncQueueItem{
		EntityType: models.EntityBooking,
		EntityID:   "bk-1",
		Operation:  models.OpCreate,
	}
	require.NoError(t, st.EnqueueItem(ctx, item))
	require.NoError(t, st.RemoveItem(ctx, item.ID))

	n, err := st.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestClearFailed(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		item := &models.SyncQueueItem{
			EntityType: models.EntityBooking,
			EntityID:   "bk-1",
			Operation:  models.OpCreate,
		}
		require.NoError(t, st.EnqueueItem(ctx, item))
		require.NoError(t, st.MarkItemFailed(ctx, item.ID, "boom"))
	}
	keep := &models.SyncQueueItem{
		EntityType: models.EntityProfile,
		EntityID:   "user-1",
		Operation:  models.OpUpdate,
	}
	require.NoError(t, st.EnqueueItem(ctx, keep))

	cleared, err := st.ClearFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	n, err := st.CountFailed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	pending, err := st.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}
