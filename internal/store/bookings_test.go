package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/internal/models"
)

func testBooking(id, userID string, createdAt time.Time) models.Booking {
	return models.Booking{
		ID:            id,
		ServiceID:     "svc-1",
		UserID:        userID,
		ClientName:    "Ada",
		ClientPhone:   "+15550001111",
		Date:          createdAt.AddDate(0, 0, 7),
		StartTime:     "10:00",
		EndTime:       "11:00",
		Amount:        4500,
		Currency:      "USD",
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestUpsertAndGetBooking(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-1", "user-1", time.Now().Truncate(time.Second))
	require.NoError(t, st.UpsertBooking(ctx, &b))

	got, err := st.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "10:00", got.StartTime)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.False(t, got.Synced)

	// Last writer wins on conflict.
	b.Status = models.StatusConfirmed
	b.Synced = true
	require.NoError(t, st.UpsertBooking(ctx, &b))

	got, err = st.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.True(t, got.Synced)
}

func TestGetBookingMissing(t *testing.T) {
	st := setupTestStore(t)

	got, err := st.GetBooking(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetUserBookingsNewestFirst(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	old := testBooking("bk-old", "user-1", base.Add(-2*time.Hour))
	mid := testBooking("bk-mid", "user-1", base.Add(-time.Hour))
	other := testBooking("bk-other", "user-2", base)

	for _, b := range []models.Booking{old, mid, other} {
		bb := b
		require.NoError(t, st.UpsertBooking(ctx, &bb))
	}

	got, err := st.GetUserBookings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bk-mid", got[0].ID)
	assert.Equal(t, "bk-old", got[1].ID)
}

func TestGetUnsyncedBookingsOldestFirst(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	first := testBooking("bk-1", "user-1", base.Add(-2*time.Hour))
	second := testBooking("bk-2", "user-1", base.Add(-time.Hour))
	synced := testBooking("bk-3", "user-1", base)
	synced.Synced = true

	for _, b := range []models.Booking{second, first, synced} {
		bb := b
		require.NoError(t, st.UpsertBooking(ctx, &bb))
	}

	got, err := st.GetUnsyncedBookings(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bk-1", got[0].ID)
	assert.Equal(t, "bk-2", got[1].ID)
}

func TestMarkBookingSynced(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("local-uuid", "user-1", time.Now().Truncate(time.Second))
	require.NoError(t, st.UpsertBooking(ctx, &b))

	require.NoError(t, st.MarkBookingSynced(ctx, "local-uuid", "srv-42"))

	// The local id no longer resolves.
	gone, err := st.GetBooking(ctx, "local-uuid")
	require.NoError(t, err)
	assert.Nil(t, gone)

	got, err := st.GetBooking(ctx, "srv-42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Synced)

	unsynced, err := st.GetUnsyncedBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)
}

func TestMarkBookingSyncedMissing(t *testing.T) {
	st := setupTestStore(t)

	err := st.MarkBookingSynced(context.Background(), "nope", "srv-1")
	assert.Error(t, err)
}

func TestUpdateBookingStatus(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-1", "user-1", time.Now().Truncate(time.Second))
	require.NoError(t, st.UpsertBooking(ctx, &b))

	require.NoError(t, st.UpdateBookingStatus(ctx, "bk-1", models.StatusCancelled))

	got, err := st.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusCancelled, got.Status)
}
