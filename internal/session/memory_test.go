package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/internal/models"
)

func TestMemoryCacheHolds(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Now()

	hold := &models.Hold{
		SessionID: "sess-1",
		ServiceID: "svc-1",
		StartTime: "10:00",
		CreatedAt: now,
		ExpiresAt: now.Add(models.HoldTTL),
	}
	require.NoError(t, c.SetHold(ctx, hold))

	got, err := c.GetHold(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "svc-1", got.ServiceID)

	missing, err := c.GetHold(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, c.DeleteHold(ctx, "sess-1"))
	got, err = c.GetHold(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheExpiredHoldInvisible(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, c.SetHold(ctx, &models.Hold{
		SessionID: "sess-1",
		ExpiresAt: now.Add(-time.Second),
	}))

	got, err := c.GetHold(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheDrafts(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Now()

	draft := &models.BookingDraft{
		SessionID:  "sess-1",
		ClientData: map[string]string{"name": "Ada"},
		ExpiresAt:  now.Add(models.DraftTTL),
	}
	require.NoError(t, c.SetDraft(ctx, draft))

	got, err := c.GetDraft(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.ClientData["name"])

	require.NoError(t, c.DeleteDraft(ctx, "sess-1"))
	got, err = c.GetDraft(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCachePrune(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, c.SetHold(ctx, &models.Hold{SessionID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, c.SetHold(ctx, &models.Hold{SessionID: "dead", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, c.SetDraft(ctx, &models.BookingDraft{SessionID: "dead", ExpiresAt: now.Add(-time.Minute)}))

	removed := c.Prune(now)
	assert.Equal(t, 2, removed)

	live, err := c.GetHold(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, live)
}
