package session

import (
	"context"
	"sync"
	"time"

	"glowbook/internal/models"
)

// MemoryCache is the in-process fallback for holds and drafts. Entries carry
// their own expiry; Prune sweeps what redis would have evicted by TTL.
type MemoryCache struct {
	holds  sync.Map
	drafts sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) GetHold(ctx context.Context, sessionID string) (*models.Hold, error) {
	val, ok := c.holds.Load(sessionID)
	if !ok {
		return nil, nil
	}
	hold := val.(*models.Hold)
	if hold.Expired(time.Now()) {
		c.holds.Delete(sessionID)
		return nil, nil
	}
	return hold, nil
}

func (c *MemoryCache) SetHold(ctx context.Context, hold *models.Hold) error {
	c.holds.Store(hold.SessionID, hold)
	return nil
}

func (c *MemoryCache) DeleteHold(ctx context.Context, sessionID string) error {
	c.holds.Delete(sessionID)
	return nil
}

func (c *MemoryCache) GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	val, ok := c.drafts.Load(sessionID)
	if !ok {
		return nil, nil
	}
	draft := val.(*models.BookingDraft)
	if draft.Expired(time.Now()) {
		c.drafts.Delete(sessionID)
		return nil, nil
	}
	return draft, nil
}

func (c *MemoryCache) SetDraft(ctx context.Context, draft *models.BookingDraft) error {
	c.drafts.Store(draft.SessionID, draft)
	return nil
}

func (c *MemoryCache) DeleteDraft(ctx context.Context, sessionID string) error {
	c.drafts.Delete(sessionID)
	return nil
}

// Prune drops expired holds and drafts. Called by the scheduler's
// housekeeping tick.
func (c *MemoryCache) Prune(now time.Time) int {
	removed := 0
	c.holds.Range(func(key, val any) bool {
		if val.(*models.Hold).Expired(now) {
			c.holds.Delete(key)
			removed++
		}
		return true
	})
	c.drafts.Range(func(key, val any) bool {
		if val.(*models.BookingDraft).Expired(now) {
			c.drafts.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
