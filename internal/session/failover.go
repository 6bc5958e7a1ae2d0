package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"glowbook/internal/domain"
	"glowbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverCache prefers the primary (redis) session cache and falls back to
// the in-memory one when the primary goes down, probing for recovery once a
// minute.
type FailoverCache struct {
	primary  domain.SessionCache
	fallback domain.SessionCache
	logger   zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

var _ domain.SessionCache = (*FailoverCache)(nil)

func NewFailoverCache(primary, fallback domain.SessionCache, logger zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "session-cache").Logger(),
	}
}

func (c *FailoverCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("primary session cache failed, falling back to memory")
	c.isDown.Store(true)
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
}

// shouldProbe reports whether enough time passed to retry the primary.
func (c *FailoverCache) shouldProbe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) < time.Minute {
		return false
	}
	c.lastCheck = time.Now()
	return true
}

func (c *FailoverCache) GetHold(ctx context.Context, sessionID string) (*models.Hold, error) {
	if !c.isDown.Load() {
		hold, err := c.primary.GetHold(ctx, sessionID)
		if err == nil {
			return hold, nil
		}
		c.markDown(err)
	} else if c.shouldProbe() {
		hold, err := c.primary.GetHold(ctx, sessionID)
		if err == nil {
			c.isDown.Store(false)
			return hold, nil
		}
	}

	return c.fallback.GetHold(ctx, sessionID)
}

func (c *FailoverCache) SetHold(ctx context.Context, hold *models.Hold) error {
	if !c.isDown.Load() {
		if err := c.primary.SetHold(ctx, hold); err != nil {
			c.markDown(err)
		}
	}
	// Always mirror to memory so a later redis outage loses nothing.
	return c.fallback.SetHold(ctx, hold)
}

func (c *FailoverCache) DeleteHold(ctx context.Context, sessionID string) error {
	if !c.isDown.Load() {
		if err := c.primary.DeleteHold(ctx, sessionID); err != nil {
			c.markDown(err)
		}
	}
	return c.fallback.DeleteHold(ctx, sessionID)
}

func (c *FailoverCache) GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	if !c.isDown.Load() {
		draft, err := c.primary.GetDraft(ctx, sessionID)
		if err == nil {
			return draft, nil
		}
		c.markDown(err)
	} else if c.shouldProbe() {
		draft, err := c.primary.GetDraft(ctx, sessionID)
		if err == nil {
			c.isDown.Store(false)
			return draft, nil
		}
	}

	return c.fallback.GetDraft(ctx, sessionID)
}

func (c *FailoverCache) SetDraft(ctx context.Context, draft *models.BookingDraft) error {
	if !c.isDown.Load() {
		if err := c.primary.SetDraft(ctx, draft); err != nil {
			c.markDown(err)
		}
	}
	return c.fallback.SetDraft(ctx, draft)
}

func (c *FailoverCache) DeleteDraft(ctx context.Context, sessionID string) error {
	if !c.isDown.Load() {
		if err := c.primary.DeleteDraft(ctx, sessionID); err != nil {
			c.markDown(err)
		}
	}
	return c.fallback.DeleteDraft(ctx, sessionID)
}
