package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"glowbook/internal/domain"
	"glowbook/internal/events"
	"glowbook/internal/metrics"
	"glowbook/internal/models"
	"glowbook/internal/store"

	"github.com/rs/zerolog"
)

// Manager replays queued mutations against the remote booking service.
// Items are processed strictly sequentially within a pass so two writes to
// the same local record can never race; the pass works on a snapshot, so
// items enqueued mid-run wait for the next pass.
type Manager struct {
	store      *store.Store
	remote     domain.RemoteAPI
	state      *StateTracker
	bus        *events.EventBus
	policy     BackoffPolicy
	maxRetries int
	batchSize  int
	nudge      chan struct{}
	logger     zerolog.Logger

	passMu sync.Mutex
}

var _ domain.SyncQueue = (*Manager)(nil)

type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	BatchSize  int
}

func NewManager(st *store.Store, remote domain.RemoteAPI, state *StateTracker, bus *events.EventBus, opts Options, logger zerolog.Logger) *Manager {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = models.DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = models.DefaultRetryDelay
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = models.DefaultBatchSize
	}

	return &Manager{
		store:      st,
		remote:     remote,
		state:      state,
		bus:        bus,
		policy:     BackoffPolicy{Base: opts.RetryDelay},
		maxRetries: opts.MaxRetries,
		batchSize:  opts.BatchSize,
		nudge:      make(chan struct{}, 1),
		logger:     logger.With().Str("component", "sync-manager").Logger(),
	}
}

// EnqueueSyncOperation appends a queue item with retryCount=0, scheduled
// immediately. When the manager is idle, an immediate sync pass is nudged.
func (m *Manager) EnqueueSyncOperation(ctx context.Context, entityType, entityID, operation string, payload any) error {
	var raw string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode sync payload: %w", err)
		}
		raw = string(data)
	}

	item := &models.SyncQueueItem{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		Payload:    raw,
	}
	if err := m.store.EnqueueItem(ctx, item); err != nil {
		return err
	}

	m.refreshPending(ctx)

	if m.state.Status() == StatusIdle {
		m.ScheduleImmediateSync()
	}
	return nil
}

// ScheduleImmediateSync asks the scheduler for a pass as soon as possible.
// Non-blocking; a pending nudge is enough.
func (m *Manager) ScheduleImmediateSync() {
	select {
	case m.nudge <- struct{}{}:
	default:
	}
}

// Nudge exposes the immediate-sync trigger for the scheduler loop.
func (m *Manager) Nudge() <-chan struct{} {
	return m.nudge
}

// SyncAll drains the current due-queue snapshot sequentially. The pass holds
// status SYNCING; it ends IDLE, or ERROR when the pass itself blew up (each
// item keeps its own retry budget either way).
func (m *Manager) SyncAll(ctx context.Context) (report domain.SyncReport) {
	m.passMu.Lock()
	defer m.passMu.Unlock()

	m.state.setStatus(StatusSyncing)
	_ = m.bus.PublishJSON(events.EventSyncStarted, events.SyncEventPayload{Status: string(StatusSyncing)})

	defer func() {
		if rec := recover(); rec != nil {
			report.Err = fmt.Sprintf("sync pass panicked: %v", rec)
		}
		if report.Err != "" {
			m.state.setStatus(StatusError)
			metrics.IncSyncPass("error")
			m.logger.Error().Str("error", report.Err).Msg("sync pass failed")
			_ = m.bus.PublishJSON(events.EventSyncFailed, events.SyncEventPayload{Status: string(StatusError), Failed: report.Failed})
			return
		}

		m.state.markSynced(time.Now())
		m.state.setStatus(StatusIdle)
		metrics.IncSyncPass("ok")
		_ = m.bus.PublishJSON(events.EventSyncCompleted, events.SyncEventPayload{
			Status:    string(StatusIdle),
			Processed: report.Processed,
			Failed:    report.Failed,
			Pending:   m.state.Pending(),
		})
	}()

	items, err := m.store.GetPendingItems(ctx, time.Now(), m.batchSize)
	if err != nil {
		report.Err = err.Error()
		return report
	}

	for i := range items {
		item := &items[i]
		res := domain.ItemResult{
			ItemID:     item.ID,
			EntityType: item.EntityType,
			EntityID:   item.EntityID,
			Operation:  item.Operation,
		}

		if err := m.dispatch(ctx, item); err != nil {
			res.Err = err.Error()
			report.Failed++
			m.retryOrFail(ctx, item, err)
		} else {
			if err := m.store.RemoveItem(ctx, item.ID); err != nil {
				m.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to remove completed sync item")
			}
			metrics.IncSyncItem(item.EntityType, "ok")
		}

		report.Processed++
		report.Items = append(report.Items, res)
	}

	m.refreshPending(ctx)
	return report
}

func (m *Manager) dispatch(ctx context.Context, item *models.SyncQueueItem) error {
	switch item.EntityType {
	case models.EntityBooking:
		return m.processBookingSync(ctx, item)
	case models.EntityProfile:
		return m.processProfileSync(ctx, item)
	case models.EntityService:
		// Services are read-only on the client; the entity type exists for
		// cache-refresh bookkeeping and always succeeds.
		return nil
	default:
		return fmt.Errorf("unknown entity type: %s", item.EntityType)
	}
}

func (m *Manager) processBookingSync(ctx context.Context, item *models.SyncQueueItem) error {
	switch item.Operation {
	case models.OpCreate:
		booking, err := m.store.GetBooking(ctx, item.EntityID)
		if err != nil {
			return fmt.Errorf("load booking %s: %w", item.EntityID, err)
		}
		if booking == nil {
			return fmt.Errorf("booking %s not found locally", item.EntityID)
		}
		if booking.Synced {
			// Already confirmed through another path; nothing to replay.
			return nil
		}

		created, err := m.remote.CreateBooking(ctx, booking.Request())
		if err != nil {
			return err
		}

		if err := m.store.MarkBookingSynced(ctx, booking.ID, created.ID); err != nil {
			return fmt.Errorf("rewrite booking id %s -> %s: %w", booking.ID, created.ID, err)
		}

		_ = m.bus.PublishJSON(events.EventBookingSynced, events.BookingEventPayload{
			BookingID: created.ID,
			ServiceID: booking.ServiceID,
			UserID:    booking.UserID,
			Status:    created.Status,
			Synced:    true,
			Date:      booking.Date,
		})
		return nil
	case models.OpUpdate, models.OpDelete:
		return fmt.Errorf("booking %s: %w", item.Operation, domain.ErrUnsupportedOperation)
	default:
		return fmt.Errorf("unknown booking operation: %s", item.Operation)
	}
}

func (m *Manager) processProfileSync(ctx context.Context, item *models.SyncQueueItem) error {
	switch item.Operation {
	case models.OpUpdate:
		var profile models.Profile
		if item.Payload != "" {
			if err := json.Unmarshal([]byte(item.Payload), &profile); err != nil {
				return fmt.Errorf("decode profile payload: %w", err)
			}
		} else {
			stored, err := m.store.GetProfile(ctx, item.EntityID)
			if err != nil {
				return fmt.Errorf("load profile %s: %w", item.EntityID, err)
			}
			if stored == nil {
				return fmt.Errorf("profile %s not found locally", item.EntityID)
			}
			profile = *stored
		}

		_, err := m.remote.UpdateUserProfile(ctx, &profile)
		return err
	case models.OpCreate, models.OpDelete:
		return fmt.Errorf("profile %s: %w", item.Operation, domain.ErrUnsupportedOperation)
	default:
		return fmt.Errorf("unknown profile operation: %s", item.Operation)
	}
}

// retryOrFail applies the retry budget: items that still have attempts left
// are rescheduled with a linearly growing delay; items out of budget are
// parked as failed for observability.
func (m *Manager) retryOrFail(ctx context.Context, item *models.SyncQueueItem, cause error) {
	if item.RetryCount+1 >= m.maxRetries {
		if err := m.store.MarkItemFailed(ctx, item.ID, cause.Error()); err != nil {
			m.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to park sync item")
		}
		metrics.IncSyncItem(item.EntityType, "failed")
		m.logger.Warn().
			Int64("item_id", item.ID).
			Str("entity_type", item.EntityType).
			Str("entity_id", item.EntityID).
			Str("error", cause.Error()).
			Msg("sync item exhausted retries")
		return
	}

	nextAt := time.Now().Add(m.policy.Delay(item.RetryCount))
	if err := m.store.MarkItemRetry(ctx, item.ID, cause.Error(), nextAt); err != nil {
		m.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to reschedule sync item")
	}
	metrics.IncSyncItem(item.EntityType, "retry")
}

// RefreshCache force-refetches the service catalog and overwrites the local
// mirror, holding status CACHING for the duration.
func (m *Manager) RefreshCache(ctx context.Context) error {
	m.state.setStatus(StatusCaching)
	defer m.state.setStatus(StatusIdle)

	services, err := m.remote.GetServices(ctx, "")
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	if err := m.store.ReplaceServices(ctx, "", services); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}

	_ = m.bus.PublishJSON(events.EventCacheRefreshed, events.SyncEventPayload{Processed: len(services)})
	m.logger.Info().Int("services", len(services)).Msg("service catalog refreshed")
	return nil
}

// ForceSync runs a pass immediately regardless of the periodic schedule.
func (m *Manager) ForceSync(ctx context.Context) domain.SyncReport {
	return m.SyncAll(ctx)
}

// ClearFailedSyncs drops all permanently-failed queue items.
func (m *Manager) ClearFailedSyncs(ctx context.Context) (int64, error) {
	return m.store.ClearFailed(ctx)
}

// GetSyncStats returns the observable snapshot for the UI.
func (m *Manager) GetSyncStats(ctx context.Context) domain.SyncStats {
	stats := domain.SyncStats{
		Status:   string(m.state.Status()),
		LastSync: m.state.LastSync(),
	}

	if pending, err := m.store.CountPending(ctx); err == nil {
		stats.PendingItems = pending
	}
	if failed, err := m.store.CountFailed(ctx); err == nil {
		stats.FailedItems = failed
	}
	return stats
}

func (m *Manager) refreshPending(ctx context.Context) {
	pending, err := m.store.CountPending(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to count pending sync items")
		return
	}
	m.state.setPending(pending)
}
