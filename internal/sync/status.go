package sync

import (
	"sync"
	"time"

	"glowbook/internal/events"
	"glowbook/internal/metrics"
)

// Status is the process-wide sync state observable by the UI.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusCaching Status = "caching"
	StatusError   Status = "error"
)

// StateTracker owns the observable sync state: current status, last
// successful sync time and pending queue depth. The sync manager is its
// single writer; consumers read through the getters or subscribe to
// status-change events on the bus.
type StateTracker struct {
	mu       sync.RWMutex
	status   Status
	lastSync time.Time
	pending  int
	bus      *events.EventBus
}

func NewStateTracker(bus *events.EventBus) *StateTracker {
	return &StateTracker{status: StatusIdle, bus: bus}
}

func (t *StateTracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *StateTracker) LastSync() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastSync
}

func (t *StateTracker) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending
}

func (t *StateTracker) setStatus(s Status) {
	t.mu.Lock()
	changed := t.status != s
	t.status = s
	t.mu.Unlock()

	if changed {
		_ = t.bus.PublishJSON(events.EventSyncStatusChanged, events.SyncEventPayload{Status: string(s)})
	}
}

func (t *StateTracker) markSynced(at time.Time) {
	t.mu.Lock()
	t.lastSync = at
	t.mu.Unlock()
}

func (t *StateTracker) setPending(n int) {
	t.mu.Lock()
	t.pending = n
	t.mu.Unlock()
	metrics.SetPending(n)
}
