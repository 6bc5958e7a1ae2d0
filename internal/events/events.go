package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated    = "booking_created"
	EventBookingSynced     = "booking_synced"
	EventSyncStarted       = "sync_started"
	EventSyncCompleted     = "sync_completed"
	EventSyncFailed        = "sync_failed"
	EventCacheRefreshed    = "cache_refreshed"
	EventSyncStatusChanged = "sync_status_changed"
)

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID string    `json:"booking_id"`
	ServiceID string    `json:"service_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Synced    bool      `json:"synced"`
	Date      time.Time `json:"date"`
}

// SyncEventPayload describes the outcome of a sync pass or a status change.
type SyncEventPayload struct {
	Status    string `json:"status,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Failed    int    `json:"failed,omitempty"`
	Pending   int    `json:"pending,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events. It is the observation
// channel between the sync core and UI-side consumers.
type EventBus struct {
	subscribers map[string]map[int64]EventHandler
	nextID      int64
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string]map[int64]EventHandler)}
}

// Subscribe registers a handler for a given event type and returns a token
// usable with Unsubscribe.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[int64]EventHandler)
	}
	b.subscribers[eventType][b.nextID] = handler
	return b.nextID
}

// Unsubscribe removes a previously registered handler.
func (b *EventBus) Unsubscribe(eventType string, token int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers[eventType], token)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subscribers[event.Type]))
	for _, h := range b.subscribers[event.Type] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
