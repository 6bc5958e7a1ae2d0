package models

import "time"

// SyncQueueItem is a durable record of a mutation that must be replayed
// against the remote booking service.
type SyncQueueItem struct {
	ID          int64      `json:"id"`
	EntityType  string     `json:"entity_type"` // booking, profile, service
	EntityID    string     `json:"entity_id"`
	Operation   string     `json:"operation"` // create, update, delete
	Payload     string     `json:"payload"`   // JSON, shape depends on entity type
	Status      string     `json:"status"`    // pending, retry, failed
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}
