package domain

import (
	"time"

	"glowbook/internal/models"
)

// Write paths never propagate transport errors as Go errors to callers.
// They return tagged results instead; Err is empty on success.

// BookingResult is the outcome of a booking write.
type BookingResult struct {
	Booking *models.Booking `json:"booking,omitempty"`
	Err     string          `json:"error,omitempty"`
}

// OK reports whether the write succeeded.
func (r BookingResult) OK() bool { return r.Err == "" }

// HoldResult is the outcome of a hold write.
type HoldResult struct {
	Hold *models.Hold `json:"hold,omitempty"`
	Err  string       `json:"error,omitempty"`
}

func (r HoldResult) OK() bool { return r.Err == "" }

// DraftResult is the outcome of a draft upsert.
type DraftResult struct {
	Draft *models.BookingDraft `json:"draft,omitempty"`
	Err   string               `json:"error,omitempty"`
}

func (r DraftResult) OK() bool { return r.Err == "" }

// ProfileResult is the outcome of a profile push. Queued is set when the
// remote write failed and the update was enqueued for later sync.
type ProfileResult struct {
	Profile *models.Profile `json:"profile,omitempty"`
	Queued  bool            `json:"queued,omitempty"`
	Err     string          `json:"error,omitempty"`
}

func (r ProfileResult) OK() bool { return r.Err == "" }

// ItemResult is the per-item outcome inside a sync pass.
type ItemResult struct {
	ItemID     int64  `json:"item_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Operation  string `json:"operation"`
	Err        string `json:"error,omitempty"`
}

func (r ItemResult) OK() bool { return r.Err == "" }

// SyncReport aggregates one sync pass. Err is set only when the pass itself
// blew up, not when individual items failed.
type SyncReport struct {
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items,omitempty"`
	Err       string       `json:"error,omitempty"`
}

func (r SyncReport) OK() bool { return r.Err == "" }

// SyncStats is the observable snapshot exposed to the UI.
type SyncStats struct {
	Status       string    `json:"status"`
	PendingItems int       `json:"pending_items"`
	FailedItems  int       `json:"failed_items"`
	LastSync     time.Time `json:"last_sync"`
}
