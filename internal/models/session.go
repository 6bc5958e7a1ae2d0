package models

import "time"

// Hold is a short-lived soft-lock on a (service, date, slot) tuple preventing
// double-booking while the client completes checkout.
type Hold struct {
	SessionID string    `json:"session_id"`
	ServiceID string    `json:"service_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the hold is no longer valid at the given instant.
// A hold is invalid at its expiry instant and any time after.
func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// BookingDraft is session-scoped partial booking state supporting resumable
// multi-step booking flows. Superseded by a real Booking on submission.
type BookingDraft struct {
	SessionID  string            `json:"session_id"`
	ServiceID  string            `json:"service_id,omitempty"`
	ClientData map[string]string `json:"client_data"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// Merge overlays data onto the draft's client data, bumps UpdatedAt and
// resets the expiry window.
func (d *BookingDraft) Merge(data map[string]string, now time.Time) {
	if d.ClientData == nil {
		d.ClientData = make(map[string]string, len(data))
	}
	for k, v := range data {
		d.ClientData[k] = v
	}
	d.UpdatedAt = now
	d.ExpiresAt = now.Add(DraftTTL)
}

// Expired reports whether the draft has outlived its expiry window.
func (d *BookingDraft) Expired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}
