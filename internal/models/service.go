package models

import "time"

// Service is a catalog entry mirrored read-only from the remote booking service.
type Service struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	ServiceType     string            `json:"service_type"` // beauty, fitness, spa
	DurationMinutes int               `json:"duration_minutes"`
	Price           int64             `json:"price"` // minor currency units
	Currency        string            `json:"currency"`
	Category        string            `json:"category"`
	Capacity        int               `json:"capacity"` // 0 means unbounded
	DepositPolicy   string            `json:"deposit_policy"`
	Active          bool              `json:"active"`
	Tags            []string          `json:"tags,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// AvailabilitySlot describes one bookable slot of a service on a given date.
type AvailabilitySlot struct {
	ServiceID       string    `json:"service_id"`
	Date            time.Time `json:"date"`
	StartTime       string    `json:"start_time"` // "15:04"
	EndTime         string    `json:"end_time"`
	Available       bool      `json:"available"`
	CurrentBookings int       `json:"current_bookings"`
	Capacity        int       `json:"capacity"` // 0 means unbounded
}

// Bookable reports whether the slot can still take a booking.
func (s AvailabilitySlot) Bookable() bool {
	if !s.Available {
		return false
	}
	if s.Capacity <= 0 {
		return true
	}
	return s.CurrentBookings < s.Capacity
}
