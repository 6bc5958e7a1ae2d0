package models

import "time"

// Profile holds the client-side view of a user profile.
type Profile struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	Preferences map[string]string `json:"preferences,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
