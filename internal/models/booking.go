package models

import "time"

// Booking is a reservation of a service slot. The ID is client-generated
// (uuid) until the remote service confirms the booking and assigns its own;
// Synced marks whether the record is authoritative on the remote side.
type Booking struct {
	ID                string    `json:"id"`
	ServiceID         string    `json:"service_id"`
	UserID            string    `json:"user_id"`
	ClientName        string    `json:"client_name"`
	ClientPhone       string    `json:"client_phone"`
	ClientEmail       string    `json:"client_email"`
	Date              time.Time `json:"date"`
	StartTime         string    `json:"start_time"`
	EndTime           string    `json:"end_time"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	Deposit           int64     `json:"deposit"`
	Status            string    `json:"status"` // pending, confirmed, completed, cancelled
	PaymentStatus     string    `json:"payment_status"`
	ExternalBookingID string    `json:"external_booking_id,omitempty"`
	ExternalSource    string    `json:"external_source,omitempty"`
	Synced            bool      `json:"synced"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookingRequest carries the fields needed to create a booking remotely.
type BookingRequest struct {
	ServiceID   string    `json:"service_id"`
	UserID      string    `json:"user_id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	ClientEmail string    `json:"client_email"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Deposit     int64     `json:"deposit"`
}

// Request rebuilds a creation request from a locally stored booking. Used
// when replaying offline bookings against the remote service.
func (b *Booking) Request() *BookingRequest {
	return &BookingRequest{
		ServiceID:   b.ServiceID,
		UserID:      b.UserID,
		ClientName:  b.ClientName,
		ClientPhone: b.ClientPhone,
		ClientEmail: b.ClientEmail,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Amount:      b.Amount,
		Currency:    b.Currency,
		Deposit:     b.Deposit,
	}
}
