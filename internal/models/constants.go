package models

import "time"

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses.
const (
	PaymentUnpaid   = "unpaid"
	PaymentDeposit  = "deposit_paid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Sync queue entity types.
const (
	EntityBooking = "booking"
	EntityProfile = "profile"
	EntityService = "service"
)

// Sync queue operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Sync queue item states.
const (
	ItemPending = "pending"
	ItemRetry   = "retry"
	ItemFailed  = "failed"
)

const (
	// DefaultMaxRetries bounds attempts per queue item before it is parked as failed.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay for the linear per-item backoff.
	DefaultRetryDelay = 30 * time.Second

	// DefaultSyncInterval is the periodic background sync interval.
	DefaultSyncInterval = 6 * time.Hour

	// DefaultBatchSize caps the queue snapshot taken by a single sync pass.
	DefaultBatchSize = 50

	// HoldTTL is the lifetime of a slot hold.
	HoldTTL = 5 * time.Minute

	// DraftTTL is the lifetime of a booking draft.
	DraftTTL = time.Hour
)
