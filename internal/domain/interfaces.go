package domain

import (
	"context"
	"time"

	"glowbook/internal/models"
)

// RemoteAPI is the surface of the remote booking service consumed by the
// repository and the sync manager. Lookups that find nothing return
// (nil, nil); errors mean the remote could not answer.
type RemoteAPI interface {
	GetServices(ctx context.Context, serviceType string) ([]models.Service, error)
	GetServiceByID(ctx context.Context, id string) (*models.Service, error)
	GetAvailabilitySlots(ctx context.Context, serviceID string, date time.Time) ([]models.AvailabilitySlot, error)
	CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	GetBookingDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error)
	CreateBookingDraft(ctx context.Context, draft *models.BookingDraft) (*models.BookingDraft, error)
	UpdateBookingDraft(ctx context.Context, draft *models.BookingDraft) (*models.BookingDraft, error)
	CreateHold(ctx context.Context, hold *models.Hold) (*models.Hold, error)
	RemoveHold(ctx context.Context, sessionID string) error
	UpdateUserProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// SessionCache mirrors short-lived session state (holds, drafts) on the
// client so expiry checks and flow resume keep working offline.
type SessionCache interface {
	GetHold(ctx context.Context, sessionID string) (*models.Hold, error)
	SetHold(ctx context.Context, hold *models.Hold) error
	DeleteHold(ctx context.Context, sessionID string) error
	GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error)
	SetDraft(ctx context.Context, draft *models.BookingDraft) error
	DeleteDraft(ctx context.Context, sessionID string) error
}

// SyncQueue is the enqueue-side of the sync queue manager, consumed by the
// repository for writes that must be replayed later.
type SyncQueue interface {
	EnqueueSyncOperation(ctx context.Context, entityType, entityID, operation string, payload any) error
}
