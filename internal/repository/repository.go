package repository

import (
	"context"
	"time"

	"glowbook/internal/domain"
	"glowbook/internal/events"
	"glowbook/internal/metrics"
	"glowbook/internal/models"
	"glowbook/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository is the single source of truth facade over the remote booking
// service and the local store. Read paths never return transport errors:
// they degrade to last-known-local state. Write paths return tagged results.
type Repository struct {
	store    *store.Store
	remote   domain.RemoteAPI
	sessions domain.SessionCache
	queue    domain.SyncQueue
	bus      *events.EventBus
	logger   zerolog.Logger
}

func New(st *store.Store, remote domain.RemoteAPI, sessions domain.SessionCache, queue domain.SyncQueue, bus *events.EventBus, logger zerolog.Logger) *Repository {
	return &Repository{
		store:    st,
		remote:   remote,
		sessions: sessions,
		queue:    queue,
		bus:      bus,
		logger:   logger.With().Str("component", "repository").Logger(),
	}
}

// GetServices fetches the catalog remotely and mirrors it into the local
// store; on any remote failure it serves the cached subset with the same
// filter. Always returns a list, empty when neither source has data.
func (r *Repository) GetServices(ctx context.Context, serviceType string) []models.Service {
	services, err := r.remote.GetServices(ctx, serviceType)
	if err != nil {
		r.logger.Warn().Err(err).Str("type", serviceType).Msg("remote catalog fetch failed, serving cached services")
		metrics.IncFallback(models.EntityService)
		cached, err := r.store.GetServices(ctx, serviceType)
		if err != nil {
			r.logger.Error().Err(err).Msg("local services query failed")
			return []models.Service{}
		}
		return cached
	}

	if err := r.store.ReplaceServices(ctx, serviceType, services); err != nil {
		r.logger.Error().Err(err).Msg("failed to mirror services into local store")
	}
	if services == nil {
		services = []models.Service{}
	}
	return services
}

// GetServiceByID reads through to the remote service, caching hits locally.
// Returns nil when the service exists in neither source.
func (r *Repository) GetServiceByID(ctx context.Context, id string) *models.Service {
	svc, err := r.remote.GetServiceByID(ctx, id)
	if err != nil {
		r.logger.Warn().Err(err).Str("service_id", id).Msg("remote service lookup failed, trying cache")
		metrics.IncFallback(models.EntityService)
		cached, err := r.store.GetServiceByID(ctx, id)
		if err != nil {
			r.logger.Error().Err(err).Str("service_id", id).Msg("local service lookup failed")
			return nil
		}
		return cached
	}
	if svc == nil {
		return nil
	}

	if err := r.store.UpsertService(ctx, svc); err != nil {
		r.logger.Error().Err(err).Str("service_id", id).Msg("failed to cache service")
	}
	return svc
}

// GetAvailabilitySlots is remote-only: availability is time-sensitive and
// unsafe to cache, so failures yield an empty list rather than stale slots.
func (r *Repository) GetAvailabilitySlots(ctx context.Context, serviceID string, date time.Time) []models.AvailabilitySlot {
	slots, err := r.remote.GetAvailabilitySlots(ctx, serviceID, date)
	if err != nil {
		r.logger.Warn().Err(err).Str("service_id", serviceID).Msg("availability fetch failed")
		return []models.AvailabilitySlot{}
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return slots
}

// CreateBooking attempts the remote creation and, on success, persists the
// authoritative record locally. On failure it reports a failure result and
// does not enqueue anything; queued replay happens only through the offline
// path (CreateLocalBooking) and the explicit sync sweep.
func (r *Repository) CreateBooking(ctx context.Context, req *models.BookingRequest) domain.BookingResult {
	booking, err := r.remote.CreateBooking(ctx, req)
	if err != nil {
		r.logger.Warn().Err(err).Str("service_id", req.ServiceID).Msg("remote booking creation failed")
		return domain.BookingResult{Err: err.Error()}
	}

	booking.Synced = true
	if err := r.store.UpsertBooking(ctx, booking); err != nil {
		r.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to persist confirmed booking")
	}

	r.publishBooking(events.EventBookingCreated, booking)
	return domain.BookingResult{Booking: booking}
}

// CreateLocalBooking is the offline path: it persists a client-id booking
// with synced=false and enqueues its replay against the remote service.
func (r *Repository) CreateLocalBooking(ctx context.Context, req *models.BookingRequest) domain.BookingResult {
	now := time.Now()
	booking := &models.Booking{
		ID:            uuid.NewString(),
		ServiceID:     req.ServiceID,
		UserID:        req.UserID,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Deposit:       req.Deposit,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentUnpaid,
		Synced:        false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.store.UpsertBooking(ctx, booking); err != nil {
		return domain.BookingResult{Err: err.Error()}
	}

	if err := r.queue.EnqueueSyncOperation(ctx, models.EntityBooking, booking.ID, models.OpCreate, nil); err != nil {
		r.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to enqueue booking sync")
	}

	r.publishBooking(events.EventBookingCreated, booking)
	return domain.BookingResult{Booking: booking}
}

// GetUserBookings refreshes the local cache from the remote service when
// possible, then always serves from the local store so offline-created
// bookings and cached history appear in one list.
func (r *Repository) GetUserBookings(ctx context.Context, userID string) []models.Booking {
	remote, err := r.remote.GetUserBookings(ctx, userID)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID).Msg("remote bookings refresh failed, serving cache")
		metrics.IncFallback(models.EntityBooking)
	} else {
		for i := range remote {
			remote[i].Synced = true
			if err := r.store.UpsertBooking(ctx, &remote[i]); err != nil {
				r.logger.Error().Err(err).Str("booking_id", remote[i].ID).Msg("failed to cache booking")
			}
		}
	}

	bookings, err := r.store.GetUserBookings(ctx, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("local bookings query failed")
		return []models.Booking{}
	}
	return bookings
}

// ObserveUserBookings returns a channel that emits the user's booking list
// now and again whenever a booking changes underneath, until ctx is done.
func (r *Repository) ObserveUserBookings(ctx context.Context, userID string) <-chan []models.Booking {
	out := make(chan []models.Booking, 1)
	notify := make(chan struct{}, 1)

	handler := func(*events.Event) error {
		select {
		case notify <- struct{}{}:
		default:
		}
		return nil
	}
	createdToken := r.bus.Subscribe(events.EventBookingCreated, handler)
	syncedToken := r.bus.Subscribe(events.EventBookingSynced, handler)

	emit := func() {
		bookings, err := r.store.GetUserBookings(ctx, userID)
		if err != nil {
			return
		}
		select {
		case out <- bookings:
		case <-ctx.Done():
		}
	}

	go func() {
		defer func() {
			r.bus.Unsubscribe(events.EventBookingCreated, createdToken)
			r.bus.Unsubscribe(events.EventBookingSynced, syncedToken)
			close(out)
		}()

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				emit()
			}
		}
	}()

	return out
}

// CreateOrUpdateBookingDraft upserts the session draft: an existing draft is
// merged with the new data and its expiry window restarts; an absent one is
// created fresh. The result is mirrored into the session cache.
func (r *Repository) CreateOrUpdateBookingDraft(ctx context.Context, sessionID string, data map[string]string) domain.DraftResult {
	now := time.Now()

	existing, err := r.remote.GetBookingDraft(ctx, sessionID)
	if err != nil {
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("draft lookup failed")
		return domain.DraftResult{Err: err.Error()}
	}

	var draft *models.BookingDraft
	if existing != nil {
		existing.Merge(data, now)
		draft, err = r.remote.UpdateBookingDraft(ctx, existing)
	} else {
		fresh := &models.BookingDraft{
			SessionID:  sessionID,
			ClientData: map[string]string{},
			CreatedAt:  now,
		}
		fresh.Merge(data, now)
		draft, err = r.remote.CreateBookingDraft(ctx, fresh)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("draft upsert failed")
		return domain.DraftResult{Err: err.Error()}
	}

	if err := r.sessions.SetDraft(ctx, draft); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to mirror draft")
	}
	return domain.DraftResult{Draft: draft}
}

// GetBookingDraft resumes a session draft, preferring the remote copy and
// falling back to the local session mirror when offline.
func (r *Repository) GetBookingDraft(ctx context.Context, sessionID string) *models.BookingDraft {
	draft, err := r.remote.GetBookingDraft(ctx, sessionID)
	if err != nil {
		cached, cerr := r.sessions.GetDraft(ctx, sessionID)
		if cerr != nil {
			return nil
		}
		return cached
	}
	if draft != nil && draft.Expired(time.Now()) {
		return nil
	}
	return draft
}

// CreateHold soft-locks a (service, date, slot) tuple for the session.
func (r *Repository) CreateHold(ctx context.Context, serviceID string, date time.Time, slot, sessionID string) domain.HoldResult {
	now := time.Now()
	hold := &models.Hold{
		SessionID: sessionID,
		ServiceID: serviceID,
		Date:      date,
		StartTime: slot,
		CreatedAt: now,
		ExpiresAt: now.Add(models.HoldTTL),
	}

	created, err := r.remote.CreateHold(ctx, hold)
	if err != nil {
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("hold creation failed")
		return domain.HoldResult{Err: err.Error()}
	}

	if err := r.sessions.SetHold(ctx, created); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to mirror hold")
	}
	return domain.HoldResult{Hold: created}
}

// ReleaseHold removes the session's hold remotely and locally.
func (r *Repository) ReleaseHold(ctx context.Context, sessionID string) error {
	if err := r.sessions.DeleteHold(ctx, sessionID); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to drop mirrored hold")
	}
	return r.remote.RemoveHold(ctx, sessionID)
}

// ValidateHold reports whether the session still owns an unexpired hold.
func (r *Repository) ValidateHold(ctx context.Context, sessionID string) bool {
	hold, err := r.sessions.GetHold(ctx, sessionID)
	if err != nil || hold == nil {
		return false
	}
	return !hold.Expired(time.Now())
}

// ValidateTimeSlot checks that the slot appears in current availability, is
// marked available, and has remaining capacity (unbounded capacity is always
// valid).
func (r *Repository) ValidateTimeSlot(ctx context.Context, serviceID string, date time.Time, slot string) bool {
	slots := r.GetAvailabilitySlots(ctx, serviceID, date)
	for _, s := range slots {
		if s.StartTime == slot {
			return s.Bookable()
		}
	}
	return false
}

// SyncPendingBookings is the explicit sweep of locally-stored unsynced
// bookings, distinct from the queue-driven auto-sync: each is replayed
// against the remote service and marked synced on success.
func (r *Repository) SyncPendingBookings(ctx context.Context) domain.SyncReport {
	unsynced, err := r.store.GetUnsyncedBookings(ctx)
	if err != nil {
		return domain.SyncReport{Err: err.Error()}
	}

	var report domain.SyncReport
	for i := range unsynced {
		b := &unsynced[i]
		res := domain.ItemResult{EntityType: models.EntityBooking, EntityID: b.ID, Operation: models.OpCreate}

		created, err := r.remote.CreateBooking(ctx, b.Request())
		if err != nil {
			res.Err = err.Error()
			report.Failed++
		} else {
			if err := r.store.MarkBookingSynced(ctx, b.ID, created.ID); err != nil {
				res.Err = err.Error()
				report.Failed++
			} else {
				created.Synced = true
				r.publishBooking(events.EventBookingSynced, created)
			}
		}

		report.Processed++
		report.Items = append(report.Items, res)
	}
	return report
}

// UpdateUserProfile persists the profile locally, then pushes it to the
// remote service; a failed push is queued for later sync.
func (r *Repository) UpdateUserProfile(ctx context.Context, profile *models.Profile) domain.ProfileResult {
	profile.UpdatedAt = time.Now()
	if err := r.store.UpsertProfile(ctx, profile); err != nil {
		return domain.ProfileResult{Err: err.Error()}
	}

	updated, err := r.remote.UpdateUserProfile(ctx, profile)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", profile.UserID).Msg("profile push failed, queueing for sync")
		if qerr := r.queue.EnqueueSyncOperation(ctx, models.EntityProfile, profile.UserID, models.OpUpdate, profile); qerr != nil {
			return domain.ProfileResult{Err: qerr.Error()}
		}
		return domain.ProfileResult{Profile: profile, Queued: true}
	}

	return domain.ProfileResult{Profile: updated}
}

func (r *Repository) publishBooking(eventType string, b *models.Booking) {
	_ = r.bus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID: b.ID,
		ServiceID: b.ServiceID,
		UserID:    b.UserID,
		Status:    b.Status,
		Synced:    b.Synced,
		Date:      b.Date,
	})
}
