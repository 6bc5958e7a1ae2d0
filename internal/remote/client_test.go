package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowbook/internal/config"
	"glowbook/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.RemoteConfig{
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
		RateLimit:      config.RateLimitConfig{RPS: 100, Burst: 100},
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestGetServices(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/services", r.URL.Path)
		assert.Equal(t, "beauty", r.URL.Query().Get("type"))

		json.NewEncoder(w).Encode([]models.Service{
			{ID: "svc-1", Title: "Cut", ServiceType: "beauty"},
		})
	}))

	services, err := client.GetServices(context.Background(), "beauty")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "svc-1", services[0].ID)
}

func TestGetServiceByIDNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	svc, err := client.GetServiceByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestGetAvailabilitySlots(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/services/svc-1/slots", r.URL.Path)
		assert.Equal(t, "2026-09-14", r.URL.Query().Get("date"))

		json.NewEncoder(w).Encode([]models.AvailabilitySlot{
			{ServiceID: "svc-1", StartTime: "10:00", Available: true, Capacity: 2},
		})
	}))

	slots, err := client.GetAvailabilitySlots(context.Background(), "svc-1", date)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "10:00", slots[0].StartTime)
}

func TestCreateBooking(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bookings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "svc-1", req.ServiceID)

		json.NewEncoder(w).Encode(models.Booking{
			ID:        "srv-42",
			ServiceID: req.ServiceID,
			UserID:    req.UserID,
			Status:    models.StatusConfirmed,
		})
	}))

	booking, err := client.CreateBooking(context.Background(), &models.BookingRequest{
		ServiceID: "svc-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-42", booking.ID)
	assert.Equal(t, models.StatusConfirmed, booking.Status)
}

func TestCreateBookingRejectsEmptyID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Booking{})
	}))

	_, err := client.CreateBooking(context.Background(), &models.BookingRequest{ServiceID: "svc-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestCreateBookingServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slot already taken", http.StatusConflict)
	}))

	_, err := client.CreateBooking(context.Background(), &models.BookingRequest{ServiceID: "svc-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "slot already taken")
}

func TestGetBookingDraftNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	draft, err := client.GetBookingDraft(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestDraftRoundTrip(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/drafts/sess-1", r.URL.Path)

		var draft models.BookingDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		json.NewEncoder(w).Encode(draft)
	}))

	created, err := client.CreateBookingDraft(context.Background(), &models.BookingDraft{
		SessionID:  "sess-1",
		ClientData: map[string]string{"name": "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.ClientData["name"])

	updated, err := client.UpdateBookingDraft(context.Background(), &models.BookingDraft{
		SessionID:  "sess-1",
		ClientData: map[string]string{"name": "Ada", "phone": "+100"},
	})
	require.NoError(t, err)
	assert.Equal(t, "+100", updated.ClientData["phone"])
}

func TestHoldEndpoints(t *testing.T) {
	var deleted string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/v1/holds", r.URL.Path)
			var hold models.Hold
			require.NoError(t, json.NewDecoder(r.Body).Decode(&hold))
			json.NewEncoder(w).Encode(hold)
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	ctx := context.Background()
	hold, err := client.CreateHold(ctx, &models.Hold{SessionID: "sess-1", ServiceID: "svc-1", StartTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "svc-1", hold.ServiceID)

	require.NoError(t, client.RemoveHold(ctx, "sess-1"))
	assert.Equal(t, "/api/v1/holds/sess-1", deleted)
}

func TestUpdateUserProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/profiles/user-1", r.URL.Path)

		var profile models.Profile
		require.NoError(t, json.NewDecoder(r.Body).Decode(&profile))
		json.NewEncoder(w).Encode(profile)
	}))

	updated, err := client.UpdateUserProfile(context.Background(), &models.Profile{UserID: "user-1", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
}
