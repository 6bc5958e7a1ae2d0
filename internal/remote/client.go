package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"glowbook/internal/config"
	"glowbook/internal/domain"
	"glowbook/internal/metrics"
	"glowbook/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client talks to the remote booking service over HTTP JSON. Every request
// carries its own deadline so a hung call can never stall a sync pass.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  zerolog.Logger
}

var _ domain.RemoteAPI = (*Client)(nil)

func NewClient(cfg config.RemoteConfig, logger zerolog.Logger) *Client {
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst),
		timeout: timeout,
		logger:  logger.With().Str("component", "remote").Logger(),
	}
}

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote returned status %d: %s", e.Code, e.Body)
}

// do performs one rate-limited request with a per-call deadline. A nil out
// skips response decoding. notFound reports a 404 answer.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (notFound bool, err error) {
	endpoint := method + " " + path

	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncRemote(endpoint, "error")
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.IncRemote(endpoint, "not_found")
		return true, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.IncRemote(endpoint, "error")
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("remote request failed")
		return false, &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.IncRemote(endpoint, "error")
			return false, fmt.Errorf("decode response of %s %s: %w", method, path, err)
		}
	}

	metrics.IncRemote(endpoint, "ok")
	return false, nil
}

func (c *Client) GetServices(ctx context.Context, serviceType string) ([]models.Service, error) {
	query := url.Values{}
	if serviceType != "" {
		query.Set("type", serviceType)
	}

	var services []models.Service
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/services", query, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	notFound, err := c.do(ctx, http.MethodGet, "/api/v1/services/"+url.PathEscape(id), nil, nil, &svc)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, nil
	}
	return &svc, nil
}

func (c *Client) GetAvailabilitySlots(ctx context.Context, serviceID string, date time.Time) ([]models.AvailabilitySlot, error) {
	query := url.Values{}
	query.Set("date", date.Format("2006-01-02"))

	var slots []models.AvailabilitySlot
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/services/"+url.PathEscape(serviceID)+"/slots", query, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/bookings", nil, req, &booking); err != nil {
		return nil, err
	}
	if booking.ID == "" {
		return nil, fmt.Errorf("remote accepted booking but returned no id")
	}
	return &booking, nil
}

func (c *Client) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(userID)+"/bookings", nil, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) GetBookingDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	var draft models.BookingDraft
	notFound, err := c.do(ctx, http.MethodGet, "/api/v1/drafts/"+url.PathEscape(sessionID), nil, nil, &draft)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, nil
	}
	return &draft, nil
}

func (c *Client) CreateBookingDraft(ctx context.Context, draft *models.BookingDraft) (*models.BookingDraft, error) {
	var created models.BookingDraft
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/drafts/"+url.PathEscape(draft.SessionID), nil, draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateBookingDraft(ctx context.Context, draft *models.BookingDraft) (*models.BookingDraft, error) {
	var updated models.BookingDraft
	if _, err := c.do(ctx, http.MethodPut, "/api/v1/drafts/"+url.PathEscape(draft.SessionID), nil, draft, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) CreateHold(ctx context.Context, hold *models.Hold) (*models.Hold, error) {
	var created models.Hold
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/holds", nil, hold, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) RemoveHold(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/holds/"+url.PathEscape(sessionID), nil, nil, nil)
	return err
}

func (c *Client) UpdateUserProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	var updated models.Profile
	if _, err := c.do(ctx, http.MethodPut, "/api/v1/profiles/"+url.PathEscape(profile.UserID), nil, profile, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
