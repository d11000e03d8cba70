package client

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

	"clinicbook/models"
)

// Client talks to the booking engine over HTTP. It holds no credentials: every
// authenticated call takes the caller's bearer token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{Timeout: 15 * time.Second}}
}

// HealthResponse mirrors GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Timestamp string          `json:"timestamp"`
	Checks    map[string]bool `json:"checks"`
}

// ListResponse mirrors GET /bookings.
type ListResponse struct {
	Bookings []models.Booking `json:"bookings"`
	Count    int              `json:"count"`
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Availability(ctx context.Context, token string, req models.AvailabilityRequest) (*models.AvailabilityResponse, error) {
	var out models.AvailabilityResponse
	if err := c.do(ctx, http.MethodPost, "/booking/availability", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBooking(ctx context.Context, token string, req models.CreateBookingRequest) (*models.Booking, error) {
	var out models.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBookings(ctx context.Context, token string, q models.BookingListQuery) (*ListResponse, error) {
	params := url.Values{}
	for key, value := range map[string]string{
		"tenant_id":       q.TenantID,
		"professional_id": q.ProfessionalID,
		"site_id":         q.SiteID,
		"status":          q.Status,
		"from":            q.From,
		"to":              q.To,
	} {
		if value != "" {
			params.Set(key, value)
		}
	}
	path := "/bookings"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out ListResponse
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RescheduleBooking(ctx context.Context, token, bookingID string, start time.Time) (*models.Booking, error) {
	var out models.Booking
	body := models.RescheduleRequest{StartTime: start}
	if err := c.do(ctx, http.MethodPut, "/bookings/"+url.PathEscape(bookingID), token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelBooking(ctx context.Context, token, bookingID string) (*models.Booking, error) {
	var out models.Booking
	if err := c.do(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(bookingID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
