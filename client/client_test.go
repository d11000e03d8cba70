package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinicbook/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeEngine answers a small slice of the engine's API and records the last
// Authorization header it saw.
func fakeEngine(t *testing.T, lastAuth *string) *httptest.Server {
	t.Helper()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		*lastAuth = c.GetHeader("Authorization")
		c.Next()
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "clinicbook", "checks": gin.H{"mongo": true}})
	})
	r.POST("/bookings", func(c *gin.Context) {
		var req models.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bad body"})
			return
		}
		if req.StartTime.Hour() == 9 {
			c.JSON(http.StatusConflict, gin.H{"error": "the requested time overlaps an existing booking"})
			return
		}
		c.JSON(http.StatusCreated, models.Booking{ID: "b1", Start: req.StartTime, Status: models.BookingConfirmed})
	})
	r.GET("/bookings", func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": []models.Booking{{ID: "b1", Status: models.BookingConfirmed}}, "count": 1})
	})
	r.DELETE("/bookings/:id", func(c *gin.Context) {
		if c.Param("id") != "b1" {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusOK, models.Booking{ID: "b1", Status: models.BookingCancelled})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	var auth string
	c := New(fakeEngine(t, &auth).URL)
	h, err := c.Health(context.Background())
	if err != nil || h.Status != "ok" || !h.Checks["mongo"] {
		t.Fatalf("Health=%+v, %v", h, err)
	}
	if auth != "" {
		t.Fatalf("Health sent Authorization %q", auth)
	}
}

func TestPerCallCredentials(t *testing.T) {
	var auth string
	c := New(fakeEngine(t, &auth).URL)
	ctx := context.Background()

	if _, err := c.ListBookings(ctx, "token-a", models.BookingListQuery{Status: "Confirmed"}); err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if auth != "Bearer token-a" {
		t.Fatalf("Authorization=%q, want token-a", auth)
	}
	if _, err := c.ListBookings(ctx, "token-b", models.BookingListQuery{}); err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if auth != "Bearer token-b" {
		t.Fatalf("Authorization=%q, want token-b", auth)
	}

	_, err := c.ListBookings(ctx, "", models.BookingListQuery{})
	if !IsUnauthorized(err) {
		t.Fatalf("ListBookings without token=%v, want 401", err)
	}
}

func TestAPIErrors(t *testing.T) {
	var auth string
	c := New(fakeEngine(t, &auth).URL)
	ctx := context.Background()

	req := models.CreateBookingRequest{StartTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	_, err := c.CreateBooking(ctx, "t", req)
	if !IsConflict(err) {
		t.Fatalf("CreateBooking=%v, want conflict", err)
	}
	if apiErr, ok := err.(*APIError); !ok || apiErr.Message != "the requested time overlaps an existing booking" {
		t.Fatalf("err=%#v", err)
	}

	req.StartTime = req.StartTime.Add(time.Hour)
	b, err := c.CreateBooking(ctx, "t", req)
	if err != nil || b.ID != "b1" {
		t.Fatalf("CreateBooking=%+v, %v", b, err)
	}

	if _, err := c.CancelBooking(ctx, "t", "missing"); !IsNotFound(err) {
		t.Fatalf("CancelBooking(missing)=%v, want 404", err)
	}
	cancelled, err := c.CancelBooking(ctx, "t", "b1")
	if err != nil || cancelled.Status != models.BookingCancelled {
		t.Fatalf("CancelBooking=%+v, %v", cancelled, err)
	}
}

func TestNewAPIErrorFallsBackToStatusText(t *testing.T) {
	err := newAPIError(http.StatusServiceUnavailable, []byte("<html>"))
	if err.Message != "Service Unavailable" {
		t.Fatalf("Message=%q", err.Message)
	}
	raw, _ := json.Marshal(map[string]string{"error": "slow down"})
	if got := newAPIError(http.StatusTooManyRequests, raw).Message; got != "slow down" {
		t.Fatalf("Message=%q", got)
	}
}
