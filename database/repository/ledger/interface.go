package ledgerRepo

import (
	"context"
	"time"

	"clinicbook/models"
)

// LedgerRepository is the authoritative booking store. Every implementation makes the
// overlap check and the write one indivisible step per professional, so concurrent
// writers for the same professional and overlapping intervals see exactly one success
// and Conflict for the rest. Booking ids of another tenant are reported as NotFound.
type LedgerRepository interface {
	// Reserve stores a Confirmed booking unless it overlaps another Confirmed booking
	// of the same professional.
	Reserve(ctx context.Context, booking *models.Booking) error
	// Reschedule moves a Confirmed booking to newStart, keeping its captured duration
	// and buffer. On Conflict the stored booking is unchanged.
	Reschedule(ctx context.Context, tenantID, bookingID string, newStart, at time.Time) (*models.Booking, error)
	// Cancel flips Confirmed to Cancelled. Cancelling twice is a successful no-op.
	Cancel(ctx context.Context, tenantID, bookingID string, at time.Time) (*models.Booking, error)
	Get(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)
	// List returns matching bookings ordered by start.
	List(ctx context.Context, tenantID string, filter models.BookingFilter) ([]models.Booking, error)
	// ListConfirmed returns the professional's Confirmed bookings intersecting [from, to), ordered by start.
	ListConfirmed(ctx context.Context, tenantID, professionalID string, from, to time.Time) ([]models.Booking, error)
}

// errOverlap is the Conflict message shared by every backend.
const errOverlap = "the requested time overlaps an existing booking"
