package booking

import (
	"context"

	"clinicbook/models"
)

// BookingService is the use-case layer behind the booking endpoints. Every method
// receives the verified session of the caller.
type BookingService interface {
	ComputeAvailability(ctx context.Context, session *models.Session, req models.AvailabilityRequest) (*models.AvailabilityResponse, error)
	CreateBooking(ctx context.Context, session *models.Session, req models.CreateBookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context, session *models.Session, q models.BookingListQuery) ([]models.Booking, error)
	GetBooking(ctx context.Context, session *models.Session, bookingID string) (*models.Booking, error)
	RescheduleBooking(ctx context.Context, session *models.Session, bookingID string, req models.RescheduleRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, session *models.Session, bookingID string) (*models.Booking, error)
}
