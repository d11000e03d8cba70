package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	ComputeAvailability gin.HandlerFunc
	CreateBooking       gin.HandlerFunc
	ListBookings        gin.HandlerFunc
	GetBooking          gin.HandlerFunc
	RescheduleBooking   gin.HandlerFunc
	CancelBooking       gin.HandlerFunc

	// Catalog endpoints
	ListTreatments     gin.HandlerFunc
	CreateTreatment    gin.HandlerFunc
	ListProfessionals  gin.HandlerFunc
	CreateProfessional gin.HandlerFunc
	ListSites          gin.HandlerFunc
	CreateSite         gin.HandlerFunc
	GetTenant          gin.HandlerFunc
	UpsertTenant       gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires every handler method into the bundle.
func NewHandlerBundle(booking *BookingHandler, catalog *CatalogHandler, health *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		ComputeAvailability: booking.ComputeAvailability,
		CreateBooking:       booking.CreateBooking,
		ListBookings:        booking.ListBookings,
		GetBooking:          booking.GetBooking,
		RescheduleBooking:   booking.RescheduleBooking,
		CancelBooking:       booking.CancelBooking,

		ListTreatments:     catalog.ListTreatments,
		CreateTreatment:    catalog.CreateTreatment,
		ListProfessionals:  catalog.ListProfessionals,
		CreateProfessional: catalog.CreateProfessional,
		ListSites:          catalog.ListSites,
		CreateSite:         catalog.CreateSite,
		GetTenant:          catalog.GetTenant,
		UpsertTenant:       catalog.UpsertTenant,

		Health: health.Health,
	}
}
