package models

import "time"

// AvailabilityRequest is the body of POST /booking/availability.
type AvailabilityRequest struct {
	TenantID           string `json:"tenant_id"`
	SiteID             string `json:"site_id" validate:"required"`
	ProfessionalID     string `json:"professional_id"`
	TreatmentID        string `json:"treatment_id" validate:"required"`
	Date               string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartDate          string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate            string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IncludeUnavailable bool   `json:"include_unavailable"`
}

// AvailabilityResponse is returned by the availability endpoint.
type AvailabilityResponse struct {
	Slots     []Slot `json:"slots"`
	Total     int    `json:"total"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Timezone  string `json:"timezone"`
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	TenantID       string    `json:"tenant_id"`
	SiteID         string    `json:"site_id" validate:"required"`
	ProfessionalID string    `json:"professional_id" validate:"required"`
	TreatmentID    string    `json:"treatment_id" validate:"required"`
	StartTime      time.Time `json:"start_time"`
	PatientName    string    `json:"patient_name" validate:"required,min=1,max=100"`
	PatientEmail   string    `json:"patient_email" validate:"required,email"`
	Notes          string    `json:"notes" validate:"max=500"`
}

// RescheduleRequest is the body of PUT /bookings/:id.
type RescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
}

// BookingListQuery carries GET /bookings query parameters.
type BookingListQuery struct {
	TenantID       string `form:"tenant_id"`
	ProfessionalID string `form:"professional_id"`
	SiteID         string `form:"site_id"`
	Status         string `form:"status" validate:"omitempty,oneof=Confirmed Cancelled"`
	From           string `form:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To             string `form:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
