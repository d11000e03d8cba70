package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

// Booking is a reservation of a professional's time. End is always derived from
// Start plus the treatment duration and buffer captured at reservation time.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	TenantID        string        `bson:"tenant_id" json:"tenant_id"`
	SiteID          string        `bson:"site_id" json:"site_id"`
	ProfessionalID  string        `bson:"professional_id" json:"professional_id"`
	TreatmentID     string        `bson:"treatment_id" json:"treatment_id"`
	Start           time.Time     `bson:"start" json:"start_time"`
	End             time.Time     `bson:"end" json:"end_time"`
	DurationMinutes int           `bson:"duration_minutes" json:"duration_minutes"`
	BufferMinutes   int           `bson:"buffer_minutes" json:"buffer_minutes"`
	PatientName     string        `bson:"patient_name" json:"patient_name"`
	PatientEmail    string        `bson:"patient_email" json:"patient_email"`
	Notes           string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          BookingStatus `bson:"status" json:"status"`
	CreatedAt       time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updated_at"`
	CancelledAt     *time.Time    `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

// Effective is the length of the blocked interval, buffer included.
func (b *Booking) Effective() time.Duration {
	return time.Duration(b.DurationMinutes+b.BufferMinutes) * time.Minute
}

// Overlaps is the half-open interval test against [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingConfirmed
}

// BookingFilter narrows ledger listings. Zero values mean "any".
type BookingFilter struct {
	ProfessionalID string
	SiteID         string
	PatientEmail   string
	Status         BookingStatus
	From           time.Time
	To             time.Time
}

// Match applies the filter to a single booking.
func (f BookingFilter) Match(b *Booking) bool {
	if f.ProfessionalID != "" && b.ProfessionalID != f.ProfessionalID {
		return false
	}
	if f.SiteID != "" && b.SiteID != f.SiteID {
		return false
	}
	if f.PatientEmail != "" && b.PatientEmail != f.PatientEmail {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && !b.End.After(f.From) {
		return false
	}
	if !f.To.IsZero() && !b.Start.Before(f.To) {
		return false
	}
	return true
}
