package models

import "time"

// Treatment is immutable once created; bookings copy its duration and buffer.
type Treatment struct {
	ID              string    `bson:"id" json:"id"`
	TenantID        string    `bson:"tenant_id" json:"tenant_id"`
	Name            string    `bson:"name" json:"name" validate:"required,min=3,max=100"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty" validate:"max=500"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes" validate:"gte=5,lte=480"`
	BufferMinutes   int       `bson:"buffer_minutes" json:"buffer_minutes" validate:"gte=0,lte=240"` // cleanup time after the appointment, not bookable
	Price           float64   `bson:"price" json:"price" validate:"gte=0"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// Effective is the interval a booking of this treatment blocks on the calendar.
func (t Treatment) Effective() time.Duration {
	return time.Duration(t.DurationMinutes+t.BufferMinutes) * time.Minute
}
