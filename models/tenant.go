package models

import "time"

// DefaultTimezone is used when a tenant profile has not been configured yet.
const DefaultTimezone = "America/Bogota"

// Tenant is the isolation root: every other entity carries its id.
type Tenant struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name" validate:"required,min=2,max=120"`
	ContactEmail string    `bson:"contact_email" json:"contact_email" validate:"required,email"`
	Timezone     string    `bson:"timezone" json:"timezone" validate:"omitempty,timezone"` // IANA name, e.g. "America/Bogota"
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Location resolves the tenant timezone, falling back to DefaultTimezone and finally UTC.
func (t *Tenant) Location() *time.Location {
	name := DefaultTimezone
	if t != nil && t.Timezone != "" {
		name = t.Timezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Site is a physical location owned by a tenant.
type Site struct {
	ID        string            `bson:"id" json:"id"`
	TenantID  string            `bson:"tenant_id" json:"tenant_id"`
	Name      string            `bson:"name" json:"name" validate:"required,min=2,max=120"`
	Address   string            `bson:"address" json:"address" validate:"max=250"`
	City      string            `bson:"city,omitempty" json:"city,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}
