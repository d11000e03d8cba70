package models

import (
	"slices"
	"time"
)

// Session holds claims taken from a verified bearer token.
type Session struct {
	Subject        string    `json:"sub"`
	Email          string    `json:"email"`
	Roles          []Role    `json:"roles"`
	TenantID       string    `json:"tenant_id"`
	ProfessionalID string    `json:"professional_id,omitempty"` // set when the identity is linked to a professional
	ExpiresAt      time.Time `json:"expires_at"`
}

func (s *Session) HasRole(r Role) bool {
	return slices.Contains(s.Roles, r)
}
