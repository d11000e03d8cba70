package models

import "time"

// Slot is a computed candidate interval. It is never persisted.
type Slot struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"` // start + duration + buffer
	ProfessionalID string    `json:"professional_id"`
	Available      bool      `json:"available"`
}
