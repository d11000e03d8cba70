package models

import (
	"slices"
	"time"
)

const (
	ProfessionalActive   = "active"
	ProfessionalInactive = "inactive"
)

// WorkingInterval is a weekly opening window in the tenant's local time.
type WorkingInterval struct {
	Weekday     time.Weekday `bson:"weekday" json:"weekday"`
	StartMinute int          `bson:"start_minute" json:"start_minute"` // minutes from midnight, e.g. 540 for 09:00
	EndMinute   int          `bson:"end_minute" json:"end_minute"`     // exclusive
}

// Professional performs treatments at one or more sites.
type Professional struct {
	ID           string            `bson:"id" json:"id"`
	TenantID     string            `bson:"tenant_id" json:"tenant_id"`
	Name         string            `bson:"name" json:"name" validate:"required,min=3,max=100"`
	Email        string            `bson:"email" json:"email" validate:"required,email"`
	Specialties  []string          `bson:"specialties,omitempty" json:"specialties,omitempty"`
	SiteIDs      []string          `bson:"site_ids" json:"site_ids" validate:"required,min=1,dive,required"`
	TreatmentIDs []string          `bson:"treatment_ids" json:"treatment_ids" validate:"dive,required"`
	WorkingHours []WorkingInterval `bson:"working_hours" json:"working_hours" validate:"dive"`
	Status       string            `bson:"status" json:"status"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
}

func (p *Professional) IsActive() bool {
	return p.Status == "" || p.Status == ProfessionalActive
}

func (p *Professional) WorksAt(siteID string) bool {
	return slices.Contains(p.SiteIDs, siteID)
}

func (p *Professional) Performs(treatmentID string) bool {
	return slices.Contains(p.TreatmentIDs, treatmentID)
}

// IntervalsFor returns the working intervals of a weekday ordered by start.
func (p *Professional) IntervalsFor(day time.Weekday) []WorkingInterval {
	var out []WorkingInterval
	for _, wi := range p.WorkingHours {
		if wi.Weekday == day {
			out = append(out, wi)
		}
	}
	slices.SortFunc(out, func(a, b WorkingInterval) int { return a.StartMinute - b.StartMinute })
	return out
}

// Covers reports whether [start, end) lies inside a single working interval,
// evaluated on the local calendar day of start.
func (p *Professional) Covers(start, end time.Time, loc *time.Location) bool {
	ls := start.In(loc)
	dayStart := time.Date(ls.Year(), ls.Month(), ls.Day(), 0, 0, 0, 0, loc)
	for _, wi := range p.IntervalsFor(ls.Weekday()) {
		ws, we := wi.Window(dayStart)
		if !start.Before(ws) && !end.After(we) {
			return true
		}
	}
	return false
}

// Window places the interval on the calendar day beginning at dayStart.
func (wi WorkingInterval) Window(dayStart time.Time) (time.Time, time.Time) {
	y, m, d := dayStart.Date()
	loc := dayStart.Location()
	start := time.Date(y, m, d, wi.StartMinute/60, wi.StartMinute%60, 0, 0, loc)
	end := time.Date(y, m, d, wi.EndMinute/60, wi.EndMinute%60, 0, 0, loc)
	return start, end
}

// ValidWorkingHours checks bounds and that no two intervals of a weekday overlap.
func ValidWorkingHours(hours []WorkingInterval) bool {
	byDay := map[time.Weekday][]WorkingInterval{}
	for _, wi := range hours {
		if wi.Weekday < time.Sunday || wi.Weekday > time.Saturday {
			return false
		}
		if wi.StartMinute < 0 || wi.EndMinute > 24*60 || wi.StartMinute >= wi.EndMinute {
			return false
		}
		byDay[wi.Weekday] = append(byDay[wi.Weekday], wi)
	}
	for _, list := range byDay {
		slices.SortFunc(list, func(a, b WorkingInterval) int { return a.StartMinute - b.StartMinute })
		for i := 1; i < len(list); i++ {
			if list[i].StartMinute < list[i-1].EndMinute {
				return false
			}
		}
	}
	return true
}
