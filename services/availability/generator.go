package availability

import (
	"time"

	"clinicbook/models"
)

// generator walks working intervals and emits candidate slots.
type generator struct {
	effective          time.Duration // duration + buffer
	stride             time.Duration
	now                time.Time
	includeUnavailable bool
}

// day returns one professional's slots for the local day starting at dayStart.
//
// The cursor starts at each working interval's start. A candidate must fit entirely
// inside the interval. When it overlaps a confirmed booking the cursor jumps to that
// booking's end, so the next candidate starts as soon as the professional is free;
// otherwise it advances by the stride.
func (g generator) day(cal calendar, dayStart time.Time) []models.Slot {
	var out []models.Slot
	for _, wi := range cal.professional.IntervalsFor(dayStart.Weekday()) {
		ws, we := wi.Window(dayStart)
		cursor := ws
		for !cursor.Add(g.effective).After(we) {
			end := cursor.Add(g.effective)
			blocker := firstOverlap(cal.bookings, cursor, end)
			if blocker == nil {
				if !cursor.Before(g.now) {
					out = append(out, models.Slot{Start: cursor, End: end, ProfessionalID: cal.professional.ID, Available: true})
				}
				cursor = cursor.Add(g.stride)
				continue
			}
			if g.includeUnavailable {
				for p := cursor; p.Before(blocker.End) && !p.Add(g.effective).After(we); p = p.Add(g.stride) {
					if !p.Before(g.now) {
						out = append(out, models.Slot{Start: p, End: p.Add(g.effective), ProfessionalID: cal.professional.ID})
					}
				}
			}
			cursor = blocker.End
		}
	}
	return out
}

// firstOverlap returns the earliest-starting booking overlapping [start, end).
func firstOverlap(bookings []models.Booking, start, end time.Time) *models.Booking {
	for i := range bookings {
		b := &bookings[i]
		if !b.Start.Before(end) {
			return nil
		}
		if b.Overlaps(start, end) {
			return b
		}
	}
	return nil
}
