package ledgerRepo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"clinicbook/models"
	"clinicbook/utils"
)

type shardKey struct {
	tenantID       string
	professionalID string
}

// shard owns one professional's bookings. Writers serialize on mu; readers load the
// published snapshot and never block.
type shard struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]models.Booking] // sorted by start, never mutated after Store
}

func (s *shard) load() []models.Booking {
	if p := s.snapshot.Load(); p != nil {
		return *p
	}
	return nil
}

// MemoryLedger is an in-process ledger with a single writer per professional.
type MemoryLedger struct {
	shards sync.Map // shardKey -> *shard
	owners sync.Map // tenantID + "/" + bookingID -> shardKey
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (m *MemoryLedger) shardFor(k shardKey) *shard {
	if s, ok := m.shards.Load(k); ok {
		return s.(*shard)
	}
	s, _ := m.shards.LoadOrStore(k, &shard{})
	return s.(*shard)
}

func ownerKey(tenantID, bookingID string) string {
	return tenantID + "/" + bookingID
}

func overlapsAny(bookings []models.Booking, start, end time.Time, exceptID string) bool {
	for i := range bookings {
		b := &bookings[i]
		if b.ID == exceptID || !b.IsConfirmed() {
			continue
		}
		if !b.Start.Before(end) {
			break
		}
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// publish stores a sorted copy of next as the shard's snapshot.
func (s *shard) publish(next []models.Booking) {
	slices.SortStableFunc(next, func(a, b models.Booking) int { return a.Start.Compare(b.Start) })
	s.snapshot.Store(&next)
}

func (m *MemoryLedger) Reserve(ctx context.Context, booking *models.Booking) error {
	s := m.shardFor(shardKey{booking.TenantID, booking.ProfessionalID})
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	if overlapsAny(current, booking.Start, booking.End, "") {
		return utils.Conflict(errOverlap)
	}
	if _, taken := m.owners.Load(ownerKey(booking.TenantID, booking.ID)); taken {
		return utils.Conflict("booking already exists")
	}
	// a request abandoned before this point leaves nothing behind
	if err := ctx.Err(); err != nil {
		return utils.Unavailable("reservation aborted", err)
	}

	next := append(slices.Clone(current), *booking)
	s.publish(next)
	m.owners.Store(ownerKey(booking.TenantID, booking.ID), shardKey{booking.TenantID, booking.ProfessionalID})
	return nil
}

// locate finds the shard owning a booking of the tenant.
func (m *MemoryLedger) locate(tenantID, bookingID string) (*shard, error) {
	k, ok := m.owners.Load(ownerKey(tenantID, bookingID))
	if !ok {
		return nil, utils.NotFound("booking not found")
	}
	return m.shardFor(k.(shardKey)), nil
}

func indexOf(bookings []models.Booking, id string) int {
	return slices.IndexFunc(bookings, func(b models.Booking) bool { return b.ID == id })
}

func (m *MemoryLedger) Reschedule(ctx context.Context, tenantID, bookingID string, newStart, at time.Time) (*models.Booking, error) {
	s, err := m.locate(tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	i := indexOf(current, bookingID)
	if i < 0 {
		return nil, utils.NotFound("booking not found")
	}
	updated := current[i]
	if !updated.IsConfirmed() {
		return nil, utils.Validation("cancelled bookings cannot be rescheduled")
	}
	updated.Start = newStart
	updated.End = newStart.Add(updated.Effective())
	updated.UpdatedAt = at

	// the booking's own interval is released for the check
	if overlapsAny(current, updated.Start, updated.End, bookingID) {
		return nil, utils.Conflict(errOverlap)
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.Unavailable("reschedule aborted", err)
	}

	next := slices.Clone(current)
	next[i] = updated
	s.publish(next)
	return &updated, nil
}

func (m *MemoryLedger) Cancel(ctx context.Context, tenantID, bookingID string, at time.Time) (*models.Booking, error) {
	s, err := m.locate(tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	i := indexOf(current, bookingID)
	if i < 0 {
		return nil, utils.NotFound("booking not found")
	}
	b := current[i]
	if !b.IsConfirmed() {
		return &b, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.Unavailable("cancellation aborted", err)
	}
	b.Status = models.BookingCancelled
	b.CancelledAt = &at
	b.UpdatedAt = at

	next := slices.Clone(current)
	next[i] = b
	s.publish(next)
	return &b, nil
}

func (m *MemoryLedger) Get(_ context.Context, tenantID, bookingID string) (*models.Booking, error) {
	s, err := m.locate(tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	current := s.load()
	i := indexOf(current, bookingID)
	if i < 0 {
		return nil, utils.NotFound("booking not found")
	}
	b := current[i]
	return &b, nil
}

func (m *MemoryLedger) List(_ context.Context, tenantID string, filter models.BookingFilter) ([]models.Booking, error) {
	out := []models.Booking{}
	m.shards.Range(func(key, value any) bool {
		k := key.(shardKey)
		if k.tenantID != tenantID {
			return true
		}
		if filter.ProfessionalID != "" && k.professionalID != filter.ProfessionalID {
			return true
		}
		for _, b := range value.(*shard).load() {
			if filter.Match(&b) {
				out = append(out, b)
			}
		}
		return true
	})
	slices.SortStableFunc(out, func(a, b models.Booking) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryLedger) ListConfirmed(_ context.Context, tenantID, professionalID string, from, to time.Time) ([]models.Booking, error) {
	v, ok := m.shards.Load(shardKey{tenantID, professionalID})
	if !ok {
		return []models.Booking{}, nil
	}
	out := []models.Booking{}
	for _, b := range v.(*shard).load() {
		if b.IsConfirmed() && b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}
