package availability

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	catalogRepo "clinicbook/database/repository/catalog"
	ledgerRepo "clinicbook/database/repository/ledger"
	"clinicbook/models"
	"clinicbook/utils"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Query selects the calendar to compute. Dates are tenant-local and inclusive.
type Query struct {
	TenantID           string
	SiteID             string
	ProfessionalID     string // empty means every eligible professional of the site
	TreatmentID        string
	StartDate          string
	EndDate            string
	IncludeUnavailable bool
}

// Result carries the lazily evaluated slots and the resolved range.
type Result struct {
	Slots     iter.Seq[models.Slot]
	StartDate string
	EndDate   string
	Location  *time.Location
}

// Calculator derives free slots from working hours and confirmed bookings. It never writes.
type Calculator struct {
	Catalog      catalogRepo.CatalogRepository
	Ledger       ledgerRepo.LedgerRepository
	Stride       time.Duration
	MaxRangeDays int
	Now          func() time.Time
	Logger       *zap.Logger
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// calendar is one professional's bookings for the requested range.
type calendar struct {
	professional models.Professional
	bookings     []models.Booking
}

// ComputeSlots validates the query, snapshots the catalog and ledger, and returns a
// sequence that can be iterated any number of times with identical output.
func (c *Calculator) ComputeSlots(ctx context.Context, q Query) (*Result, error) {
	loc := TenantLocation(ctx, c.Catalog, q.TenantID)
	now := c.now()

	first, last, err := c.resolveRange(q, now.In(loc), loc)
	if err != nil {
		return nil, err
	}

	treatment, err := c.Catalog.GetTreatment(ctx, q.TenantID, q.TreatmentID)
	if err != nil {
		return nil, err
	}
	if _, err := c.Catalog.GetSite(ctx, q.TenantID, q.SiteID); err != nil {
		return nil, err
	}
	professionals, err := c.eligible(ctx, q)
	if err != nil {
		return nil, err
	}

	from := first
	to := last.AddDate(0, 0, 1)
	calendars := make([]calendar, 0, len(professionals))
	for _, p := range professionals {
		bookings, err := c.Ledger.ListConfirmed(ctx, q.TenantID, p.ID, from, to)
		if err != nil {
			return nil, err
		}
		calendars = append(calendars, calendar{professional: p, bookings: bookings})
	}

	c.logger().Debug("availability snapshot taken",
		zap.String("tenant_id", q.TenantID),
		zap.String("treatment_id", treatment.ID),
		zap.Int("professionals", len(calendars)),
		zap.String("from", first.Format(dateLayout)),
		zap.String("to", last.Format(dateLayout)),
	)

	g := generator{
		effective:          treatment.Effective(),
		stride:             c.Stride,
		now:                now,
		includeUnavailable: q.IncludeUnavailable,
	}
	seq := func(yield func(models.Slot) bool) {
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			var daySlots []models.Slot
			for _, cal := range calendars {
				daySlots = append(daySlots, g.day(cal, day)...)
			}
			slices.SortStableFunc(daySlots, compareSlots)
			for _, s := range daySlots {
				if !yield(s) {
					return
				}
			}
		}
	}

	return &Result{
		Slots:     seq,
		StartDate: first.Format(dateLayout),
		EndDate:   last.Format(dateLayout),
		Location:  loc,
	}, nil
}

func (c *Calculator) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func compareSlots(a, b models.Slot) int {
	if d := a.Start.Compare(b.Start); d != 0 {
		return d
	}
	return strings.Compare(a.ProfessionalID, b.ProfessionalID)
}

// resolveRange parses the requested dates as local midnights. No dates means tomorrow.
func (c *Calculator) resolveRange(q Query, localNow time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if q.StartDate == "" && q.EndDate == "" {
		tomorrow := time.Date(localNow.Year(), localNow.Month(), localNow.Day()+1, 0, 0, 0, 0, loc)
		return tomorrow, tomorrow, nil
	}
	if q.StartDate == "" {
		return time.Time{}, time.Time{}, utils.InvalidRange("start_date is required when end_date is given")
	}
	first, err := time.ParseInLocation(dateLayout, q.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, utils.InvalidRange("start_date must be YYYY-MM-DD")
	}
	last := first
	if q.EndDate != "" {
		if last, err = time.ParseInLocation(dateLayout, q.EndDate, loc); err != nil {
			return time.Time{}, time.Time{}, utils.InvalidRange("end_date must be YYYY-MM-DD")
		}
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, utils.InvalidRange("end_date is before start_date")
	}
	days := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days++
		if days > c.MaxRangeDays {
			return time.Time{}, time.Time{}, utils.InvalidRange(fmt.Sprintf("date range exceeds %d days", c.MaxRangeDays))
		}
	}
	return first, last, nil
}

// eligible returns the professionals to compute for, ordered by id.
func (c *Calculator) eligible(ctx context.Context, q Query) ([]models.Professional, error) {
	if q.ProfessionalID != "" {
		p, err := c.Catalog.GetProfessional(ctx, q.TenantID, q.ProfessionalID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive() {
			return nil, utils.Validation("professional is not active")
		}
		if !p.WorksAt(q.SiteID) {
			return nil, utils.Validation("professional does not work at this site")
		}
		if !p.Performs(q.TreatmentID) {
			return nil, utils.Validation("professional does not perform this treatment")
		}
		return []models.Professional{*p}, nil
	}

	all, err := c.Catalog.ListProfessionals(ctx, q.TenantID, q.SiteID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Professional, 0, len(all))
	for _, p := range all {
		if p.IsActive() && p.Performs(q.TreatmentID) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Professional) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// TenantLocation resolves the tenant's timezone, falling back to the default one
// when the tenant has no profile yet.
func TenantLocation(ctx context.Context, catalog catalogRepo.CatalogRepository, tenantID string) *time.Location {
	tenant, err := catalog.GetTenant(ctx, tenantID)
	if err != nil {
		if !utils.IsKind(err, utils.KindNotFound) {
			zap.L().Warn("tenant lookup failed, using default timezone", zap.String("tenant_id", tenantID), zap.Error(err))
		}
		return (*models.Tenant)(nil).Location()
	}
	return tenant.Location()
}
