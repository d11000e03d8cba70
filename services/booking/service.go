package booking

import (
	"context"
	"strings"
	"time"

	catalogRepo "clinicbook/database/repository/catalog"
	ledgerRepo "clinicbook/database/repository/ledger"
	"clinicbook/models"
	"clinicbook/services/auth"
	"clinicbook/services/availability"
	"clinicbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Catalog      catalogRepo.CatalogRepository
	Ledger       ledgerRepo.LedgerRepository
	Availability *availability.Calculator
	Now          func() time.Time
	Logger       *zap.Logger
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// begin runs the shared prefix of every request: authentication, input validation
// and the authorization gate.
func (s *DefaultBookingService) begin(session *models.Session, op auth.Operation, explicitTenant string, input interface{}) (*Flow, auth.Decision, error) {
	flow := newFlow(op, s.logger())
	if session == nil {
		return flow, auth.Decision{}, flow.Reject(utils.Unauthenticated("missing session"))
	}
	flow.TenantID = session.TenantID
	if err := flow.Advance(StateAuthenticated); err != nil {
		return flow, auth.Decision{}, flow.Reject(err)
	}
	if input != nil {
		if err := utils.ValidateStruct(input); err != nil {
			return flow, auth.Decision{}, flow.Reject(err)
		}
	}
	decision, err := auth.Authorize(session, op, auth.TargetTenant(session, explicitTenant))
	if err != nil {
		return flow, auth.Decision{}, flow.Reject(err)
	}
	if err := flow.Advance(StateAuthorized); err != nil {
		return flow, auth.Decision{}, flow.Reject(err)
	}
	return flow, decision, nil
}

// finish moves a successful flow through its last two states.
func finish(flow *Flow, via State) error {
	if err := flow.Advance(via); err != nil {
		return flow.Reject(err)
	}
	if err := flow.Advance(StateResponded); err != nil {
		return flow.Reject(err)
	}
	return nil
}

func (s *DefaultBookingService) ComputeAvailability(ctx context.Context, session *models.Session, req models.AvailabilityRequest) (*models.AvailabilityResponse, error) {
	flow, _, err := s.begin(session, auth.OpComputeAvailability, req.TenantID, &req)
	if err != nil {
		return nil, err
	}

	start, end := req.StartDate, req.EndDate
	if start == "" && end == "" && req.Date != "" {
		start, end = req.Date, req.Date
	}
	res, err := s.Availability.ComputeSlots(ctx, availability.Query{
		TenantID:           session.TenantID,
		SiteID:             req.SiteID,
		ProfessionalID:     req.ProfessionalID,
		TreatmentID:        req.TreatmentID,
		StartDate:          start,
		EndDate:            end,
		IncludeUnavailable: req.IncludeUnavailable,
	})
	if err != nil {
		return nil, flow.Reject(err)
	}

	slots := make([]models.Slot, 0, 32)
	for slot := range res.Slots {
		slots = append(slots, slot)
	}
	if err := finish(flow, StateComputed); err != nil {
		return nil, err
	}
	return &models.AvailabilityResponse{
		Slots:     slots,
		Total:     len(slots),
		StartDate: res.StartDate,
		EndDate:   res.EndDate,
		Timezone:  res.Location.String(),
	}, nil
}

func (s *DefaultBookingService) CreateBooking(ctx context.Context, session *models.Session, req models.CreateBookingRequest) (*models.Booking, error) {
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.PatientEmail = strings.TrimSpace(req.PatientEmail)
	if session != nil && req.PatientEmail == "" && session.HasRole(models.RolePatient) {
		req.PatientEmail = session.Email
	}
	flow, decision, err := s.begin(session, auth.OpCreateBooking, req.TenantID, &req)
	if err != nil {
		return nil, err
	}
	if req.StartTime.IsZero() {
		return nil, flow.Reject(utils.Validation("start_time is required"))
	}
	if decision.Scope == auth.ScopeSelfPatient && !strings.EqualFold(req.PatientEmail, session.Email) {
		return nil, flow.Reject(utils.Forbidden("patients can only book for themselves"))
	}

	tenantID := session.TenantID
	treatment, err := s.Catalog.GetTreatment(ctx, tenantID, req.TreatmentID)
	if err != nil {
		return nil, flow.Reject(err)
	}
	if _, err := s.Catalog.GetSite(ctx, tenantID, req.SiteID); err != nil {
		return nil, flow.Reject(err)
	}
	professional, err := s.Catalog.GetProfessional(ctx, tenantID, req.ProfessionalID)
	if err != nil {
		return nil, flow.Reject(err)
	}
	if !professional.IsActive() {
		return nil, flow.Reject(utils.Validation("professional is not active"))
	}
	if !professional.WorksAt(req.SiteID) {
		return nil, flow.Reject(utils.Validation("professional does not work at this site"))
	}
	if !professional.Performs(req.TreatmentID) {
		return nil, flow.Reject(utils.Validation("professional does not perform this treatment"))
	}

	now := s.now()
	start := req.StartTime.UTC()
	end := start.Add(treatment.Effective())
	if err := s.checkWindow(ctx, tenantID, professional, start, end, now); err != nil {
		return nil, flow.Reject(err)
	}

	booking := &models.Booking{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		SiteID:          req.SiteID,
		ProfessionalID:  professional.ID,
		TreatmentID:     treatment.ID,
		Start:           start,
		End:             end,
		DurationMinutes: treatment.DurationMinutes,
		BufferMinutes:   treatment.BufferMinutes,
		PatientName:     req.PatientName,
		PatientEmail:    strings.ToLower(req.PatientEmail),
		Notes:           req.Notes,
		Status:          models.BookingConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Ledger.Reserve(ctx, booking); err != nil {
		return nil, flow.Reject(err)
	}
	if err := finish(flow, StateCommitted); err != nil {
		return nil, err
	}
	return booking, nil
}

// checkWindow enforces that [start, end) is in the future and inside one working interval.
func (s *DefaultBookingService) checkWindow(ctx context.Context, tenantID string, professional *models.Professional, start, end, now time.Time) error {
	if start.Before(now) {
		return utils.Validation("start_time is in the past")
	}
	loc := availability.TenantLocation(ctx, s.Catalog, tenantID)
	if !professional.Covers(start, end, loc) {
		return utils.Validation("the requested time is outside the professional's working hours")
	}
	return nil
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, session *models.Session, q models.BookingListQuery) ([]models.Booking, error) {
	flow, decision, err := s.begin(session, auth.OpListBookings, q.TenantID, &q)
	if err != nil {
		return nil, err
	}

	filter := models.BookingFilter{
		ProfessionalID: q.ProfessionalID,
		SiteID:         q.SiteID,
		Status:         models.BookingStatus(q.Status),
	}
	if q.From != "" {
		filter.From, _ = time.Parse(time.RFC3339, q.From)
	}
	if q.To != "" {
		filter.To, _ = time.Parse(time.RFC3339, q.To)
	}

	switch decision.Scope {
	case auth.ScopeSelfProfessional:
		if session.ProfessionalID == "" {
			return nil, flow.Reject(utils.Forbidden("token is not linked to a professional"))
		}
		if filter.ProfessionalID != "" && filter.ProfessionalID != session.ProfessionalID {
			return nil, flow.Reject(utils.Forbidden("professionals can only list their own calendar"))
		}
		filter.ProfessionalID = session.ProfessionalID
	case auth.ScopeSelfPatient:
		filter.PatientEmail = strings.ToLower(session.Email)
	}

	bookings, err := s.Ledger.List(ctx, session.TenantID, filter)
	if err != nil {
		return nil, flow.Reject(err)
	}
	if err := finish(flow, StateComputed); err != nil {
		return nil, err
	}
	return bookings, nil
}

// visible loads a booking and hides it from callers whose scope excludes it.
func (s *DefaultBookingService) visible(ctx context.Context, session *models.Session, decision auth.Decision, bookingID string) (*models.Booking, error) {
	b, err := s.Ledger.Get(ctx, session.TenantID, bookingID)
	if err != nil {
		return nil, err
	}
	switch decision.Scope {
	case auth.ScopeSelfPatient:
		if !strings.EqualFold(b.PatientEmail, session.Email) {
			return nil, utils.NotFound("booking not found")
		}
	case auth.ScopeSelfProfessional:
		if b.ProfessionalID != session.ProfessionalID {
			return nil, utils.NotFound("booking not found")
		}
	}
	return b, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, session *models.Session, bookingID string) (*models.Booking, error) {
	flow, decision, err := s.begin(session, auth.OpGetBooking, "", nil)
	if err != nil {
		return nil, err
	}
	b, err := s.visible(ctx, session, decision, bookingID)
	if err != nil {
		return nil, flow.Reject(err)
	}
	if err := finish(flow, StateComputed); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultBookingService) RescheduleBooking(ctx context.Context, session *models.Session, bookingID string, req models.RescheduleRequest) (*models.Booking, error) {
	flow, decision, err := s.begin(session, auth.OpRescheduleBooking, "", nil)
	if err != nil {
		return nil, err
	}
	if req.StartTime.IsZero() {
		return nil, flow.Reject(utils.Validation("start_time is required"))
	}
	current, err := s.visible(ctx, session, decision, bookingID)
	if err != nil {
		return nil, flow.Reject(err)
	}
	if !current.IsConfirmed() {
		return nil, flow.Reject(utils.Validation("cancelled bookings cannot be rescheduled"))
	}
	professional, err := s.Catalog.GetProfessional(ctx, session.TenantID, current.ProfessionalID)
	if err != nil {
		return nil, flow.Reject(err)
	}

	now := s.now()
	start := req.StartTime.UTC()
	if err := s.checkWindow(ctx, session.TenantID, professional, start, start.Add(current.Effective()), now); err != nil {
		return nil, flow.Reject(err)
	}
	updated, err := s.Ledger.Reschedule(ctx, session.TenantID, bookingID, start, now)
	if err != nil {
		return nil, flow.Reject(err)
	}
	if err := finish(flow, StateCommitted); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, session *models.Session, bookingID string) (*models.Booking, error) {
	flow, decision, err := s.begin(session, auth.OpCancelBooking, "", nil)
	if err != nil {
		return nil, err
	}
	if _, err := s.visible(ctx, session, decision, bookingID); err != nil {
		return nil, flow.Reject(err)
	}
	cancelled, err := s.Ledger.Cancel(ctx, session.TenantID, bookingID, s.now())
	if err != nil {
		return nil, flow.Reject(err)
	}
	if err := finish(flow, StateCommitted); err != nil {
		return nil, err
	}
	return cancelled, nil
}
