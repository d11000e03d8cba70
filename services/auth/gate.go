package auth

import (
	"fmt"

	"clinicbook/models"
	"clinicbook/utils"
)

// Operation names an action guarded by the gate.
type Operation string

const (
	OpComputeAvailability Operation = "availability.compute"
	OpCreateBooking       Operation = "booking.create"
	OpListBookings        Operation = "booking.list"
	OpGetBooking          Operation = "booking.get"
	OpRescheduleBooking   Operation = "booking.reschedule"
	OpCancelBooking       Operation = "booking.cancel"
	OpListTreatments      Operation = "treatment.list"
	OpCreateTreatment     Operation = "treatment.create"
	OpListProfessionals   Operation = "professional.list"
	OpCreateProfessional  Operation = "professional.create"
	OpListSites           Operation = "site.list"
	OpCreateSite          Operation = "site.create"
	OpReadTenant          Operation = "tenant.read"
	OpWriteTenant         Operation = "tenant.write"
)

// Scope limits which records an allowed caller may touch.
type Scope int

const (
	// ScopeSelfPatient restricts the caller to bookings under their own email.
	ScopeSelfPatient Scope = iota + 1
	// ScopeSelfProfessional restricts the caller to their own calendar.
	ScopeSelfProfessional
	// ScopeTenant allows every record of the tenant.
	ScopeTenant
)

func (s Scope) String() string {
	switch s {
	case ScopeTenant:
		return "tenant"
	case ScopeSelfProfessional:
		return "self-professional"
	case ScopeSelfPatient:
		return "self-patient"
	}
	return "none"
}

type grants map[models.Role]Scope

var staff = grants{
	models.RoleAdmin:     ScopeTenant,
	models.RoleOwner:     ScopeTenant,
	models.RoleReception: ScopeTenant,
}

var everyone = grants{
	models.RoleAdmin:        ScopeTenant,
	models.RoleOwner:        ScopeTenant,
	models.RoleReception:    ScopeTenant,
	models.RoleProfessional: ScopeTenant,
	models.RolePatient:      ScopeTenant,
}

var management = grants{
	models.RoleAdmin: ScopeTenant,
	models.RoleOwner: ScopeTenant,
}

func with(base grants, role models.Role, scope Scope) grants {
	out := grants{role: scope}
	for r, s := range base {
		out[r] = s
	}
	return out
}

// Policy is the complete operation to role table. Roles missing from an entry are denied.
var Policy = map[Operation]grants{
	OpComputeAvailability: everyone,
	OpListTreatments:      everyone,
	OpListProfessionals:   everyone,
	OpListSites:           everyone,
	OpReadTenant:          everyone,

	OpCreateBooking: with(with(staff, models.RoleProfessional, ScopeTenant), models.RolePatient, ScopeSelfPatient),
	OpListBookings:  with(with(staff, models.RoleProfessional, ScopeSelfProfessional), models.RolePatient, ScopeSelfPatient),
	OpGetBooking:    with(with(staff, models.RoleProfessional, ScopeSelfProfessional), models.RolePatient, ScopeSelfPatient),

	OpRescheduleBooking: with(staff, models.RolePatient, ScopeSelfPatient),
	OpCancelBooking:     with(staff, models.RolePatient, ScopeSelfPatient),

	OpCreateTreatment:    management,
	OpCreateProfessional: management,
	OpCreateSite:         management,
	OpWriteTenant:        management,
}

// Decision is the outcome of an allowed request.
type Decision struct {
	Operation Operation
	Role      models.Role
	Scope     Scope
}

// Authorize checks tenant isolation first, then picks the widest scope any of the
// session's roles grants for op. It has no side effects.
func Authorize(session *models.Session, op Operation, targetTenantID string) (Decision, error) {
	if session == nil {
		return Decision{}, utils.Unauthenticated("missing session")
	}
	if targetTenantID == "" || targetTenantID != session.TenantID {
		return Decision{}, utils.Forbidden("access to this tenant is not allowed")
	}
	table, ok := Policy[op]
	if !ok {
		return Decision{}, utils.Forbidden(fmt.Sprintf("operation %s is not allowed", op))
	}

	best := Decision{Operation: op}
	for _, role := range session.Roles {
		if scope, ok := table[role]; ok && scope > best.Scope {
			best.Role, best.Scope = role, scope
		}
	}
	if best.Scope == 0 {
		return Decision{}, utils.Forbidden(fmt.Sprintf("role not permitted to %s", op))
	}
	return best, nil
}

// TargetTenant resolves the tenant a request addresses: the explicit one when given,
// otherwise the caller's own.
func TargetTenant(session *models.Session, explicit string) string {
	if explicit != "" || session == nil {
		return explicit
	}
	return session.TenantID
}
