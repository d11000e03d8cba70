package auth

import (
	"testing"

	"clinicbook/models"
	"clinicbook/utils"
)

func session(tenant string, roles ...models.Role) *models.Session {
	return &models.Session{Subject: "u1", Email: "u1@example.com", TenantID: tenant, Roles: roles}
}

func TestAuthorizeTable(t *testing.T) {
	const (
		deny = Scope(0)
	)
	cases := []struct {
		op   Operation
		role models.Role
		want Scope
	}{
		{OpCreateTreatment, models.RoleAdmin, ScopeTenant},
		{OpCreateTreatment, models.RoleOwner, ScopeTenant},
		{OpCreateTreatment, models.RoleReception, deny},
		{OpCreateTreatment, models.RoleProfessional, deny},
		{OpCreateTreatment, models.RolePatient, deny},
		{OpCreateBooking, models.RolePatient, ScopeSelfPatient},
		{OpCreateBooking, models.RoleReception, ScopeTenant},
		{OpListBookings, models.RoleProfessional, ScopeSelfProfessional},
		{OpListBookings, models.RolePatient, ScopeSelfPatient},
		{OpListBookings, models.RoleReception, ScopeTenant},
		{OpCancelBooking, models.RoleProfessional, deny},
		{OpCancelBooking, models.RolePatient, ScopeSelfPatient},
		{OpRescheduleBooking, models.RoleAdmin, ScopeTenant},
		{OpComputeAvailability, models.RolePatient, ScopeTenant},
		{OpListProfessionals, models.RolePatient, ScopeTenant},
		{OpWriteTenant, models.RoleReception, deny},
		{OpCreateProfessional, models.RoleOwner, ScopeTenant},
	}
	for _, tc := range cases {
		d, err := Authorize(session("tenant-a", tc.role), tc.op, "tenant-a")
		if tc.want == deny {
			if !utils.IsKind(err, utils.KindForbidden) {
				t.Fatalf("Authorize(%s, %s)=%v, want Forbidden", tc.role, tc.op, err)
			}
			continue
		}
		if err != nil || d.Scope != tc.want {
			t.Fatalf("Authorize(%s, %s)=%v, %v, want scope %v", tc.role, tc.op, d.Scope, err, tc.want)
		}
	}
}

func TestEveryOperationHasAnEntry(t *testing.T) {
	ops := []Operation{
		OpComputeAvailability, OpCreateBooking, OpListBookings, OpGetBooking, OpRescheduleBooking,
		OpCancelBooking, OpListTreatments, OpCreateTreatment, OpListProfessionals, OpCreateProfessional,
		OpListSites, OpCreateSite, OpReadTenant, OpWriteTenant,
	}
	for _, op := range ops {
		if len(Policy[op]) == 0 {
			t.Fatalf("Policy[%s] is empty", op)
		}
	}
}

func TestAuthorizeTenantMismatchIsForbiddenForAnyRole(t *testing.T) {
	for _, role := range models.AllRoles {
		_, err := Authorize(session("tenant-a", role), OpComputeAvailability, "tenant-b")
		if !utils.IsKind(err, utils.KindForbidden) {
			t.Fatalf("Authorize(%s, other tenant)=%v, want Forbidden", role, err)
		}
	}
}

func TestAuthorizePicksWidestScope(t *testing.T) {
	d, err := Authorize(session("tenant-a", models.RolePatient, models.RoleReception), OpCancelBooking, "tenant-a")
	if err != nil || d.Scope != ScopeTenant || d.Role != models.RoleReception {
		t.Fatalf("Authorize(patient+reception)=%+v, %v, want tenant scope via Reception", d, err)
	}
}

func TestAuthorizeWithoutSession(t *testing.T) {
	if _, err := Authorize(nil, OpListTreatments, "tenant-a"); !utils.IsKind(err, utils.KindUnauthenticated) {
		t.Fatalf("Authorize(nil)=%v, want Unauthenticated", err)
	}
}

func TestTargetTenant(t *testing.T) {
	s := session("tenant-a", models.RoleAdmin)
	if got := TargetTenant(s, ""); got != "tenant-a" {
		t.Fatalf("TargetTenant(implicit)=%q", got)
	}
	if got := TargetTenant(s, "tenant-b"); got != "tenant-b" {
		t.Fatalf("TargetTenant(explicit)=%q", got)
	}
}
