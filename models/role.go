package models

import "strings"

// Role is the closed set of caller roles.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleOwner        Role = "Owner"
	RoleReception    Role = "Reception"
	RoleProfessional Role = "Professional"
	RolePatient      Role = "Patient"
)

var AllRoles = []Role{RoleAdmin, RoleOwner, RoleReception, RoleProfessional, RolePatient}

// group names issued by the identity provider, lower-cased
var roleAliases = map[string]Role{
	"admin":        RoleAdmin,
	"owner":        RoleOwner,
	"reception":    RoleReception,
	"recepción":    RoleReception,
	"recepcion":    RoleReception,
	"professional": RoleProfessional,
	"odontólogo":   RoleProfessional,
	"odontologo":   RoleProfessional,
	"patient":      RolePatient,
	"paciente":     RolePatient,
}

// ParseRole maps an identity-provider group name onto a Role.
func ParseRole(name string) (Role, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}
