package utils

import (
	"testing"
	"time"

	"clinicbook/models"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestValidator(t *testing.T, issuer string) *SessionValidator {
	t.Helper()
	v, err := NewSessionValidator(ValidatorConfig{
		Secret: testSecret,
		Issuer: issuer,
		Leeway: 30 * time.Second,
		Now:    func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewSessionValidator: %v", err)
	}
	return v
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":            "user-1",
		"email":          "ana@example.com",
		"tenant_id":      "tenant-a",
		"cognito:groups": []string{"Recepción"},
		"exp":            fixedNow.Add(time.Hour).Unix(),
	}
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := GenerateToken(testSecret, claims)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func TestValidateAcceptsSignedToken(t *testing.T) {
	v := newTestValidator(t, "")
	sess, err := v.Validate(sign(t, baseClaims()))
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if sess.TenantID != "tenant-a" || sess.Email != "ana@example.com" || sess.Subject != "user-1" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !sess.HasRole(models.RoleReception) {
		t.Fatalf("Roles=%v, want Reception", sess.Roles)
	}
}

func TestValidateClaimVariants(t *testing.T) {
	v := newTestValidator(t, "")
	claims := baseClaims()
	delete(claims, "tenant_id")
	claims["custom:tenant_id"] = "tenant-b"
	claims["cognito:groups"] = []string{"Odontólogo", "unknown-group"}
	claims["roles"] = []string{"Paciente"}
	claims["custom:professional_id"] = "prof-9"

	sess, err := v.Validate(sign(t, claims))
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if sess.TenantID != "tenant-b" {
		t.Fatalf("TenantID=%q, want tenant-b", sess.TenantID)
	}
	if sess.ProfessionalID != "prof-9" {
		t.Fatalf("ProfessionalID=%q, want prof-9", sess.ProfessionalID)
	}
	if len(sess.Roles) != 2 || !sess.HasRole(models.RoleProfessional) || !sess.HasRole(models.RolePatient) {
		t.Fatalf("Roles=%v, want Professional and Patient", sess.Roles)
	}
}

func TestValidateRejects(t *testing.T) {
	v := newTestValidator(t, "https://idp.example.com")

	withIssuer := func(mutate func(jwt.MapClaims)) jwt.MapClaims {
		c := baseClaims()
		c["iss"] = "https://idp.example.com"
		mutate(c)
		return c
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, withIssuer(func(jwt.MapClaims) {})).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, withIssuer(func(jwt.MapClaims) {})).
		SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign forged: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"alg none", noneToken},
		{"wrong key", forged},
		{"expired", sign(t, withIssuer(func(c jwt.MapClaims) { c["exp"] = fixedNow.Add(-time.Minute).Unix() }))},
		{"no exp", sign(t, withIssuer(func(c jwt.MapClaims) { delete(c, "exp") }))},
		{"no tenant", sign(t, withIssuer(func(c jwt.MapClaims) { delete(c, "tenant_id") }))},
		{"no role", sign(t, withIssuer(func(c jwt.MapClaims) { c["cognito:groups"] = []string{"visitor"} }))},
		{"wrong issuer", sign(t, withIssuer(func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(tc.token)
			if !IsKind(err, KindUnauthenticated) {
				t.Fatalf("Validate(%s)=%v, want Unauthenticated", tc.name, err)
			}
		})
	}
}

func TestValidateLeeway(t *testing.T) {
	v := newTestValidator(t, "")
	claims := baseClaims()
	claims["exp"] = fixedNow.Add(-10 * time.Second).Unix()
	if _, err := v.Validate(sign(t, claims)); err != nil {
		t.Fatalf("Validate() within leeway error: %v", err)
	}
}

func TestNewSessionValidatorRequiresKeySource(t *testing.T) {
	if _, err := NewSessionValidator(ValidatorConfig{}); err == nil {
		t.Fatal("NewSessionValidator(empty) succeeded, want error")
	}
}
