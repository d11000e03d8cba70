package client

import (
	"fmt"
	"time"

	"clinicbook/models"

	"github.com/golang-jwt/jwt/v4"
)

// DisplaySession is what a UI may show about the signed-in user. It is decoded
// WITHOUT verifying the signature and must never drive an access decision; the
// engine verifies every token itself.
type DisplaySession struct {
	Subject   string
	Email     string
	TenantID  string
	Roles     []models.Role
	ExpiresAt time.Time
}

// Expired reports whether the token's exp has passed at now.
func (d DisplaySession) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// DecodeDisplaySession reads the claims of token for display purposes only.
func DecodeDisplaySession(token string) (*DisplaySession, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("client: undecodable token: %w", err)
	}

	d := &DisplaySession{
		Subject:  stringClaim(claims, "sub"),
		Email:    stringClaim(claims, "email"),
		TenantID: stringClaim(claims, "tenant_id"),
	}
	if d.TenantID == "" {
		d.TenantID = stringClaim(claims, "custom:tenant_id")
	}
	if exp, ok := claims["exp"].(float64); ok {
		d.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	for _, key := range []string{"cognito:groups", "roles"} {
		list, _ := claims[key].([]interface{})
		for _, v := range list {
			name, _ := v.(string)
			if role, ok := models.ParseRole(name); ok {
				d.Roles = append(d.Roles, role)
			}
		}
	}
	return d, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
