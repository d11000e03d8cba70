package utils

import (
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// TokenValidator turns a raw bearer token into a trusted Session.
type TokenValidator interface {
	Validate(rawToken string) (*models.Session, error)
}

// ValidatorConfig selects the key sources and claim checks.
type ValidatorConfig struct {
	Secret   string // HS256 shared secret
	JWKSURL  string // identity provider key set, RS256/ES256
	Issuer   string
	Audience string
	Leeway   time.Duration
	Now      func() time.Time
}

// SessionValidator verifies signatures against the configured keys and extracts claims.
type SessionValidator struct {
	secret   []byte
	jwks     *keyfunc.JWKS
	methods  []string
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// sessionClaims mirrors the identity provider's token layout.
type sessionClaims struct {
	Email                string   `json:"email"`
	Groups               []string `json:"cognito:groups"`
	Roles                []string `json:"roles"`
	TenantID             string   `json:"tenant_id"`
	CustomTenantID       string   `json:"custom:tenant_id"`
	ProfessionalID       string   `json:"professional_id"`
	CustomProfessionalID string   `json:"custom:professional_id"`
	jwt.RegisteredClaims
}

// NewSessionValidator builds a validator. A JWKS URL starts a background key refresh.
func NewSessionValidator(cfg ValidatorConfig) (*SessionValidator, error) {
	v := &SessionValidator{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      cfg.Now,
	}
	if v.now == nil {
		v.now = time.Now
	}
	if cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
		v.methods = append(v.methods, jwt.SigningMethodHS256.Alg())
	}
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				GetLogger().Sugar().Warnf("jwks refresh failed: %v", err)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS from %s: %w", cfg.JWKSURL, err)
		}
		v.jwks = jwks
		v.methods = append(v.methods, jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg())
	}
	if len(v.methods) == 0 {
		return nil, errors.New("no token key source configured")
	}
	return v, nil
}

// Close stops the JWKS refresh goroutine, if any.
func (v *SessionValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func (v *SessionValidator) keyFor(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, errors.New("unexpected signing method")
	}
	return v.jwks.Keyfunc(token)
}

// Validate checks signature, expiry, issuer and audience, then maps claims onto a Session.
// Every failure is Unauthenticated.
func (v *SessionValidator) Validate(rawToken string) (*models.Session, error) {
	if rawToken == "" {
		return nil, Unauthenticated("missing bearer token")
	}

	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods(v.methods), jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(rawToken, &claims, v.keyFor)
	if err != nil || !token.Valid {
		return nil, Unauthenticated("invalid token")
	}

	now := v.now()
	if claims.ExpiresAt == nil {
		return nil, Unauthenticated("token has no expiry")
	}
	if !claims.VerifyExpiresAt(now.Add(-v.leeway), true) {
		return nil, Unauthenticated("token expired")
	}
	if !claims.VerifyNotBefore(now.Add(v.leeway), false) {
		return nil, Unauthenticated("token not yet valid")
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, Unauthenticated("unexpected token issuer")
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, Unauthenticated("unexpected token audience")
	}

	session := &models.Session{
		Subject:        claims.Subject,
		Email:          claims.Email,
		TenantID:       firstNonEmpty(claims.TenantID, claims.CustomTenantID),
		ProfessionalID: firstNonEmpty(claims.ProfessionalID, claims.CustomProfessionalID),
		ExpiresAt:      claims.ExpiresAt.Time,
	}
	if session.TenantID == "" {
		return nil, Unauthenticated("token has no tenant")
	}
	seen := map[models.Role]bool{}
	for _, name := range append(claims.Groups, claims.Roles...) {
		if role, ok := models.ParseRole(name); ok && !seen[role] {
			seen[role] = true
			session.Roles = append(session.Roles, role)
		}
	}
	if len(session.Roles) == 0 {
		return nil, Unauthenticated("token carries no recognised role")
	}
	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}

// GenerateToken signs an HS256 session token. Used by tooling and tests; production
// tokens come from the identity provider.
func GenerateToken(secret string, claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
