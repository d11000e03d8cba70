package middleware

import (
	"strings"

	"clinicbook/models"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// SessionAuthMiddleware verifies the bearer token and stores the resulting session
// on the request context. Requests without a valid token stop here with 401.
func SessionAuthMiddleware(validator utils.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			utils.RespondError(c, utils.Unauthenticated("missing or invalid Authorization header"))
			return
		}

		session, err := validator.Validate(strings.TrimSpace(token))
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.Set(sessionKey, session)
		c.Set("tenantID", session.TenantID)
		c.Next()
	}
}

// GetSession returns the session set by SessionAuthMiddleware, or nil.
func GetSession(c *gin.Context) *models.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}
