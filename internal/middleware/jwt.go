package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leaguedesk/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserAdmin is the key for the platform admin flag in gin context.
	ContextUserAdmin = "user_admin"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Admin  bool
}

// TokenValidator turns a bearer token into a Principal.
type TokenValidator func(token string) (Principal, error)

// JWT returns a middleware that validates the bearer token and sets the principal in context.
func JWT(validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		p, err := validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, p.UserID)
		c.Set(ContextUserAdmin, p.Admin)
		c.Next()
	}
}

// UserID returns the authenticated user's ID, or 0 for anonymous requests.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}

// RequireAdmin allows only platform administrators.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextUserAdmin) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
