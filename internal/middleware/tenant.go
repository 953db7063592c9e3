package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
	"github.com/leaguedesk/backend/pkg/response"
)

// Tenant attaches a fresh tenancy.RequestScope for the authenticated user to
// the request context. Call after JWT.
func Tenant(resolver *tenancy.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := resolver.NewScope(UserID(c))
		c.Request = c.Request.WithContext(tenancy.WithScope(c.Request.Context(), scope))
		c.Next()
	}
}

// RequireMembershipRole allows only members of the current organization holding one of roles.
func RequireMembershipRole(roles ...models.MembershipRole) gin.HandlerFunc {
	allowed := make(map[models.MembershipRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		m := tenancy.CurrentMembership(c.Request.Context())
		if m == nil {
			response.NotFound(c, "no current organization")
			c.Abort()
			return
		}
		if _, ok := allowed[m.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// NoOrganizationMessage tells a user without an organization what to do next.
const NoOrganizationMessage = "create an organization first"

// RequireOrganization rejects requests whose user has no current organization.
// Scoped queries are a no-op without one, so tenant-owned routes must not run.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := tenancy.CurrentOrganization(c.Request.Context()); !ok {
			response.Conflict(c, NoOrganizationMessage)
			c.Abort()
			return
		}
		c.Next()
	}
}
