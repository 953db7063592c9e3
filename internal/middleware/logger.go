package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaguedesk/backend/internal/models"
	"github.com/leaguedesk/backend/internal/tenancy"
)

// Logger returns a zap-based request logging middleware.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		clientIP := c.ClientIP()
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_ip", clientIP),
		}
		if uid := UserID(c); uid != 0 {
			fields = append(fields, zap.Int64("user_id", uid))
		}
		// only report an organization some handler already resolved
		if m := resolvedMembership(c); m != nil {
			fields = append(fields, zap.Int64("organization_id", m.OrganizationID))
		}
		logger.Info("request", fields...)
	}
}

func resolvedMembership(c *gin.Context) *models.Membership {
	m, _ := tenancy.ScopeFrom(c.Request.Context()).Resolved()
	return m
}
