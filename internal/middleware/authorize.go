package middleware

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// RequireCapability rejects callers whose role does not grant capability.
// It must run after AuthMiddleware.
func RequireCapability(capability domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRoleFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !domain.Authorize(role, capability) {
			GetLoggerFromCtx(c.Request.Context()).Warn("Capability denied",
				slog.String("role", string(role)), slog.String("capability", string(capability)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
