package middleware

import (
	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// userIDKey and roleKey store the authenticated caller in the request context.
const (
	userIDKey = contextKey("userID")
	roleKey   = contextKey("role")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetRoleFromContext retrieves the authenticated caller's role.
func GetRoleFromContext(c *gin.Context) (domain.Role, bool) {
	role, ok := c.Request.Context().Value(roleKey).(domain.Role)
	return role, ok
}
