// File: internal/common/context_helpers.go
package common

import (
	"github.com/gin-gonic/gin"

	"prepwise_backend/internal/shared"
)

// GetCurrentUserFromContext retrieves the session user from the Gin context.
// Returns nil for anonymous requests; callers treat that as "no session",
// not as a fault.
func GetCurrentUserFromContext(c *gin.Context) *shared.User {
	val, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil
	}
	usr, ok := val.(*shared.User)
	if !ok {
		return nil
	}
	return usr
}

// GetRequestIDFromContext retrieves the request ID set by the logging
// middleware. Empty when the middleware did not run.
func GetRequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}
