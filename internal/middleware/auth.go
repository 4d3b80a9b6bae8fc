// File: internal/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/session"
)

// SessionAuth requires a valid session. The credential is read from the
// session cookie, resolved against the directory, and the resulting user is
// stored in context. Requests without a resolvable identity are rejected.
func SessionAuth(sessions *session.Manager, cookies *session.Cookies, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr := sessions.ResolveCurrentIdentity(c.Request.Context(), cookies.Read(c))
		if usr == nil {
			logger.Debug("Request rejected, no resolvable session", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("A valid session is required."))
			return
		}

		c.Set(common.CurrentUserKey, usr)
		c.Next()
	}
}

// OptionalSessionAuth resolves the session when present but never rejects.
// Handlers observe anonymous visitors as an absent context user.
func OptionalSessionAuth(sessions *session.Manager, cookies *session.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if usr := sessions.ResolveCurrentIdentity(c.Request.Context(), cookies.Read(c)); usr != nil {
			c.Set(common.CurrentUserKey, usr)
		}
		c.Next()
	}
}
