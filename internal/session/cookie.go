// File: internal/session/cookie.go
package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prepwise_backend/internal/config"
)

// Cookies writes and clears the session credential at the transport
// boundary. One credential per client context: writing a new value
// supersedes any prior one at the same slot.
type Cookies struct {
	name   string
	maxAge int
	secure bool
}

// NewCookies creates the cookie helper from config. The Secure flag is set
// only in release mode.
func NewCookies(cfg *config.Config) *Cookies {
	return &Cookies{
		name:   cfg.SessionCookieName,
		maxAge: int(cfg.SessionDuration.Seconds()),
		secure: cfg.IsProduction(),
	}
}

// Read returns the session credential sent by the client, or "" when absent.
func (k *Cookies) Read(c *gin.Context) string {
	cookie, err := c.Request.Cookie(k.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Write sets the session credential cookie: HttpOnly, whole-application
// path, SameSite Lax, Secure in production.
func (k *Cookies) Write(c *gin.Context, credential string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     k.name,
		Value:    credential,
		Path:     "/",
		MaxAge:   k.maxAge,
		HttpOnly: true,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear deletes the session credential cookie. Idempotent: clearing an
// already-absent cookie is not an error.
func (k *Cookies) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     k.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   k.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
