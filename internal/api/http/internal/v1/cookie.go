package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// The refresh cookie is the transport binding of a session: HTTP-only,
// SameSite=Lax, scoped to the auth route prefix. clearRefreshCookie must use
// the exact same attributes as setRefreshCookie; browsers silently ignore a
// deletion whose attributes differ from the original write.

func (h *Handler) setRefreshCookie(c *gin.Context, rawToken string, expiresAt time.Time) {
	cfg := h.config.Auth.Refresh

	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, rawToken, maxAge, cfg.CookiePath, cfg.CookieDomain, cfg.CookieSecure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	cfg := h.config.Auth.Refresh

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, cfg.CookiePath, cfg.CookieDomain, cfg.CookieSecure, true)
}

// refreshCookie extracts the opaque raw token from the inbound request. It
// does not interpret the value.
func (h *Handler) refreshCookie(c *gin.Context) (string, bool) {
	token, err := c.Cookie(h.config.Auth.Refresh.CookieName)
	if err != nil || token == "" {
		return "", false
	}

	return token, true
}
