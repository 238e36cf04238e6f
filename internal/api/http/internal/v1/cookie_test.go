package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/recordhub/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCookieTestHandler() *Handler {
	cfg := &config.Config{}
	cfg.Auth.Refresh = config.RefreshConfig{
		CookieName:   "refresh_token",
		CookiePath:   "/api/auth",
		CookieSecure: false,
	}

	return &Handler{config: cfg}
}

func recordedCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	res := w.Result()
	defer res.Body.Close() //nolint:errcheck

	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetRefreshCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCookieTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	h.setRefreshCookie(c, "raw-token-value", time.Now().Add(time.Hour))

	cookie := recordedCookie(t, w, "refresh_token")
	assert.Equal(t, "raw-token-value", cookie.Value)
	assert.Equal(t, "/api/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)
	assert.InDelta(t, 3600, cookie.MaxAge, 5)
}

func TestSetRefreshCookie_PastExpiryClampsToZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCookieTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	h.setRefreshCookie(c, "raw-token-value", time.Now().Add(-time.Minute))

	cookie := recordedCookie(t, w, "refresh_token")
	assert.Equal(t, 0, cookie.MaxAge)
}

func TestClearRefreshCookie_MatchesWriteAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCookieTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)

	h.clearRefreshCookie(c)

	cookie := recordedCookie(t, w, "refresh_token")
	assert.Empty(t, cookie.Value)
	assert.Equal(t, "/api/auth", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Less(t, cookie.MaxAge, 0, "a negative max-age deletes the cookie")
}

func TestRefreshCookie_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCookieTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	c.Request.AddCookie(&http.Cookie{Name: "refresh_token", Value: "opaque-raw-token"})

	token, ok := h.refreshCookie(c)
	require.True(t, ok)
	assert.Equal(t, "opaque-raw-token", token)
}

func TestRefreshCookie_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newCookieTestHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)

	_, ok := h.refreshCookie(c)
	assert.False(t, ok)
}
