package handlers

import (
	"net/http"

	"github.com/SscSPs/account_auth_service/internal/core/domain"
	"github.com/SscSPs/account_auth_service/internal/middleware"
	"github.com/SscSPs/account_auth_service/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RefreshTokenCookie is the cookie the refresh token is delivered in.
const RefreshTokenCookie = "refreshToken"

// cookieWriter sets and clears the session cookies. Both are httpOnly,
// secure and SameSite=Strict; their max age follows the token lifetime.
type cookieWriter struct {
	path   string
	domain string
}

func newCookieWriter(cfg *config.Config) cookieWriter {
	path := cfg.CookiePath
	if path == "" {
		path = "/"
	}
	return cookieWriter{path: path, domain: cfg.CookieDomain}
}

func (w cookieWriter) setSession(c *gin.Context, pair domain.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.Access.Token, int(pair.Access.TTL.Seconds()), w.path, w.domain, true, true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookie, pair.Refresh.Token, int(pair.Refresh.TTL.Seconds()), w.path, w.domain, true, true)
}

func (w cookieWriter) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, w.path, w.domain, true, true)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookie, "", -1, w.path, w.domain, true, true)
}
