package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	RefreshCookieName = "refresh_token"
	AccessCookieName  = "access_token"

	// The refresh token is only ever sent back to the auth endpoints.
	RefreshCookiePath = "/api/auth"
)

// CookieJar writes the HttpOnly auth cookies. The Authorization header takes
// precedence over the access cookie when both are present.
type CookieJar struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// NewCookie builds a jar. sameSite accepts lax, strict or none; anything else
// falls back to lax. SameSite=None is only honored by browsers on secure cookies.
func NewCookie(domain string, secure bool, sameSite string) *CookieJar {
	mode := http.SameSiteLaxMode
	switch strings.ToLower(sameSite) {
	case "strict":
		mode = http.SameSiteStrictMode
	case "none":
		if secure {
			mode = http.SameSiteNoneMode
		}
	}
	return &CookieJar{Domain: domain, Secure: secure, SameSite: mode}
}

// SetTokens writes both cookies, each expiring with its token.
func (j *CookieJar) SetTokens(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	j.set(c, AccessCookieName, access, maxAgeFrom(aexp), "/")
	j.set(c, RefreshCookieName, refresh, maxAgeFrom(rexp), RefreshCookiePath)
}

func (j *CookieJar) Clear(c *gin.Context) {
	j.set(c, AccessCookieName, "", -1, "/")
	j.set(c, RefreshCookieName, "", -1, RefreshCookiePath)
}

func (j *CookieJar) set(c *gin.Context, name, value string, maxAge int, path string) {
	c.SetSameSite(j.SameSite)
	c.SetCookie(name, value, maxAge, path, j.Domain, j.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
