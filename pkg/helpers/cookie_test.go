package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCookieSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, NewCookie("", false, "").SameSite)
	assert.Equal(t, http.SameSiteStrictMode, NewCookie("", false, "Strict").SameSite)
	assert.Equal(t, http.SameSiteNoneMode, NewCookie("", true, "none").SameSite)
	// None without Secure is rejected by browsers
	assert.Equal(t, http.SameSiteLaxMode, NewCookie("", false, "none").SameSite)
}

func TestCookieJarSetAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jar := NewCookie("synqit.dev", true, "strict")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jar.SetTokens(c, "acc", time.Now().Add(15*time.Minute), "ref", time.Now().Add(-time.Hour))

	got := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		got[ck.Name] = ck
	}
	require.Contains(t, got, AccessCookieName)
	require.Contains(t, got, RefreshCookieName)
	assert.Equal(t, "/", got[AccessCookieName].Path)
	assert.Equal(t, RefreshCookiePath, got[RefreshCookieName].Path)
	assert.True(t, got[AccessCookieName].HttpOnly)
	assert.True(t, got[AccessCookieName].Secure)
	assert.Greater(t, got[AccessCookieName].MaxAge, 0)
	// an expired refresh token produces a session cookie rather than a negative age
	assert.Equal(t, 0, got[RefreshCookieName].MaxAge)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	jar.Clear(c)
	for _, ck := range w.Result().Cookies() {
		assert.Less(t, ck.MaxAge, 0, ck.Name)
	}
}
