package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type stubAuth struct {
	token string
	err   error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*application.Principal, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.token {
		return nil, apperror.Unauthorized("session expired or invalid")
	}
	return &application.Principal{UserID: "u1", SessionID: "s1"}, nil
}

func authEngine(a Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", Auth(a), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, UserID(c)+":"+p.SessionID)
	})
	return r
}

func TestAuth(t *testing.T) {
	r := authEngine(stubAuth{token: "good"})

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "u1:s1"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, http.StatusOK, "u1:s1"},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized, ""},
		{"cookie fallback", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: helpers.AccessCookieName, Value: "good"})
		}, http.StatusOK, "u1:s1"},
		{"invalid session", func(r *http.Request) { r.Header.Set("Authorization", "Bearer stale") }, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestAuthHidesInternalErrors(t *testing.T) {
	r := authEngine(stubAuth{err: apperror.Internal(assert.AnError)})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["message"])
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["request_id"])
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Body.String()
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Header().Get(HeaderRequestID))

	const incoming = "0b5e5c43-1f3a-4d2b-9a51-6a0f7c2b1e11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "1.2.3.4", "X-Forwarded-For": "5.6.7.8"}, "1.2.3.4"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"}, "5.6.7.8"},
		{"garbage ignored", map[string]string{"CF-Connecting-IP": "nope", "X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = unreachable.Close() }()

	for name, mw := range map[string]gin.HandlerFunc{
		"nil client":  RateLimit(nil, 1, time.Minute, KeyByIP(), nil),
		"redis down":  RateLimit(unreachable, 1, time.Minute, KeyByIP(), nil),
		"zero budget": RateLimit(unreachable, 0, time.Minute, KeyByIP(), nil),
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", mw, func(c *gin.Context) { c.Status(http.StatusNoContent) })
			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				assert.Equal(t, http.StatusNoContent, w.Code)
			}
		})
	}
}

func TestRateLimitKeys(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	var keys []string
	r.GET("/items/:id", func(c *gin.Context) {
		keys = append(keys, KeyByIP()(c), KeyByIPAndPath()(c), KeyByUserID()(c))
		c.Set(CtxUserIDKey, "u1")
		keys = append(keys, KeyByUserID()(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("X-Forwarded-For", "5.6.7.8")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{
		"rl:ip:5.6.7.8",
		"rl:path:/items/:id:ip:5.6.7.8",
		"rl:user:anon:ip:5.6.7.8",
		"rl:user:u1",
	}, keys)
}

func TestAllowFuncs(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	allow := AnyOf(AllowPaths("/api/health"), AllowPrivateIP())
	r.GET("/api/health", func(c *gin.Context) { c.JSON(http.StatusOK, allow(c)) })
	r.GET("/api/other", func(c *gin.Context) { c.JSON(http.StatusOK, allow(c)) })

	do := func(path, ip string) string {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String()
	}
	assert.Equal(t, "true", do("/api/health", "8.8.8.8"))
	assert.Equal(t, "true", do("/api/other", "192.168.1.5"))
	assert.Equal(t, "false", do("/api/other", "8.8.8.8"))
}
