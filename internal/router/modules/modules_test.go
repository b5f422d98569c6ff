package modules

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/synqit/synqit-backend/internal/application"
	handlers "github.com/synqit/synqit-backend/internal/interface/http"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/apperror"
)

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string) (*application.Principal, error) {
	return nil, apperror.Unauthorized("invalid token")
}

func mount(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	base := handlers.NewBase(nil, false)
	guard := Guard{Auth: middleware.Auth(rejectAll{})}
	project := handlers.NewProjectHandler(base, nil, 0)

	e := gin.New()
	api := e.Group("/api")
	for _, m := range []interface{ Register(*gin.RouterGroup) }{
		NewAuthModule(handlers.NewAuthHandler(base, nil, nil, nil), guard, 10),
		NewProfileModule(handlers.NewProfileHandler(base, nil, nil, 0), project, guard),
		NewProjectModule(project, guard),
		NewMatchModule(handlers.NewPartnershipHandler(base, nil), guard),
		NewMessageModule(handlers.NewMessageHandler(base, nil), guard),
		NewNotificationModule(handlers.NewNotificationHandler(base, nil), guard),
		NewHealthModule(handlers.NewHealthHandler(nil)),
		NewDebugModule(nil, map[string]func() any{"synqit_test_gauge": func() any { return 7 }}),
	} {
		m.Register(api)
	}
	return e
}

func TestRoutesAreMounted(t *testing.T) {
	e := mount(t)
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/forgot-password",
		"POST /api/auth/reset-password",
		"POST /api/auth/logout",
		"GET /api/auth/profile",
		"POST /api/auth/change-password",
		"POST /api/auth/verify-email",
		"POST /api/auth/resend-verification",
		"GET /api/profile",
		"PUT /api/profile",
		"DELETE /api/profile",
		"POST /api/profile/avatar",
		"GET /api/profile/company",
		"PUT /api/profile/company",
		"GET /api/project",
		"POST /api/project",
		"PUT /api/project",
		"PUT /api/project/blockchains",
		"POST /api/project/logo",
		"GET /api/projects",
		"GET /api/projects/:id",
		"GET /api/companies",
		"GET /api/companies/search",
		"GET /api/companies/:id",
		"POST /api/matches/request",
		"GET /api/matches/sent",
		"GET /api/matches/received",
		"GET /api/matches/recommendations",
		"GET /api/matches/stats",
		"GET /api/matches/:id",
		"PUT /api/matches/:id/accept",
		"POST /api/matches/:id/reject",
		"POST /api/matches/:id/cancel",
		"POST /api/messages/send",
		"GET /api/messages/conversations",
		"GET /api/messages/partnerships/:id",
		"GET /api/messages/search",
		"GET /api/messages/stats",
		"DELETE /api/messages/:id",
		"GET /api/notifications",
		"GET /api/notifications/unread-count",
		"PUT /api/notifications/:id/read",
		"PUT /api/notifications/read-all",
		"GET /api/health",
		"GET /api/debug/vars",
	} {
		assert.True(t, have[want], want)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := mount(t)
	for _, path := range []string{"/api/profile", "/api/matches/stats", "/api/notifications", "/api/auth/profile"} {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDebugVarsPublishesGauges(t *testing.T) {
	e := mount(t)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"synqit_test_gauge": 7`)
}
