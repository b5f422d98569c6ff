package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ping(path string) Module {
	return ModuleFunc(func(rg *gin.RouterGroup) {
		rg.GET(path, func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
	})
}

func serve(r *Registry, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRegistryMountsModulesUnderAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry(gin.New())
	r.Use(func(c *gin.Context) { c.Set("mw", "seen"); c.Next() })
	r.Add(ping("/a"))
	r.Add(ping("/b"))
	r.RegisterAll()

	for _, path := range []string{"/api/a", "/api/b"} {
		w := serve(r, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "seen", w.Body.String())
	}
}

func TestRegistryUnknownRoutesUseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRegistry(gin.New())
	r.Add(ping("/a"))
	r.RegisterAll()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/a", http.StatusNotFound},
		{http.MethodGet, "/api/missing", http.StatusNotFound},
		{http.MethodDelete, "/api/a", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := serve(r, tt.method, tt.path)
		require.Equal(t, tt.status, w.Code, tt.path)

		var body struct {
			Status  int  `json:"status"`
			Success bool `json:"success"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.status, body.Status)
		assert.False(t, body.Success)
	}
}
