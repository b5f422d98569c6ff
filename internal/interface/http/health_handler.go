package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/pkg/response"
)

// HealthReporter is satisfied by *postgres.HealthChecker.
type HealthReporter interface {
	Healthy() bool
	LastCheck() time.Time
}

type HealthHandler struct {
	DB      HealthReporter
	Started time.Time
}

func NewHealthHandler(db HealthReporter) *HealthHandler {
	return &HealthHandler{DB: db, Started: time.Now()}
}

type healthResponse struct {
	Status      string     `json:"status"`
	Database    string     `json:"database"`
	LastCheckAt *time.Time `json:"lastCheckAt,omitempty"`
	Uptime      string     `json:"uptime"`
}

// Health GET /api/health. Reports 503 while the database is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	res := healthResponse{Status: "ok", Database: "up", Uptime: time.Since(h.Started).Round(time.Second).String()}
	if h.DB != nil {
		if t := h.DB.LastCheck(); !t.IsZero() {
			res.LastCheckAt = &t
		}
		if !h.DB.Healthy() {
			res.Status, res.Database = "degraded", "down"
			c.JSON(http.StatusServiceUnavailable, response.Build(c, http.StatusServiceUnavailable, false, res, "database unavailable", nil, nil))
			return
		}
	}
	response.Success(c, http.StatusOK, res, "healthy", nil)
}
