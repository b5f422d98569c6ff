package router

import (
	"github.com/synqit/synqit-backend/internal/container"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/internal/router/modules"
)

// InitModules registers every feature module built from c.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	guard := modules.Guard{
		Auth:    middleware.Auth(c.Auth),
		Redis:   c.Redis,
		PerUser: cfg.RateLimitGeneral,
	}
	h := c.Handlers

	r.Add(modules.NewHealthModule(h.Health))
	r.Add(modules.NewAuthModule(h.Auth, guard, cfg.RateLimitAuth))
	r.Add(modules.NewProfileModule(h.Profile, h.Project, guard))
	r.Add(modules.NewProjectModule(h.Project, guard))
	r.Add(modules.NewMatchModule(h.Partnership, guard))
	r.Add(modules.NewMessageModule(h.Message, guard))
	r.Add(modules.NewNotificationModule(h.Notification, guard))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis, map[string]func() any{
			"db_pool":    func() any { return poolGauge(c) },
			"db_healthy": func() any { return c.Health.Healthy() },
		}))
	}
}

func poolGauge(c *container.Container) map[string]int64 {
	st := c.Pool.Stat()
	return map[string]int64{
		"total":    int64(st.TotalConns()),
		"idle":     int64(st.IdleConns()),
		"acquired": int64(st.AcquiredConns()),
		"max":      int64(st.MaxConns()),
	}
}
