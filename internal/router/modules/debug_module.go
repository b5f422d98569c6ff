package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/synqit/synqit-backend/internal/interface/middleware"
)

// DebugModule exposes expvar under /debug/vars, plus any extra gauges
// the process wants published. Requests from private networks skip the limiter.
type DebugModule struct {
	Redis  *redis.Client
	Gauges map[string]func() any
}

func NewDebugModule(rdb *redis.Client, gauges map[string]func() any) *DebugModule {
	return &DebugModule{Redis: rdb, Gauges: gauges}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	for name, fn := range m.Gauges {
		// expvar.Publish panics on duplicates
		if expvar.Get(name) == nil {
			expvar.Publish(name, expvar.Func(fn))
		}
	}
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
