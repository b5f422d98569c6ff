package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/synqit/synqit-backend/internal/interface/middleware"
)

// Guard builds the middleware shared by protected route groups.
type Guard struct {
	Auth  gin.HandlerFunc
	Redis *redis.Client
	// PerUser is the request budget per authenticated user per minute.
	PerUser int
}

// Protected returns a sub-group that requires a valid access token and
// applies the per-user limiter after authentication.
func (g Guard) Protected(rg *gin.RouterGroup, path string) *gin.RouterGroup {
	grp := rg.Group(path)
	grp.Use(g.Auth, middleware.RateLimit(g.Redis, g.PerUser, time.Minute, middleware.KeyByUserID(), nil))
	return grp
}
