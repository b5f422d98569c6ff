package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/synqit/synqit-backend/internal/interface/http"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
)

// AuthModule mounts /auth. Unauthenticated endpoints share a strict
// per-IP-and-path budget.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   Guard
	// PublicLimit is requests per minute per IP for each public endpoint.
	PublicLimit int
}

func NewAuthModule(h *handlers.AuthHandler, guard Guard, publicLimit int) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard, PublicLimit: publicLimit}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	strict := middleware.RateLimit(m.Guard.Redis, m.PublicLimit, time.Minute, middleware.KeyByIPAndPath(), nil)

	public := rg.Group("/auth", strict)
	{
		public.POST("/register", m.Handler.Register)
		public.POST("/login", m.Handler.Login)
		public.POST("/refresh", m.Handler.Refresh)
		public.POST("/forgot-password", m.Handler.ForgotPassword)
		public.POST("/reset-password", m.Handler.ResetPassword)
	}

	auth := m.Guard.Protected(rg, "/auth")
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.Profile)
		auth.POST("/change-password", m.Handler.ChangePassword)
		auth.POST("/verify-email", strict, m.Handler.VerifyEmail)
		auth.POST("/resend-verification", strict, m.Handler.ResendVerification)
	}
}
