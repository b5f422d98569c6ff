package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/synqit/synqit-backend/internal/interface/http"
)

// MatchModule mounts /matches: partnership requests and recommendations.
type MatchModule struct {
	Handler *handlers.PartnershipHandler
	Guard   Guard
}

func NewMatchModule(h *handlers.PartnershipHandler, guard Guard) *MatchModule {
	return &MatchModule{Handler: h, Guard: guard}
}

func (m *MatchModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg, "/matches")
	{
		auth.POST("/request", m.Handler.Request)
		auth.GET("/sent", m.Handler.Sent)
		auth.GET("/received", m.Handler.Received)
		auth.GET("/recommendations", m.Handler.Recommendations)
		auth.GET("/stats", m.Handler.Stats)
		auth.GET("/:id", m.Handler.Get)
		for _, method := range []string{"PUT", "POST"} {
			auth.Handle(method, "/:id/accept", m.Handler.Accept)
			auth.Handle(method, "/:id/reject", m.Handler.Reject)
			auth.Handle(method, "/:id/cancel", m.Handler.Cancel)
		}
	}
}
