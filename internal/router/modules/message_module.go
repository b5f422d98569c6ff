package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/synqit/synqit-backend/internal/interface/http"
)

type MessageModule struct {
	Handler *handlers.MessageHandler
	Guard   Guard
}

func NewMessageModule(h *handlers.MessageHandler, guard Guard) *MessageModule {
	return &MessageModule{Handler: h, Guard: guard}
}

func (m *MessageModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg, "/messages")
	{
		auth.POST("/send", m.Handler.Send)
		auth.GET("/conversations", m.Handler.Conversations)
		auth.GET("/partnerships/:id", m.Handler.Partnership)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/stats", m.Handler.Stats)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
