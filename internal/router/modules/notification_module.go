package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/synqit/synqit-backend/internal/interface/http"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Guard   Guard
}

func NewNotificationModule(h *handlers.NotificationHandler, guard Guard) *NotificationModule {
	return &NotificationModule{Handler: h, Guard: guard}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Protected(rg, "/notifications")
	{
		auth.GET("", m.Handler.List)
		auth.GET("/unread-count", m.Handler.UnreadCount)
		for _, method := range []string{"PUT", "POST"} {
			auth.Handle(method, "/read-all", m.Handler.MarkAllRead)
			auth.Handle(method, "/:id/read", m.Handler.MarkRead)
		}
	}
}
