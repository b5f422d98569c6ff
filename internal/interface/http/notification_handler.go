package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/response"
)

// NotificationAPI is the slice of *application.NotificationService used over HTTP.
type NotificationAPI interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationHandler struct {
	Base
	Svc NotificationAPI
}

func NewNotificationHandler(base Base, svc NotificationAPI) *NotificationHandler {
	return &NotificationHandler{Base: base, Svc: svc}
}

// List GET /api/notifications?unreadOnly=&page=&limit=
func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := pageQuery(c)
	unreadOnly := false
	if b := boolQuery(c, "unreadOnly"); b != nil {
		unreadOnly = *b
	}
	items, total, err := h.Svc.List(c.Request.Context(), middleware.UserID(c), unreadOnly, limit, (page-1)*limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toNotifications(items), "notifications", response.NewPagination(page, limit, total))
}

// UnreadCount GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.Svc.UnreadCount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": n}, "unread count", nil)
}

// MarkRead PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.Svc.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"read": true}, "notification marked as read", nil)
}

// MarkAllRead PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.Svc.MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n}, "notifications marked as read", nil)
}
