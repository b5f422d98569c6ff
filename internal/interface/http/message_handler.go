package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/response"
)

// MessageAPI is the slice of *application.MessageService used over HTTP.
type MessageAPI interface {
	SendMessage(ctx context.Context, userID string, in application.SendMessageInput) (*entity.Message, error)
	GetPartnershipMessages(ctx context.Context, userID, partnershipID string, limit, offset int) ([]entity.Message, int, error)
	GetConversations(ctx context.Context, userID string) ([]entity.Conversation, error)
	SearchMessages(ctx context.Context, userID, q string, limit int) ([]entity.Message, error)
	GetStats(ctx context.Context, userID string) (entity.MessageStats, error)
	DeleteMessage(ctx context.Context, userID, id string) error
}

type MessageHandler struct {
	Base
	Svc MessageAPI
}

func NewMessageHandler(base Base, svc MessageAPI) *MessageHandler {
	return &MessageHandler{Base: base, Svc: svc}
}

type sendMessageRequest struct {
	PartnershipID string `json:"partnershipId" binding:"required"`
	Content       string `json:"content" binding:"required,max=20000"`
	MessageType   string `json:"messageType" binding:"omitempty,messagetype"`
}

// Send POST /api/messages/send
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Svc.SendMessage(c.Request.Context(), middleware.UserID(c), application.SendMessageInput{
		PartnershipID: req.PartnershipID,
		Content:       req.Content,
		MessageType:   entity.MessageType(req.MessageType),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toMessage(m), "message sent", nil)
}

// Conversations GET /api/messages/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	items, err := h.Svc.GetConversations(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []entity.Conversation{}
	}
	response.Success(c, http.StatusOK, items, "conversations", nil)
}

// Partnership GET /api/messages/partnerships/:id?page=&limit=
func (h *MessageHandler) Partnership(c *gin.Context) {
	page, limit := pageQuery(c)
	items, total, err := h.Svc.GetPartnershipMessages(c.Request.Context(), middleware.UserID(c), c.Param("id"), limit, (page-1)*limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toMessages(items), "messages", response.NewPagination(page, limit, total))
}

// Search GET /api/messages/search?q=&limit=
func (h *MessageHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Svc.SearchMessages(c.Request.Context(), middleware.UserID(c), c.Query("q"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toMessages(items), "search results", nil)
}

// Stats GET /api/messages/stats
func (h *MessageHandler) Stats(c *gin.Context) {
	st, err := h.Svc.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "message stats", nil)
}

// Delete DELETE /api/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteMessage(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "message deleted", nil)
}
