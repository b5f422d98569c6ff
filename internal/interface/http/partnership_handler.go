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

// PartnershipAPI is the slice of *application.PartnershipService used over HTTP.
type PartnershipAPI interface {
	CreatePartnershipRequest(ctx context.Context, userID string, in application.CreatePartnershipInput) (*entity.Partnership, error)
	AcceptPartnership(ctx context.Context, userID, id string) (*entity.Partnership, error)
	RejectPartnership(ctx context.Context, userID, id, message string) (*entity.Partnership, error)
	CancelPartnership(ctx context.Context, userID, id string) (*entity.Partnership, error)
	GetPartnership(ctx context.Context, userID, id string) (*entity.Partnership, error)
	GetSentRequests(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error)
	GetReceivedRequests(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error)
	GetStats(ctx context.Context, userID string) (entity.PartnershipStats, error)
	GetRecommendedMatches(ctx context.Context, userID string, limit int, excludeExisting bool) ([]application.Recommendation, error)
}

type PartnershipHandler struct {
	Base
	Svc PartnershipAPI
}

func NewPartnershipHandler(base Base, svc PartnershipAPI) *PartnershipHandler {
	return &PartnershipHandler{Base: base, Svc: svc}
}

type partnershipRequest struct {
	ReceiverProjectID string `json:"receiverProjectId" binding:"required"`
	PartnershipType   string `json:"partnershipType" binding:"required,partnershiptype"`
	Title             string `json:"title" binding:"max=200"`
	Description       string `json:"description" binding:"max=5000"`
	ProposedTerms     string `json:"proposedTerms" binding:"max=5000"`
}

type rejectRequest struct {
	ResponseMessage string `json:"responseMessage" binding:"max=2000"`
}

type statusQuery struct {
	Status string `form:"status" binding:"omitempty,partnershipstatus"`
}

// Request POST /api/matches/request
func (h *PartnershipHandler) Request(c *gin.Context) {
	var req partnershipRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.CreatePartnershipRequest(c.Request.Context(), middleware.UserID(c), application.CreatePartnershipInput{
		ReceiverProjectID: req.ReceiverProjectID,
		PartnershipType:   entity.PartnershipType(req.PartnershipType),
		Title:             req.Title,
		Description:       req.Description,
		ProposedTerms:     req.ProposedTerms,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toPartnership(p), "partnership request sent", nil)
}

// Accept POST /api/matches/:id/accept
func (h *PartnershipHandler) Accept(c *gin.Context) {
	p, err := h.Svc.AcceptPartnership(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPartnership(p), "partnership accepted", nil)
}

// Reject POST /api/matches/:id/reject {responseMessage?}
func (h *PartnershipHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	p, err := h.Svc.RejectPartnership(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.ResponseMessage)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPartnership(p), "partnership rejected", nil)
}

// Cancel POST /api/matches/:id/cancel
func (h *PartnershipHandler) Cancel(c *gin.Context) {
	p, err := h.Svc.CancelPartnership(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPartnership(p), "partnership request cancelled", nil)
}

// Get GET /api/matches/:id
func (h *PartnershipHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetPartnership(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPartnership(p), "partnership", nil)
}

// Sent GET /api/matches/sent?status=
func (h *PartnershipHandler) Sent(c *gin.Context) {
	var q statusQuery
	if !bindQuery(c, &q) {
		return
	}
	items, err := h.Svc.GetSentRequests(c.Request.Context(), middleware.UserID(c), entity.PartnershipStatus(q.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPartnerships(items), "sent requests", nil)
}

// Received GET /api/matches/received?status=
func (h *PartnershipHandler) Received(c *gin.Context) {
	var q statusQuery
	if !bindQuery(c, &q) {
		return
	}
	items, err := h.Svc.GetReceivedRequests(c.Request.Context(), middleware.UserID(c), entity.PartnershipStatus(q.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPartnerships(items), "received requests", nil)
}

// Stats GET /api/matches/stats
func (h *PartnershipHandler) Stats(c *gin.Context) {
	st, err := h.Svc.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "partnership stats", nil)
}

// Recommendations GET /api/matches/recommendations?limit=&excludeExisting=
func (h *PartnershipHandler) Recommendations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	exclude := true
	if b := boolQuery(c, "excludeExisting"); b != nil {
		exclude = *b
	}
	recs, err := h.Svc.GetRecommendedMatches(c.Request.Context(), middleware.UserID(c), limit, exclude)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toRecommendations(recs), "recommended matches", nil)
}
