package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/helpers"
	"github.com/synqit/synqit-backend/pkg/response"
)

// ProfileAPI is the slice of *application.ProfileService used over HTTP.
type ProfileAPI interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, in application.UpdateProfileInput) (*entity.User, error)
	UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID, password string) error
}

type ProfileHandler struct {
	Base
	Svc            ProfileAPI
	Cookies        *helpers.CookieJar
	UploadMaxBytes int64
}

func NewProfileHandler(base Base, svc ProfileAPI, cookies *helpers.CookieJar, uploadMaxBytes int64) *ProfileHandler {
	return &ProfileHandler{Base: base, Svc: svc, Cookies: cookies, UploadMaxBytes: uploadMaxBytes}
}

// Unknown JSON fields are dropped by the decoder, so only these can change.
type updateProfileRequest struct {
	FirstName     *string `json:"firstName" binding:"omitempty,max=100"`
	LastName      *string `json:"lastName" binding:"omitempty,max=100"`
	Bio           *string `json:"bio" binding:"omitempty,max=2000"`
	WalletAddress *string `json:"walletAddress" binding:"omitempty,max=128"`
	Location      *string `json:"location" binding:"omitempty,max=200"`
	Website       *string `json:"website" binding:"omitempty,max=255"`
	LinkedInURL   *string `json:"linkedinUrl" binding:"omitempty,max=255"`
	TwitterHandle *string `json:"twitterHandle" binding:"omitempty,max=100"`
	UserType      *string `json:"userType" binding:"omitempty,usertype"`
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// Get GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

// Update PUT /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	in := application.UpdateProfileInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Bio:           req.Bio,
		WalletAddress: req.WalletAddress,
		Location:      req.Location,
		Website:       req.Website,
		LinkedInURL:   req.LinkedInURL,
		TwitterHandle: req.TwitterHandle,
	}
	if req.UserType != nil {
		t := entity.UserType(*req.UserType)
		in.UserType = &t
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart field "avatar")
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	f, contentType, ok := imageUpload(c, "avatar", h.UploadMaxBytes)
	if !ok {
		return
	}
	defer f.Close()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), middleware.UserID(c), contentType, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "avatar updated", nil)
}

// Delete DELETE /api/profile {password}
func (h *ProfileHandler) Delete(c *gin.Context) {
	var req deleteAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.DeleteAccount(c.Request.Context(), middleware.UserID(c), req.Password); err != nil {
		h.fail(c, err)
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}
