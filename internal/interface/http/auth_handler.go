package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/helpers"
	"github.com/synqit/synqit-backend/pkg/response"
)

// AuthAPI is the slice of *application.AuthService used over HTTP.
type AuthAPI interface {
	Register(ctx context.Context, in application.RegisterInput, client application.ClientInfo) (*application.AuthResult, error)
	Login(ctx context.Context, email, password string, client application.ClientInfo) (*application.AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, refreshToken string) (*application.AuthResult, error)
	VerifyEmail(ctx context.Context, userID, code string) error
	ResendVerification(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// ProfileReader loads the caller's own user record.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
}

type AuthHandler struct {
	Base
	Svc      AuthAPI
	Profiles ProfileReader
	Cookies  *helpers.CookieJar
}

func NewAuthHandler(base Base, svc AuthAPI, profiles ProfileReader, cookies *helpers.CookieJar) *AuthHandler {
	return &AuthHandler{Base: base, Svc: svc, Profiles: profiles, Cookies: cookies}
}

type registerRequest struct {
	Email         string `json:"email" binding:"required,email,max=255"`
	Password      string `json:"password" binding:"required,strongpwd"`
	FirstName     string `json:"firstName" binding:"max=100"`
	LastName      string `json:"lastName" binding:"max=100"`
	UserType      string `json:"userType" binding:"omitempty,usertype"`
	WalletAddress string `json:"walletAddress" binding:"max=128"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type verifyEmailRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,strongpwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,strongpwd"`
}

func (h *AuthHandler) setCookies(c *gin.Context, res *application.AuthResult) {
	if h.Cookies == nil {
		return
	}
	h.Cookies.SetTokens(c, res.Tokens.AccessToken, res.Tokens.AccessTokenExpiry, res.Tokens.RefreshToken, res.Tokens.RefreshTokenExpiry)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		UserType:      entity.UserType(req.UserType),
		WalletAddress: req.WalletAddress,
	}, clientInfo(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setCookies(c, res)
	response.Success(c, http.StatusCreated, toAuth(res), "registration successful", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setCookies(c, res)
	response.Success(c, http.StatusOK, toAuth(res), "login successful", nil)
}

// Refresh POST /api/auth/refresh. The token comes from the body or the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie(helpers.RefreshCookieName)
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	res, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setCookies(c, res)
	response.Success(c, http.StatusOK, toAuth(res), "token refreshed", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), p.SessionID); err != nil {
		h.fail(c, err)
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, gin.H{"loggedOut": true}, "logged out", nil)
}

// Profile GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.Profiles.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

// VerifyEmail POST /api/auth/verify-email {code}
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), middleware.UserID(c), req.Code); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

// ResendVerification POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	if err := h.Svc.ResendVerification(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "verification code sent", nil)
}

// ForgotPassword POST /api/auth/forgot-password {email}
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if the email is registered, a reset link has been sent", nil)
}

// ResetPassword POST /api/auth/reset-password {token, newPassword}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// ChangePassword POST /api/auth/change-password. Every session ends, this one included.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed, please sign in again", nil)
}
