package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
	"github.com/synqit/synqit-backend/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxPrincipalKey = "principal"
)

// Authenticator resolves an access token to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*application.Principal, error)
}

// Auth requires a valid access token backed by an active session. The token
// is read from the Authorization header, falling back to the access_token
// cookie. On success the principal and user id are stored in the context.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		p, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apperror.StatusOf(err)
			msg := "internal server error"
			if ae, ok := apperror.As(err); ok && status < http.StatusInternalServerError {
				msg = ae.Message
			}
			response.Abort(c, status, msg, nil)
			return
		}
		c.Set(CtxPrincipalKey, p)
		c.Set(CtxUserIDKey, p.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if tok, err := c.Cookie(helpers.AccessCookieName); err == nil {
		return tok
	}
	return ""
}

// PrincipalFrom returns the principal stored by Auth.
func PrincipalFrom(c *gin.Context) (*application.Principal, bool) {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*application.Principal)
	return p, ok && p != nil
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
