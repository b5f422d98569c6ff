package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/application"
	"github.com/synqit/synqit-backend/internal/interface/middleware"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
	"github.com/synqit/synqit-backend/pkg/response"
	"github.com/synqit/synqit-backend/pkg/validation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1_000_000
)

// Base carries what every handler needs to report failures.
type Base struct {
	Logger *logrus.Logger
	// Debug adds the underlying error to 500 responses. Development only.
	Debug bool
}

func NewBase(logger *logrus.Logger, debug bool) Base {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return Base{Logger: logger, Debug: debug}
}

// fail writes err as the canonical error envelope. Domain errors keep their
// status and message; everything else is logged and reported as a 500.
func (b Base) fail(c *gin.Context, err error) {
	ae, ok := apperror.As(err)
	if ok && ae.Status < http.StatusInternalServerError {
		response.Error[any](c, ae.Status, ae.Message, nil)
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"
	if ok {
		status = ae.Status
		if status != http.StatusInternalServerError {
			msg = ae.Message
		}
	}
	b.Logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.CtxRequestIDKey),
		"path":       c.FullPath(),
		"user_id":    middleware.UserID(c),
	}).Error("request failed")

	var detail any
	if b.Debug {
		detail = err.Error()
	}
	response.Error[any](c, status, msg, detail)
}

// bindJSON decodes and validates the body, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be absent. An
// empty body leaves dst untouched whatever the framing.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
	return false
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return false
	}
	return true
}

// pageQuery reads page (1-based) and limit, clamping both.
func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// boolQuery returns nil when the parameter is absent or unparsable.
func boolQuery(c *gin.Context, key string) *bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func clientInfo(c *gin.Context) application.ClientInfo {
	return application.ClientInfo{IPAddress: middleware.ClientIP(c), UserAgent: c.Request.UserAgent()}
}
