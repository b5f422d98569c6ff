package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synqit/synqit-backend/pkg/response"
)

// imageUpload limits the request body to max bytes and opens the named
// multipart file. On failure it has already written a 400 or 413.
func imageUpload(c *gin.Context, field string, max int64) (io.ReadCloser, string, bool) {
	if max > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
	}
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "file is too large", nil)
			return nil, "", false
		}
		response.Error[any](c, http.StatusBadRequest, "missing file field \""+field+"\"", nil)
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read uploaded file", nil)
		return nil, "", false
	}
	return f, contentTypeOf(fh), true
}

func contentTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return ""
}
