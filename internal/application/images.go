package application

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/pkg/apperror"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the file extension for an accepted image type.
func ImageExtension(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := imageExtensions[ct]
	return ext, ok
}

func uploadImage(ctx context.Context, store ImageStore, folder, ownerID, contentType string, r io.Reader) (string, error) {
	if store == nil {
		return "", errUnavailable
	}
	ext, ok := ImageExtension(contentType)
	if !ok {
		return "", apperror.BadRequest("unsupported image type; use jpeg, png, webp or gif")
	}
	objectPath := path.Join(folder, ownerID, uuid.NewString()+ext)
	url, err := store.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", apperror.Wrap(502, "image upload failed", err)
	}
	return url, nil
}

// discardImage removes a superseded image. Failures are logged and never retried.
func discardImage(ctx context.Context, store ImageStore, logger *logrus.Logger, url string) {
	if store == nil || url == "" {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		logger.WithError(err).WithField("url", url).Warn("delete superseded image failed")
	}
}
