package application

import (
	"errors"

	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/apperror"
)

var (
	errInvalidCredentials = apperror.Unauthorized("invalid email or password")
	errInvalidSession     = apperror.Unauthorized("session expired or invalid")
	errUnavailable        = apperror.New(503, "feature temporarily unavailable")
)

// translate maps repository errors onto domain errors. notFound is the
// message used when the row does not exist.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Internal(err)
}
