package application

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	InvalidateAllSessions(ctx context.Context, userID string) error
}

type ProfileService struct {
	Users    repo.UserRepository
	Projects repo.ProjectRepository
	Sessions SessionRevoker
	Images   ImageStore
	Index    ProjectIndexer
	Logger   *logrus.Logger
}

func NewProfileService(users repo.UserRepository, projects repo.ProjectRepository, sessions SessionRevoker, images ImageStore, index ProjectIndexer, logger *logrus.Logger) *ProfileService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &ProfileService{Users: users, Projects: projects, Sessions: sessions, Images: images, Index: index, Logger: logger}
}

// UpdateProfileInput lists the only fields a user may change on their
// profile. Nil means "leave unchanged".
type UpdateProfileInput struct {
	FirstName     *string
	LastName      *string
	Bio           *string
	WalletAddress *string
	Location      *string
	Website       *string
	LinkedInURL   *string
	TwitterHandle *string
	UserType      *entity.UserType
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found")
	}
	return u, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found")
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&u.FirstName, in.FirstName)
	set(&u.LastName, in.LastName)
	set(&u.Bio, in.Bio)
	set(&u.Location, in.Location)
	set(&u.Website, in.Website)
	set(&u.LinkedInURL, in.LinkedInURL)
	set(&u.TwitterHandle, in.TwitterHandle)
	if in.UserType != nil {
		u.UserType = *in.UserType
	}
	if in.WalletAddress != nil {
		if w := strings.TrimSpace(*in.WalletAddress); w == "" {
			u.WalletAddress = nil
		} else {
			u.WalletAddress = &w
		}
	}

	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("wallet address already registered")
		}
		return nil, translate(err, "user not found")
	}
	return u, nil
}

func (s *ProfileService) UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found")
	}
	url, err := uploadImage(ctx, s.Images, "avatars", userID, contentType, r)
	if err != nil {
		return nil, err
	}
	old := u.AvatarURL
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		discardImage(ctx, s.Images, s.Logger, url)
		return nil, translate(err, "user not found")
	}
	discardImage(ctx, s.Images, s.Logger, old)
	return u, nil
}

// DeleteAccount requires the current password and removes the user with
// everything that references it.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID, password string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return translate(err, "user not found")
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return apperror.BadRequest("password is incorrect")
	}

	project, err := s.Projects.GetByOwnerID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return apperror.Internal(err)
	}

	if s.Sessions != nil {
		if err := s.Sessions.InvalidateAllSessions(ctx, userID); err != nil {
			return err
		}
	}
	if err := s.Users.Delete(ctx, userID); err != nil {
		return translate(err, "user not found")
	}

	discardImage(ctx, s.Images, s.Logger, u.AvatarURL)
	if project != nil {
		discardImage(ctx, s.Images, s.Logger, project.LogoURL)
		if s.Index != nil {
			if err := s.Index.DeleteProject(ctx, project.ID); err != nil {
				s.Logger.WithError(err).WithField("project_id", project.ID).Warn("remove project from index failed")
			}
		}
	}
	s.Logger.WithField("user_id", userID).Info("account deleted")
	return nil
}
