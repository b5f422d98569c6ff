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

const (
	maxTags      = 20
	maxTagLength = 64
)

type ProjectService struct {
	Projects repo.ProjectRepository
	Images   ImageStore
	Index    ProjectIndexer
	Cache    Cache
	Logger   *logrus.Logger
}

func NewProjectService(projects repo.ProjectRepository, images ImageStore, index ProjectIndexer, cache Cache, logger *logrus.Logger) *ProjectService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &ProjectService{Projects: projects, Images: images, Index: index, Cache: cache, Logger: logger}
}

// ProjectInput is the allow-listed set of writable project fields. Nil
// scalars and nil collections are left unchanged on update; a non-nil
// collection replaces the stored one entirely.
type ProjectInput struct {
	Name                 *string
	Description          *string
	Website              *string
	ProjectType          *entity.ProjectType
	ProjectStage         *entity.ProjectStage
	FundingStage         *entity.FundingStage
	TeamSize             *entity.TeamSize
	TokenAvailability    *entity.TokenAvailability
	DevelopmentFocus     *string
	IsLookingForFunding  *bool
	IsLookingForPartners *bool
	Blockchains          []entity.BlockchainPreference
	Tags                 []string
}

func (s *ProjectService) GetMyProject(ctx context.Context, ownerID string) (*entity.Project, error) {
	p, err := s.Projects.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "you have not created a project yet")
	}
	return p, nil
}

// CreateProject fails with 409 when the owner already has a project; the
// unique owner index settles concurrent first writes.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, in ProjectInput) (*entity.Project, error) {
	p := &entity.Project{
		OwnerID:              ownerID,
		ProjectType:          entity.ProjectTypeOther,
		IsLookingForPartners: true,
	}
	if err := applyProjectInput(p, in); err != nil {
		return nil, err
	}
	if p.Name == "" || p.Description == "" {
		return nil, apperror.BadRequest("project name and description are required")
	}

	if err := s.Projects.Create(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("you already have a project")
		}
		return nil, apperror.Internal(err)
	}
	s.Logger.WithFields(logrus.Fields{"project_id": p.ID, "owner_id": ownerID}).Info("project created")
	return s.afterWrite(ctx, p.ID)
}

func (s *ProjectService) UpdateProject(ctx context.Context, ownerID string, in ProjectInput) (*entity.Project, error) {
	p, err := s.Projects.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "you have not created a project yet")
	}
	if err := applyProjectInput(p, in); err != nil {
		return nil, err
	}
	if p.Name == "" || p.Description == "" {
		return nil, apperror.BadRequest("project name and description are required")
	}
	if err := s.Projects.Update(ctx, p); err != nil {
		return nil, translate(err, "project not found")
	}
	return s.afterWrite(ctx, p.ID)
}

// UpsertProject creates the caller's project or updates the existing one.
// A create that loses a race against a concurrent create retries as update.
func (s *ProjectService) UpsertProject(ctx context.Context, ownerID string, in ProjectInput) (*entity.Project, bool, error) {
	_, err := s.Projects.GetByOwnerID(ctx, ownerID)
	switch {
	case err == nil:
		p, err := s.UpdateProject(ctx, ownerID, in)
		return p, false, err
	case !errors.Is(err, repo.ErrNotFound):
		return nil, false, apperror.Internal(err)
	}

	p, err := s.CreateProject(ctx, ownerID, in)
	if ae, ok := apperror.As(err); ok && ae.Status == 409 {
		p, err = s.UpdateProject(ctx, ownerID, in)
		return p, false, err
	}
	return p, err == nil, err
}

func (s *ProjectService) UpdateBlockchainPreferences(ctx context.Context, ownerID string, prefs []entity.BlockchainPreference) (*entity.Project, error) {
	p, err := s.Projects.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "you have not created a project yet")
	}
	if err := s.Projects.ReplaceBlockchainPreferences(ctx, p.ID, normalizeBlockchains(prefs)); err != nil {
		return nil, translate(err, "project not found")
	}
	return s.afterWrite(ctx, p.ID)
}

func (s *ProjectService) UploadLogo(ctx context.Context, ownerID, contentType string, r io.Reader) (*entity.Project, error) {
	p, err := s.Projects.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "you have not created a project yet")
	}
	url, err := uploadImage(ctx, s.Images, "logos", p.ID, contentType, r)
	if err != nil {
		return nil, err
	}
	if err := s.Projects.UpdateLogo(ctx, p.ID, url); err != nil {
		discardImage(ctx, s.Images, s.Logger, url)
		return nil, translate(err, "project not found")
	}
	discardImage(ctx, s.Images, s.Logger, p.LogoURL)
	p.LogoURL = url
	return p, nil
}

// GetProject counts a view unless the viewer owns the project.
func (s *ProjectService) GetProject(ctx context.Context, viewerID, id string) (*entity.Project, error) {
	p, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "project not found")
	}
	if viewerID != p.OwnerID {
		if err := s.Projects.IncrementViewCount(ctx, id); err != nil {
			s.Logger.WithError(err).WithField("project_id", id).Warn("increment view count failed")
		} else {
			p.ViewCount++
		}
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, f entity.ProjectFilter) ([]entity.Project, int, error) {
	items, total, err := s.Projects.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// SearchProjects prefers the search index and falls back to a database
// substring search when the index is missing or failing.
func (s *ProjectService) SearchProjects(ctx context.Context, viewerID, q string, limit int) ([]entity.Project, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.BadRequest("search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if s.Index != nil {
		ids, err := s.Index.SearchProjects(ctx, q, viewerID, limit)
		if err == nil {
			found, err := s.Projects.GetByIDs(ctx, ids)
			if err != nil {
				return nil, apperror.Internal(err)
			}
			return orderByIDs(found, ids), nil
		}
		s.Logger.WithError(err).Warn("project search index failed; falling back to database")
	}

	items, _, err := s.Projects.List(ctx, entity.ProjectFilter{Search: q, ExcludeOwnerID: viewerID, Limit: limit})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *ProjectService) afterWrite(ctx context.Context, id string) (*entity.Project, error) {
	p, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "project not found")
	}
	if s.Index != nil {
		if err := s.Index.IndexProject(ctx, p); err != nil {
			s.Logger.WithError(err).WithField("project_id", p.ID).Warn("index project failed")
		}
	}
	if s.Cache != nil {
		// any project change can move every user's recommendations
		if err := s.Cache.DelPrefix(ctx, recommendationKeyspace); err != nil {
			s.Logger.WithError(err).Warn("invalidate recommendations failed")
		}
	}
	return p, nil
}

func applyProjectInput(p *entity.Project, in ProjectInput) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Website != nil {
		p.Website = strings.TrimSpace(*in.Website)
	}
	if in.ProjectType != nil {
		p.ProjectType = *in.ProjectType
	}
	if in.ProjectStage != nil {
		p.ProjectStage = *in.ProjectStage
	}
	if in.FundingStage != nil {
		p.FundingStage = *in.FundingStage
	}
	if in.TeamSize != nil {
		p.TeamSize = *in.TeamSize
	}
	if in.TokenAvailability != nil {
		p.TokenAvailability = *in.TokenAvailability
	}
	if in.DevelopmentFocus != nil {
		p.DevelopmentFocus = strings.TrimSpace(*in.DevelopmentFocus)
	}
	if in.IsLookingForFunding != nil {
		p.IsLookingForFunding = *in.IsLookingForFunding
	}
	if in.IsLookingForPartners != nil {
		p.IsLookingForPartners = *in.IsLookingForPartners
	}
	if in.Blockchains != nil {
		p.Blockchains = normalizeBlockchains(in.Blockchains)
	}
	if in.Tags != nil {
		tags, err := normalizeTags(in.Tags)
		if err != nil {
			return err
		}
		p.Tags = tags
	}
	return nil
}

// normalizeTags trims, drops blanks and removes case-insensitive duplicates,
// keeping the first spelling.
func normalizeTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if len(t) > maxTagLength {
			return nil, apperror.BadRequest("tags must be at most 64 characters")
		}
		k := strings.ToLower(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, apperror.BadRequest("a project can have at most 20 tags")
	}
	return out, nil
}

// normalizeBlockchains keeps one entry per chain and at most one primary.
func normalizeBlockchains(in []entity.BlockchainPreference) []entity.BlockchainPreference {
	out := make([]entity.BlockchainPreference, 0, len(in))
	seen := make(map[entity.Blockchain]struct{}, len(in))
	primary := false
	for _, bp := range in {
		if _, dup := seen[bp.Blockchain]; dup {
			continue
		}
		seen[bp.Blockchain] = struct{}{}
		if bp.IsPrimary {
			if primary {
				bp.IsPrimary = false
			}
			primary = true
		}
		out = append(out, bp)
	}
	return out
}

func orderByIDs(items []entity.Project, ids []string) []entity.Project {
	byID := make(map[string]entity.Project, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	out := make([]entity.Project, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
