package repository

import (
	"context"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

// ProjectRepository stores projects together with their child collections.
// Create and Update replace blockchains and tags inside the same transaction.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	Update(ctx context.Context, p *entity.Project) error
	ReplaceBlockchainPreferences(ctx context.Context, projectID string, prefs []entity.BlockchainPreference) error
	UpdateLogo(ctx context.Context, projectID, url string) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*entity.Project, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Project, error)
	List(ctx context.Context, f entity.ProjectFilter) ([]entity.Project, int, error)
	IncrementViewCount(ctx context.Context, id string) error
}
