package repository

import (
	"context"
	"time"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

type PartnershipRepository interface {
	// Create returns ErrDuplicate when an active partnership already links the two projects.
	Create(ctx context.Context, p *entity.Partnership) error
	GetByID(ctx context.Context, id string) (*entity.Partnership, error)
	// FindActiveBetween looks in both directions; nil, nil when none exists.
	FindActiveBetween(ctx context.Context, projectA, projectB string) (*entity.Partnership, error)
	// Transition moves a PENDING partnership to status. It reports false when
	// the row was no longer PENDING, leaving it untouched.
	Transition(ctx context.Context, id string, status entity.PartnershipStatus, respondedAt time.Time, responseMessage string) (bool, error)
	ListSent(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error)
	ListReceived(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error)
	// ActiveCounterpartProjects returns the projects linked to projectID by a PENDING or ACCEPTED partnership.
	ActiveCounterpartProjects(ctx context.Context, projectID string) ([]string, error)
	CountAccepted(ctx context.Context, projectIDs []string) (map[string]int, error)
	Stats(ctx context.Context, userID string) (entity.PartnershipStats, error)
}
