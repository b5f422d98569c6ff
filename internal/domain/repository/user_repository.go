package repository

import (
	"context"
	"time"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByWalletAddress(ctx context.Context, address string) (*entity.User, error)
	// Update writes profile fields only.
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	// RecordLoginFailure atomically bumps the failure streak (restarting it
	// when a previous lock has expired by now) and opens a lock of lockFor once
	// the streak reaches maxAttempts. It returns the stored streak and lock.
	RecordLoginFailure(ctx context.Context, id string, now time.Time, maxAttempts int, lockFor time.Duration) (int, *time.Time, error)
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
	SetVerified(ctx context.Context, id string) error
	// Delete removes the user and everything that references it in one transaction.
	Delete(ctx context.Context, id string) error
}

// SessionRepository persists the revocable sessions behind issued tokens.
type SessionRepository interface {
	Create(ctx context.Context, s *entity.UserSession) error
	GetByID(ctx context.Context, id string) (*entity.UserSession, error)
	Extend(ctx context.Context, id, token string, expiresAt time.Time) error
	Deactivate(ctx context.Context, id string) error
	// DeactivateAllForUser returns the ids of sessions it deactivated.
	DeactivateAllForUser(ctx context.Context, userID string) ([]string, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
