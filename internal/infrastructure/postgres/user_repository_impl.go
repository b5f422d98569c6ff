package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, bio, avatar_url, wallet_address,
	location, website, linkedin_url, twitter_handle, user_type, subscription_tier, is_verified,
	failed_login_attempts, locked_until, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Bio, &u.AvatarURL, &u.WalletAddress,
		&u.Location, &u.Website, &u.LinkedInURL, &u.TwitterHandle, &u.UserType, &u.SubscriptionTier, &u.IsVerified,
		&u.FailedLoginAttempts, &u.LockedUntil, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, wallet_address, user_type, subscription_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.FirstName, u.LastName, u.WalletAddress, u.UserType, u.SubscriptionTier)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *UserRepository) GetByWalletAddress(ctx context.Context, address string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(wallet_address) = lower($1)`, address))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, bio = $3, avatar_url = $4, wallet_address = $5,
		    location = $6, website = $7, linkedin_url = $8, twitter_handle = $9, user_type = $10,
		    updated_at = $11
		WHERE id = $12
	`, u.FirstName, u.LastName, u.Bio, u.AvatarURL, u.WalletAddress,
		u.Location, u.Website, u.LinkedInURL, u.TwitterHandle, u.UserType,
		u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec1(ctx, `
		UPDATE users SET password_hash = $1, failed_login_attempts = 0, locked_until = NULL, updated_at = now()
		WHERE id = $2
	`, hash, id)
}

// The SET expressions only read the row being updated, so concurrent
// failures serialize on the row lock and each one sees the previous count.
const recordLoginFailureSQL = `
	UPDATE users SET
		failed_login_attempts = CASE
			WHEN locked_until IS NOT NULL AND locked_until <= $2::timestamptz THEN 1
			ELSE failed_login_attempts + 1
		END,
		locked_until = CASE
			WHEN locked_until > $2::timestamptz THEN locked_until
			WHEN (CASE
				WHEN locked_until IS NOT NULL AND locked_until <= $2::timestamptz THEN 1
				ELSE failed_login_attempts + 1
			END) >= $3::int THEN $4::timestamptz
			ELSE NULL
		END
	WHERE id = $1
	RETURNING failed_login_attempts, locked_until
`

func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, now time.Time, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	var (
		attempts    int
		lockedUntil *time.Time
	)
	err := r.pool.QueryRow(ctx, recordLoginFailureSQL, id, now, maxAttempts, now.Add(lockFor)).Scan(&attempts, &lockedUntil)
	if err != nil {
		return 0, nil, mapErr(err)
	}
	return attempts, lockedUntil, nil
}

func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return r.exec1(ctx, `
		UPDATE users SET failed_login_attempts = 0, locked_until = NULL, last_login_at = $1 WHERE id = $2
	`, at, id)
}

func (r *UserRepository) SetVerified(ctx context.Context, id string) error {
	return r.exec1(ctx, `UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1`, id)
}

// Delete removes the account and its dependent rows explicitly so the
// cascade does not depend on FK options of older schemas.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		stmts := []string{
			`DELETE FROM messages WHERE sender_id = $1 OR receiver_id = $1`,
			`DELETE FROM notifications WHERE user_id = $1`,
			`DELETE FROM partnerships WHERE requester_id = $1 OR receiver_id = $1`,
			`DELETE FROM blockchain_preferences WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`,
			`DELETE FROM project_tags WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`,
			`DELETE FROM projects WHERE owner_id = $1`,
			`DELETE FROM user_sessions WHERE user_id = $1`,
		}
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s, id); err != nil {
				return mapErr(err)
			}
		}
		res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return mapErr(err)
		}
		if res.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *UserRepository) exec1(ctx context.Context, sql string, args ...any) error {
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
