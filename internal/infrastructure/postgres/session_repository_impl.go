package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/domain/repository"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.UserSession) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_sessions (id, user_id, token, ip_address, user_agent, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING created_at, last_used_at
	`, s.ID, s.UserID, s.Token, s.IPAddress, s.UserAgent, s.ExpiresAt)
	s.IsActive = true
	return mapErr(row.Scan(&s.CreatedAt, &s.LastUsedAt))
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entity.UserSession, error) {
	s := &entity.UserSession{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token, ip_address, user_agent, is_active, expires_at, created_at, last_used_at
		FROM user_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.Token, &s.IPAddress, &s.UserAgent, &s.IsActive, &s.ExpiresAt, &s.CreatedAt, &s.LastUsedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *SessionRepository) Extend(ctx context.Context, id, token string, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET token = $1, expires_at = $2, last_used_at = now()
		WHERE id = $3 AND is_active
	`, token, expiresAt, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE user_sessions SET is_active = FALSE WHERE id = $1`, id)
	return mapErr(err)
}

func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE user_sessions SET is_active = FALSE
		WHERE user_id = $1 AND is_active
		RETURNING id
	`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.pool.Exec(ctx, `UPDATE user_sessions SET is_active = FALSE WHERE is_active AND expires_at <= $1`, now)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected(), nil
}

var _ repository.SessionRepository = (*SessionRepository)(nil)
