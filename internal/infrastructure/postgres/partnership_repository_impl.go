package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/domain/repository"
)

type PartnershipRepository struct {
	pool *pgxpool.Pool
}

func NewPartnershipRepository(pool *pgxpool.Pool) *PartnershipRepository {
	return &PartnershipRepository{pool: pool}
}

const partnershipSelect = `
	SELECT m.id, m.requester_id, m.requester_project_id, m.receiver_id, m.receiver_project_id,
	       m.partnership_type, m.title, m.description, m.proposed_terms, m.response_message,
	       m.status, m.responded_at, m.created_at, m.updated_at, rp.name, cp.name
	FROM partnerships m
	JOIN projects rp ON rp.id = m.requester_project_id
	JOIN projects cp ON cp.id = m.receiver_project_id`

func scanPartnership(row pgx.Row) (*entity.Partnership, error) {
	p := &entity.Partnership{}
	if err := row.Scan(&p.ID, &p.RequesterID, &p.RequesterProjectID, &p.ReceiverID, &p.ReceiverProjectID,
		&p.PartnershipType, &p.Title, &p.Description, &p.ProposedTerms, &p.ResponseMessage,
		&p.Status, &p.RespondedAt, &p.CreatedAt, &p.UpdatedAt, &p.RequesterProjectName, &p.ReceiverProjectName); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *PartnershipRepository) Create(ctx context.Context, p *entity.Partnership) error {
	p.Status = entity.PartnershipPending
	row := r.pool.QueryRow(ctx, `
		INSERT INTO partnerships (requester_id, requester_project_id, receiver_id, receiver_project_id,
			partnership_type, title, description, proposed_terms, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, p.RequesterID, p.RequesterProjectID, p.ReceiverID, p.ReceiverProjectID,
		p.PartnershipType, p.Title, p.Description, p.ProposedTerms, p.Status)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *PartnershipRepository) GetByID(ctx context.Context, id string) (*entity.Partnership, error) {
	return scanPartnership(r.pool.QueryRow(ctx, partnershipSelect+` WHERE m.id = $1`, id))
}

func (r *PartnershipRepository) FindActiveBetween(ctx context.Context, projectA, projectB string) (*entity.Partnership, error) {
	p, err := scanPartnership(r.pool.QueryRow(ctx, partnershipSelect+`
		WHERE m.status IN ('PENDING', 'ACCEPTED')
		  AND ((m.requester_project_id = $1 AND m.receiver_project_id = $2)
		    OR (m.requester_project_id = $2 AND m.receiver_project_id = $1))
		LIMIT 1
	`, projectA, projectB))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Transition only touches rows that are still PENDING, so two racing
// responders cannot both succeed.
func (r *PartnershipRepository) Transition(ctx context.Context, id string, status entity.PartnershipStatus, respondedAt time.Time, responseMessage string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE partnerships
		SET status = $1, responded_at = $2, response_message = $3, updated_at = $2
		WHERE id = $4 AND status = 'PENDING'
	`, status, respondedAt, responseMessage, id)
	if err != nil {
		return false, mapErr(err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *PartnershipRepository) ListSent(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	return r.list(ctx, `m.requester_id = $1`, userID, status)
}

func (r *PartnershipRepository) ListReceived(ctx context.Context, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	return r.list(ctx, `m.receiver_id = $1`, userID, status)
}

func (r *PartnershipRepository) list(ctx context.Context, cond, userID string, status entity.PartnershipStatus) ([]entity.Partnership, error) {
	sql := partnershipSelect + ` WHERE ` + cond
	args := []any{userID}
	if status != "" {
		sql += ` AND m.status = $2`
		args = append(args, status)
	}
	sql += ` ORDER BY m.created_at DESC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []entity.Partnership{}
	for rows.Next() {
		p, err := scanPartnership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PartnershipRepository) ActiveCounterpartProjects(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT CASE WHEN requester_project_id = $1 THEN receiver_project_id ELSE requester_project_id END
		FROM partnerships
		WHERE status IN ('PENDING', 'ACCEPTED')
		  AND (requester_project_id = $1 OR receiver_project_id = $1)
	`, projectID)
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

// CountAccepted counts accepted partnerships per project, in either role.
func (r *PartnershipRepository) CountAccepted(ctx context.Context, projectIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT pid, count(*) FROM (
			SELECT requester_project_id AS pid FROM partnerships WHERE status = 'ACCEPTED'
			UNION ALL
			SELECT receiver_project_id FROM partnerships WHERE status = 'ACCEPTED'
		) t
		WHERE pid = ANY($1::uuid[])
		GROUP BY pid
	`, projectIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *PartnershipRepository) Stats(ctx context.Context, userID string) (entity.PartnershipStats, error) {
	var s entity.PartnershipStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE requester_id = $1),
			count(*) FILTER (WHERE receiver_id = $1),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'ACCEPTED'),
			count(*) FILTER (WHERE status = 'REJECTED'),
			count(*) FILTER (WHERE status = 'CANCELLED')
		FROM partnerships
		WHERE requester_id = $1 OR receiver_id = $1
	`, userID).Scan(&s.TotalSent, &s.TotalReceived, &s.Pending, &s.Accepted, &s.Rejected, &s.Cancelled)
	return s, mapErr(err)
}

var _ repository.PartnershipRepository = (*PartnershipRepository)(nil)
