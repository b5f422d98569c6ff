package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	"github.com/synqit/synqit-backend/internal/domain/repository"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, partnership_id, sender_id, receiver_id, content, message_type, is_read, read_at, created_at, updated_at`

func scanMessage(row pgx.Row) (*entity.Message, error) {
	m := &entity.Message{}
	if err := row.Scan(&m.ID, &m.PartnershipID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType,
		&m.IsRead, &m.ReadAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func collectMessages(rows pgx.Rows) ([]entity.Message, error) {
	defer rows.Close()
	out := []entity.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (partnership_id, sender_id, receiver_id, content, message_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at, updated_at
	`, m.PartnershipID, m.SenderID, m.ReceiverID, m.Content, m.MessageType)
	return mapErr(row.Scan(&m.ID, &m.IsRead, &m.CreatedAt, &m.UpdatedAt))
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
}

func (r *MessageRepository) ListByPartnership(ctx context.Context, partnershipID string, limit, offset int) ([]entity.Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM messages WHERE partnership_id = $1`, partnershipID).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE partnership_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, partnershipID, limit, offset)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	items, err := collectMessages(rows)
	return items, total, err
}

func (r *MessageRepository) MarkReadForReceiver(ctx context.Context, partnershipID, receiverID string, at time.Time) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = $1
		WHERE partnership_id = $2 AND receiver_id = $3 AND NOT is_read
	`, at, partnershipID, receiverID)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected(), nil
}

func (r *MessageRepository) Search(ctx context.Context, userID, query string, limit int) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE (sender_id = $1 OR receiver_id = $1)
		  AND message_type <> 'SYSTEM'
		  AND content ILIKE $2 ESCAPE '\'
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, containsPattern(query), limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectMessages(rows)
}

// Conversations lists every accepted partnership of userID with the latest
// message and the unread count, most recently active first.
func (r *MessageRepository) Conversations(ctx context.Context, userID string) ([]entity.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id,
		       cu.id, trim(cu.first_name || ' ' || cu.last_name),
		       cp.id, cp.name,
		       lm.content, lm.created_at,
		       (SELECT count(*) FROM messages um
		         WHERE um.partnership_id = p.id AND um.receiver_id = $1 AND NOT um.is_read)
		FROM partnerships p
		JOIN users cu ON cu.id = CASE WHEN p.requester_id = $1 THEN p.receiver_id ELSE p.requester_id END
		JOIN projects cp ON cp.id = CASE WHEN p.requester_id = $1 THEN p.receiver_project_id ELSE p.requester_project_id END
		LEFT JOIN LATERAL (
			SELECT content, created_at FROM messages
			WHERE partnership_id = p.id ORDER BY created_at DESC LIMIT 1
		) lm ON TRUE
		WHERE p.status = 'ACCEPTED' AND (p.requester_id = $1 OR p.receiver_id = $1)
		ORDER BY COALESCE(lm.created_at, p.updated_at) DESC
	`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []entity.Conversation{}
	for rows.Next() {
		var c entity.Conversation
		var last *string
		if err := rows.Scan(&c.PartnershipID, &c.CounterpartID, &c.CounterpartName,
			&c.CounterpartProjectID, &c.CounterpartProject, &last, &c.LastMessageAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		if last != nil {
			c.LastMessage = *last
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *MessageRepository) Stats(ctx context.Context, userID string) (entity.MessageStats, error) {
	var s entity.MessageStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE sender_id = $1),
			count(*) FILTER (WHERE receiver_id = $1),
			count(*) FILTER (WHERE receiver_id = $1 AND NOT is_read)
		FROM messages
		WHERE (sender_id = $1 OR receiver_id = $1) AND message_type <> 'SYSTEM'
	`, userID).Scan(&s.Sent, &s.Received, &s.Unread)
	return s, mapErr(err)
}

func (r *MessageRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE messages SET content = $1, message_type = 'SYSTEM', updated_at = now() WHERE id = $2
	`, entity.DeletedMessagePlaceholder, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
