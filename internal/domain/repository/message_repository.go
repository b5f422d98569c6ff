package repository

import (
	"context"
	"time"

	"github.com/synqit/synqit-backend/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	GetByID(ctx context.Context, id string) (*entity.Message, error)
	// ListByPartnership returns newest first.
	ListByPartnership(ctx context.Context, partnershipID string, limit, offset int) ([]entity.Message, int, error)
	MarkReadForReceiver(ctx context.Context, partnershipID, receiverID string, at time.Time) (int64, error)
	Search(ctx context.Context, userID, query string, limit int) ([]entity.Message, error)
	Conversations(ctx context.Context, userID string) ([]entity.Conversation, error)
	Stats(ctx context.Context, userID string) (entity.MessageStats, error)
	// SoftDelete replaces the content with a placeholder and flips the type to SYSTEM.
	SoftDelete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}
