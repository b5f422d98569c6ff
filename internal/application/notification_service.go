package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

// Notifier records an in-app notification for a user.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ entity.NotificationType, title, message string, data map[string]any) (*entity.Notification, error)
}

type NotificationService struct {
	Notifications repo.NotificationRepository
	Sink          NotificationSink
	Logger        *logrus.Logger
	Now           func() time.Time
}

func NewNotificationService(notifications repo.NotificationRepository, sink NotificationSink, logger *logrus.Logger) *NotificationService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	if sink == nil {
		sink = NoopSink{}
	}
	return &NotificationService{Notifications: notifications, Sink: sink, Logger: logger, Now: time.Now}
}

// Notify persists the notification, then offers it to the sink. Sink
// failures are logged and never fail the call.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ entity.NotificationType, title, message string, data map[string]any) (*entity.Notification, error) {
	n := &entity.Notification{UserID: userID, Type: typ, Title: title, Message: message, Data: data}
	if err := s.Notifications.Create(ctx, n); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.Sink.Deliver(ctx, n); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "type": typ}).Warn("notification delivery failed")
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error) {
	items, total, err := s.Notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return translate(s.Notifications.MarkRead(ctx, userID, id, s.Now()), "notification not found")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.Notifications.MarkAllRead(ctx, userID, s.Now())
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}
