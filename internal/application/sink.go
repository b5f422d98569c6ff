package application

import (
	"context"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/mailer"
	mailtpl "github.com/synqit/synqit-backend/pkg/mailer/templates"
)

// NotificationSink delivers a stored notification outside the app.
type NotificationSink interface {
	Deliver(ctx context.Context, n *entity.Notification) error
}

// NoopSink keeps notifications in-app only.
type NoopSink struct{}

func (NoopSink) Deliver(context.Context, *entity.Notification) error { return nil }

// EmailSink queues an email for every notification. The email worker
// renders and sends it.
type EmailSink struct {
	Users     repo.UserRepository
	Publisher JobPublisher
	Branding  mailtpl.Branding
	// ActionURL is linked from the email body.
	ActionURL string
}

func NewEmailSink(users repo.UserRepository, publisher JobPublisher, branding mailtpl.Branding, actionURL string) *EmailSink {
	return &EmailSink{Users: users, Publisher: publisher, Branding: branding, ActionURL: actionURL}
}

func (s *EmailSink) Deliver(ctx context.Context, n *entity.Notification) error {
	u, err := s.Users.GetByID(ctx, n.UserID)
	if err != nil {
		return err
	}
	return s.Publisher.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Notification,
		Data:     mailtpl.NewNotificationData(s.Branding, u.FirstName, u.Email, n.Title, n.Message, s.ActionURL),
	})
}
