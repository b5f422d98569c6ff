package application

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
)

const (
	maxMessageLength = 5000
	previewLength    = 100
)

type MessageService struct {
	Messages     repo.MessageRepository
	Partnerships repo.PartnershipRepository
	Notifier     Notifier
	Logger       *logrus.Logger
	Now          func() time.Time
}

func NewMessageService(messages repo.MessageRepository, partnerships repo.PartnershipRepository, notifier Notifier, logger *logrus.Logger) *MessageService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &MessageService{Messages: messages, Partnerships: partnerships, Notifier: notifier, Logger: logger, Now: time.Now}
}

type SendMessageInput struct {
	PartnershipID string
	Content       string
	MessageType   entity.MessageType
}

// participantOf loads the partnership and checks the caller belongs to it.
func (s *MessageService) participantOf(ctx context.Context, userID, partnershipID string) (*entity.Partnership, error) {
	p, err := s.Partnerships.GetByID(ctx, partnershipID)
	if err != nil {
		return nil, translate(err, "partnership not found")
	}
	if !p.IsParticipant(userID) {
		return nil, apperror.Forbidden("you are not part of this partnership")
	}
	return p, nil
}

func (s *MessageService) SendMessage(ctx context.Context, userID string, in SendMessageInput) (*entity.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageLength {
		return nil, apperror.BadRequest("message content must be between 1 and 5000 characters")
	}
	typ := in.MessageType
	if typ == "" {
		typ = entity.MessageTypeText
	}
	if typ == entity.MessageTypeSystem {
		return nil, apperror.BadRequest("system messages cannot be sent by users")
	}

	p, err := s.participantOf(ctx, userID, in.PartnershipID)
	if err != nil {
		return nil, err
	}
	if p.Status != entity.PartnershipAccepted {
		return nil, apperror.BadRequest("messages can only be sent on accepted partnerships")
	}

	m := &entity.Message{
		PartnershipID: p.ID,
		SenderID:      userID,
		ReceiverID:    p.Counterpart(userID),
		Content:       content,
		MessageType:   typ,
	}
	if err := s.Messages.Create(ctx, m); err != nil {
		return nil, translate(err, "partnership not found")
	}

	if s.Notifier != nil {
		data := map[string]any{"partnershipId": p.ID, "messageId": m.ID, "senderId": userID}
		if _, err := s.Notifier.Notify(ctx, m.ReceiverID, entity.NotificationNewMessage, "New message", preview(content), data); err != nil {
			s.Logger.WithError(err).WithField("message_id", m.ID).Error("create message notification failed")
		}
	}
	return m, nil
}

// GetPartnershipMessages returns a page of messages, newest first, and marks
// everything the other party sent as read.
func (s *MessageService) GetPartnershipMessages(ctx context.Context, userID, partnershipID string, limit, offset int) ([]entity.Message, int, error) {
	if _, err := s.participantOf(ctx, userID, partnershipID); err != nil {
		return nil, 0, err
	}
	items, total, err := s.Messages.ListByPartnership(ctx, partnershipID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	now := s.Now()
	marked, err := s.Messages.MarkReadForReceiver(ctx, partnershipID, userID, now)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	if marked > 0 {
		for i := range items {
			if items[i].ReceiverID == userID && !items[i].IsRead {
				items[i].IsRead = true
				items[i].ReadAt = &now
			}
		}
	}
	return items, total, nil
}

func (s *MessageService) GetConversations(ctx context.Context, userID string) ([]entity.Conversation, error) {
	items, err := s.Messages.Conversations(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

// SearchMessages matches content case-insensitively across the caller's partnerships.
func (s *MessageService) SearchMessages(ctx context.Context, userID, q string, limit int) ([]entity.Message, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.BadRequest("search query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.Messages.Search(ctx, userID, q, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return items, nil
}

func (s *MessageService) GetStats(ctx context.Context, userID string) (entity.MessageStats, error) {
	st, err := s.Messages.Stats(ctx, userID)
	if err != nil {
		return entity.MessageStats{}, apperror.Internal(err)
	}
	return st, nil
}

// DeleteMessage replaces the content with a placeholder; the row stays so
// the conversation keeps its shape.
func (s *MessageService) DeleteMessage(ctx context.Context, userID, id string) error {
	m, err := s.Messages.GetByID(ctx, id)
	if err != nil {
		return translate(err, "message not found")
	}
	if m.SenderID != userID {
		return apperror.Forbidden("you can only delete your own messages")
	}
	if m.MessageType == entity.MessageTypeSystem && m.Content == entity.DeletedMessagePlaceholder {
		return nil
	}
	return translate(s.Messages.SoftDelete(ctx, id), "message not found")
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	r := []rune(s)
	return string(r[:previewLength]) + "..."
}
