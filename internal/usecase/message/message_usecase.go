package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Notifier pushes newly stored messages to connected clients.
type Notifier interface {
	NotifyMessage(ctx context.Context, userID string, msg *domain.Message)
}

type Limits struct {
	Default int
	Max     int
}

type MessageUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	notifier Notifier
	limits   Limits
	ids      *domain.MessageIDs
	log      logrus.FieldLogger
}

type Option func(*MessageUseCase)

// WithClock sets the clock message ids and timestamps are taken from.
func WithClock(now func() time.Time) Option {
	return func(uc *MessageUseCase) { uc.ids = domain.NewMessageIDs(now) }
}

func NewMessageUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	notifier Notifier,
	limits Limits,
	log logrus.FieldLogger,
	opts ...Option,
) *MessageUseCase {
	if limits.Default <= 0 {
		limits.Default = 50
	}
	if limits.Max < limits.Default {
		limits.Max = max(limits.Default, 100)
	}
	uc := &MessageUseCase{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		notifier: notifier,
		limits:   limits,
		ids:      domain.NewMessageIDs(time.Now),
		log:      log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// SendMessageRequest represents a new message
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,content"`
}

// MarkReadRequest lists messages the caller has seen
type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required,max=500"`
}

// PageQuery holds history paging parameters
type PageQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,min=0"`
	Cursor string `form:"cursor"`
}

// participants resolves the conversation and checks that userID takes part
// in it. A malformed id, a missing conversation and a foreign conversation
// are indistinguishable to the caller.
func (uc *MessageUseCase) participants(ctx context.Context, conversationID, userID string) (*domain.Participants, error) {
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, domain.ErrNotFoundOrForbidden
	}
	p, err := uc.convRepo.GetParticipants(ctx, id.String())
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			return nil, domain.ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	if !p.Has(userID) {
		return nil, domain.ErrNotFoundOrForbidden
	}
	return p, nil
}

// Send stores a message and hands it to the realtime notifier. It is not
// retried and not deduplicated.
func (uc *MessageUseCase) Send(ctx context.Context, senderID, conversationID, content string) (*domain.Message, error) {
	p, err := uc.participants(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if p.MatchStatus != domain.MatchStatusActive {
		return nil, domain.ErrNotFoundOrForbidden
	}

	content = strings.TrimSpace(content)
	if err := domain.ValidateContent(content); err != nil {
		return nil, err
	}

	id, createdAt, err := uc.ids.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}
	msg := &domain.Message{
		ID:             id,
		ConversationID: p.ConversationID,
		SenderID:       senderID,
		Content:        content,
		Type:           domain.MessageTypeText,
		Status:         domain.MessageStatusSent,
		CreatedAt:      createdAt,
	}
	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	log := uc.log.WithFields(logrus.Fields{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
		"user_id":         senderID,
	})
	if err := uc.convRepo.TouchLastMessage(ctx, msg.ConversationID, msg.CreatedAt); err != nil {
		log.WithError(err).Warn("failed to bump last_message_at")
	}

	if recipient, ok := p.Other(senderID); ok && uc.notifier != nil {
		uc.notifier.NotifyMessage(ctx, recipient, msg)
	}
	log.Debug("message sent")

	return msg, nil
}

// ListConversations returns the caller's conversations, most recently
// active first.
func (uc *MessageUseCase) ListConversations(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	summaries, err := uc.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return summaries, nil
}

// MarkRead marks the named messages as read by readerID. The reader's own
// messages and ids that are not messages of this conversation are skipped.
func (uc *MessageUseCase) MarkRead(ctx context.Context, readerID, conversationID string, messageIDs []string) (int64, error) {
	p, err := uc.participants(ctx, conversationID, readerID)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(messageIDs))
	for _, raw := range messageIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id.String())
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	updated, err := uc.msgRepo.MarkRead(ctx, p.ConversationID, ids, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return updated, nil
}
