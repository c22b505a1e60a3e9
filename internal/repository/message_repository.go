package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type MessageRepository interface {
	// Create persists msg and fills in CreatedAt from the store clock.
	Create(ctx context.Context, msg *domain.Message) error
	// CursorPosition returns the created_at of a message inside a conversation.
	CursorPosition(ctx context.Context, conversationID, messageID string) (time.Time, error)
	// ListBefore walks the conversation newest first, returning at most
	// limit messages strictly before the boundary (all messages if nil).
	ListBefore(ctx context.Context, conversationID string, before *domain.PageBoundary, limit int) ([]*domain.Message, error)
	Count(ctx context.Context, conversationID string) (int, error)
	// MarkRead flips the named messages to read, skipping ones sent by readerID.
	MarkRead(ctx context.Context, conversationID string, messageIDs []string, readerID string) (int64, error)
}
