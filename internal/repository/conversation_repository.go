package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type ConversationRepository interface {
	GetByMatchID(ctx context.Context, matchID string) (*domain.Conversation, error)
	// Upsert returns the conversation of a match, creating it if absent. It
	// is a single statement keyed on the unique match id, so concurrent
	// callers always observe the same row.
	Upsert(ctx context.Context, matchID string) (*domain.Conversation, error)
	GetParticipants(ctx context.Context, conversationID string) (*domain.Participants, error)
	TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error
	ListForUser(ctx context.Context, userID string) ([]*domain.ConversationSummary, error)
}
