package repository

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . LikeLedger,MatchRepository,ConversationRepository,MessageRepository,UserRepository

import (
	"context"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

// LikeLedger records one-directional interest. It never creates matches.
type LikeLedger interface {
	// RecordLike inserts from->to and reports true if the like already existed.
	RecordLike(ctx context.Context, fromUserID, toUserID string) (alreadyLiked bool, err error)
	HasMutualLike(ctx context.Context, userA, userB string) (bool, error)
	// RecordPass inserts a pass from->to and reports true if it already existed.
	RecordPass(ctx context.Context, fromUserID, toUserID string) (alreadyPassed bool, err error)
}

type MatchRepository interface {
	// CreateWithConversation inserts a match and its conversation in one
	// transaction. It returns domain.ErrConflict if either uniqueness
	// constraint was already taken by a concurrent writer.
	CreateWithConversation(ctx context.Context, userLowID, userHighID string) (*domain.Match, *domain.Conversation, error)
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	GetByUsers(ctx context.Context, userA, userB string) (*domain.Match, error)
	ListActive(ctx context.Context, userID string) ([]*domain.MatchSummary, error)
	UpdateIcebreakers(ctx context.Context, matchID string, icebreakers []string) error
}
