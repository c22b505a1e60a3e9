package match

import (
	"context"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// Notifier pushes match events to connected clients.
type Notifier interface {
	NotifyMatch(ctx context.Context, userID string, notice domain.MatchNotice)
}

type PresenceChecker interface {
	IsOnline(ctx context.Context, userID string) bool
}

type IcebreakerGenerator interface {
	GenerateIcebreakers(ctx context.Context, a, b *domain.User) ([]string, error)
}

const (
	defaultDiscoverLimit = 20
	maxDiscoverLimit     = 50
	enrichTimeout        = 30 * time.Second
)

type MatchUseCase struct {
	likes       repository.LikeLedger
	matchRepo   repository.MatchRepository
	convRepo    repository.ConversationRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	presence    PresenceChecker
	icebreakers IcebreakerGenerator
	log         logrus.FieldLogger

	// async runs background work; tests swap it for a synchronous call.
	async func(func())
}

// NewMatchUseCase wires the match pipeline. notifier, presence and
// icebreakers may be nil.
func NewMatchUseCase(
	likes repository.LikeLedger,
	matchRepo repository.MatchRepository,
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	presence PresenceChecker,
	icebreakers IcebreakerGenerator,
	log logrus.FieldLogger,
) *MatchUseCase {
	return &MatchUseCase{
		likes:       likes,
		matchRepo:   matchRepo,
		convRepo:    convRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		presence:    presence,
		icebreakers: icebreakers,
		log:         log,
		async:       func(f func()) { go f() },
	}
}

// LikeRequest represents a like or pass action
type LikeRequest struct {
	TargetUserID string `json:"targetUserId" binding:"required,uuid"`
}

// EnsureConversationRequest asks for the conversation of a match
type EnsureConversationRequest struct {
	MatchID string `json:"matchId" binding:"required,uuid"`
}
