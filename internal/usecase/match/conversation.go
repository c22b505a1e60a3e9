package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/uuid"
)

// EnsureConversation returns the conversation of a match the caller takes
// part in, creating it if it is missing. Unknown, foreign and inactive
// matches all fail with ErrNotFoundOrForbidden.
func (uc *MatchUseCase) EnsureConversation(ctx context.Context, userID, matchID string) (*domain.Conversation, error) {
	id, err := uuid.Parse(matchID)
	if err != nil {
		return nil, domain.ErrNotFoundOrForbidden
	}

	match, err := uc.matchRepo.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return nil, domain.ErrNotFoundOrForbidden
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if !match.HasUser(userID) || !match.IsActive() {
		return nil, domain.ErrNotFoundOrForbidden
	}

	conversation, err := uc.convRepo.GetByMatchID(ctx, match.ID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	conversation, err = uc.convRepo.Upsert(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	uc.log.WithField("match_id", match.ID).WithField("conversation_id", conversation.ID).Warn("conversation was missing for match, created")
	return conversation, nil
}
