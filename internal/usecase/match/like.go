package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func canonicalUsers(fromUserID, toUserID string) (string, string, error) {
	from, err := uuid.Parse(fromUserID)
	if err != nil {
		return "", "", domain.ErrUserNotFound
	}
	to, err := uuid.Parse(toUserID)
	if err != nil {
		return "", "", domain.ErrUserNotFound
	}
	if from == to {
		return "", "", domain.ErrCannotLikeSelf
	}
	return from.String(), to.String(), nil
}

// LikeAndMatch records a like and, when it completes a mutual pair, resolves
// the pair's match and conversation. Concurrent calls for the same pair all
// report the same ids.
func (uc *MatchUseCase) LikeAndMatch(ctx context.Context, fromUserID, toUserID string) (*domain.LikeResult, error) {
	from, to, err := canonicalUsers(fromUserID, toUserID)
	if err != nil {
		return nil, err
	}

	alreadyLiked, err := uc.likes.RecordLike(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to record like: %w", err)
	}
	if alreadyLiked {
		return &domain.LikeResult{AlreadyLiked: true}, nil
	}

	mutual, err := uc.likes.HasMutualLike(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to check mutual like: %w", err)
	}
	if !mutual {
		return &domain.LikeResult{}, nil
	}

	match, conversation, created, err := uc.resolveMatch(ctx, from, to)
	if err != nil {
		return nil, err
	}

	log := uc.log.WithFields(logrus.Fields{
		"user_id":         from,
		"match_id":        match.ID,
		"conversation_id": conversation.ID,
	})
	if created {
		log.Info("match created")
		if uc.notifier != nil {
			uc.notifier.NotifyMatch(ctx, to, domain.MatchNotice{
				MatchID:        match.ID,
				ConversationID: conversation.ID,
				OtherUserID:    from,
			})
		}
		uc.enrichMatch(match.ID, from, to)
	} else {
		log.Debug("match already existed")
	}

	return &domain.LikeResult{
		Matched:        true,
		MatchID:        &match.ID,
		ConversationID: &conversation.ID,
	}, nil
}

// resolveMatch inserts the match and its conversation in one transaction. If
// a concurrent caller won the insert, the existing rows are read back and
// reported with created=false.
func (uc *MatchUseCase) resolveMatch(ctx context.Context, userA, userB string) (*domain.Match, *domain.Conversation, bool, error) {
	low, high := domain.CanonicalPair(userA, userB)

	match, conversation, err := uc.matchRepo.CreateWithConversation(ctx, low, high)
	if err == nil {
		return match, conversation, true, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, nil, false, fmt.Errorf("failed to create match: %w", err)
	}

	match, err = uc.matchRepo.GetByUsers(ctx, low, high)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to read back match: %w", err)
	}
	conversation, err = uc.convRepo.Upsert(ctx, match.ID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to read back conversation: %w", err)
	}
	return match, conversation, false, nil
}

// Pass records disinterest. It reports whether the pass already existed.
func (uc *MatchUseCase) Pass(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	from, to, err := canonicalUsers(fromUserID, toUserID)
	if err != nil {
		return false, err
	}
	alreadyPassed, err := uc.likes.RecordPass(ctx, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to record pass: %w", err)
	}
	return alreadyPassed, nil
}
