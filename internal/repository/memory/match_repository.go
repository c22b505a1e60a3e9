package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/uuid"
)

type matchRepository struct {
	s *Store
}

func (r *matchRepository) CreateWithConversation(_ context.Context, userLowID, userHighID string) (*domain.Match, *domain.Conversation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if userLowID >= userHighID {
		return nil, nil, fmt.Errorf("failed to insert match: pair is not canonical")
	}
	if _, ok := s.users[userLowID]; !ok {
		return nil, nil, fmt.Errorf("failed to insert match: %w", domain.ErrUserNotFound)
	}
	if _, ok := s.users[userHighID]; !ok {
		return nil, nil, fmt.Errorf("failed to insert match: %w", domain.ErrUserNotFound)
	}
	key := pair{userLowID, userHighID}
	if _, ok := s.matchByPair[key]; ok {
		return nil, nil, fmt.Errorf("failed to insert match: %w", domain.ErrConflict)
	}

	now := s.timestamp()
	match := &domain.Match{
		ID:         uuid.NewString(),
		UserLowID:  userLowID,
		UserHighID: userHighID,
		Status:     domain.MatchStatusActive,
		CreatedAt:  now,
	}
	conversation := &domain.Conversation{
		ID:            uuid.NewString(),
		MatchID:       match.ID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	s.matches[match.ID] = match
	s.matchByPair[key] = match.ID
	s.conversations[conversation.ID] = conversation
	s.convByMatch[match.ID] = conversation.ID

	return copyMatch(match), copyConversation(conversation), nil
}

func (r *matchRepository) GetByID(_ context.Context, id string) (*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match, ok := r.s.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return copyMatch(match), nil
}

func (r *matchRepository) GetByUsers(_ context.Context, userA, userB string) (*domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	low, high := domain.CanonicalPair(userA, userB)
	id, ok := r.s.matchByPair[pair{low, high}]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return copyMatch(r.s.matches[id]), nil
}

func (r *matchRepository) ListActive(_ context.Context, userID string) ([]*domain.MatchSummary, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]*domain.MatchSummary, 0)
	for _, match := range s.matches {
		if !match.IsActive() {
			continue
		}
		otherID, ok := match.GetOtherUserID(userID)
		if !ok {
			continue
		}
		other, ok := s.users[otherID]
		if !ok {
			continue
		}
		summary := &domain.MatchSummary{
			MatchID:       match.ID,
			OtherUserID:   otherID,
			OtherUserName: other.Name,
			Icebreakers:   append([]string(nil), match.Icebreakers...),
			CreatedAt:     match.CreatedAt,
		}
		if convID, ok := s.convByMatch[match.ID]; ok {
			summary.ConversationID = &convID
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (r *matchRepository) UpdateIcebreakers(_ context.Context, matchID string, icebreakers []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match, ok := r.s.matches[matchID]
	if !ok {
		return domain.ErrMatchNotFound
	}
	match.Icebreakers = append([]string(nil), icebreakers...)
	return nil
}
