package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/uuid"
)

type conversationRepository struct {
	s *Store
}

func (r *conversationRepository) GetByMatchID(_ context.Context, matchID string) (*domain.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.convByMatch[matchID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return copyConversation(r.s.conversations[id]), nil
}

func (r *conversationRepository) Upsert(_ context.Context, matchID string) (*domain.Conversation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.convByMatch[matchID]; ok {
		return copyConversation(s.conversations[id]), nil
	}
	if _, ok := s.matches[matchID]; !ok {
		return nil, fmt.Errorf("failed to upsert conversation: %w", domain.ErrMatchNotFound)
	}
	now := s.timestamp()
	conversation := &domain.Conversation{
		ID:            uuid.NewString(),
		MatchID:       matchID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	s.conversations[conversation.ID] = conversation
	s.convByMatch[matchID] = conversation.ID
	return copyConversation(conversation), nil
}

func (r *conversationRepository) GetParticipants(_ context.Context, conversationID string) (*domain.Participants, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	conversation, ok := r.s.conversations[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	match := r.s.matches[conversation.MatchID]
	return &domain.Participants{
		ConversationID: conversation.ID,
		MatchID:        match.ID,
		UserLowID:      match.UserLowID,
		UserHighID:     match.UserHighID,
		MatchStatus:    match.Status,
	}, nil
}

func (r *conversationRepository) TouchLastMessage(_ context.Context, conversationID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if conversation, ok := r.s.conversations[conversationID]; ok && at.After(conversation.LastMessageAt) {
		conversation.LastMessageAt = at
	}
	return nil
}

func (r *conversationRepository) ListForUser(_ context.Context, userID string) ([]*domain.ConversationSummary, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]*domain.ConversationSummary, 0)
	for _, conversation := range s.conversations {
		match := s.matches[conversation.MatchID]
		otherID, ok := match.GetOtherUserID(userID)
		if !ok {
			continue
		}
		other, ok := s.users[otherID]
		if !ok {
			continue
		}
		msgs := s.messages[conversation.ID]
		summary := &domain.ConversationSummary{
			ID:            conversation.ID,
			MatchID:       match.ID,
			OtherUserID:   otherID,
			OtherUserName: other.Name,
			MessageCount:  len(msgs),
			RevealLevel:   domain.RevealLevel(len(msgs)),
			CreatedAt:     conversation.CreatedAt,
			LastMessageAt: conversation.LastMessageAt,
		}
		for _, m := range msgs {
			if summary.LastMessage == nil || summary.LastMessage.Before(m) {
				summary.LastMessage = m
			}
		}
		if summary.LastMessage != nil {
			summary.LastMessage = copyMessage(summary.LastMessage)
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}
