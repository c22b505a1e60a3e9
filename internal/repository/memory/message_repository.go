package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type messageRepository struct {
	s *Store
}

func (r *messageRepository) Create(_ context.Context, msg *domain.Message) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[msg.ConversationID]; !ok {
		return fmt.Errorf("failed to insert message: %w", domain.ErrConversationNotFound)
	}
	for _, existing := range s.messages[msg.ConversationID] {
		if existing.ID == msg.ID {
			return fmt.Errorf("failed to insert message: %w", domain.ErrConflict)
		}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.timestamp()
	}
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], copyMessage(msg))
	return nil
}

func (r *messageRepository) CursorPosition(_ context.Context, conversationID, messageID string) (time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.messages[conversationID] {
		if m.ID == messageID {
			return m.CreatedAt, nil
		}
	}
	return time.Time{}, domain.ErrMessageNotFound
}

func (r *messageRepository) ListBefore(_ context.Context, conversationID string, before *domain.PageBoundary, limit int) ([]*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Message, 0)
	for _, m := range r.s.messages[conversationID] {
		if before.Admits(m) {
			matched = append(matched, copyMessage(m))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[j].Before(matched[i])
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *messageRepository) Count(_ context.Context, conversationID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.messages[conversationID]), nil
}

func (r *messageRepository) MarkRead(_ context.Context, conversationID string, messageIDs []string, readerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}
	var updated int64
	for _, m := range r.s.messages[conversationID] {
		if _, ok := wanted[m.ID]; !ok {
			continue
		}
		if m.SenderID == readerID || m.Status == domain.MessageStatusRead {
			continue
		}
		m.Status = domain.MessageStatusRead
		updated++
	}
	return updated, nil
}
