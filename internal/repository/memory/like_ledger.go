package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type likeLedger struct {
	s *Store
}

func (r *likeLedger) RecordLike(_ context.Context, fromUserID, toUserID string) (bool, error) {
	return r.s.insertOnce(r.s.likes, "failed to record like", fromUserID, toUserID)
}

func (r *likeLedger) RecordPass(_ context.Context, fromUserID, toUserID string) (bool, error) {
	return r.s.insertOnce(r.s.passes, "failed to record pass", fromUserID, toUserID)
}

func (s *Store) insertOnce(table map[pair]time.Time, op, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[from]; !ok {
		return false, fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	if _, ok := s.users[to]; !ok {
		return false, fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	key := pair{from, to}
	if _, ok := table[key]; ok {
		return true, nil
	}
	table[key] = s.timestamp()
	return false, nil
}

func (r *likeLedger) HasMutualLike(_ context.Context, userA, userB string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ab := r.s.likes[pair{userA, userB}]
	_, ba := r.s.likes[pair{userB, userA}]
	return ab && ba, nil
}
