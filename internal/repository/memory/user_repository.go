package memory

import (
	"context"
	"math/rand"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *userRepository) Discover(_ context.Context, viewer *domain.User, limit int) ([]*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]*domain.User, 0)
	for _, u := range s.users {
		if u.ID == viewer.ID || !viewer.CompatibleWith(u) {
			continue
		}
		if _, ok := s.likes[pair{viewer.ID, u.ID}]; ok {
			continue
		}
		if _, ok := s.passes[pair{viewer.ID, u.ID}]; ok {
			continue
		}
		low, high := domain.CanonicalPair(viewer.ID, u.ID)
		if _, ok := s.matchByPair[pair{low, high}]; ok {
			continue
		}
		cp := *u
		candidates = append(candidates, &cp)
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
