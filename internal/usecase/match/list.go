package match

import (
	"context"
	"fmt"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

// ListMatches returns the caller's active matches, newest first.
func (uc *MatchUseCase) ListMatches(ctx context.Context, userID string) ([]*domain.MatchSummary, error) {
	summaries, err := uc.matchRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if uc.presence != nil {
		for _, s := range summaries {
			s.IsOnline = uc.presence.IsOnline(ctx, s.OtherUserID)
		}
	}
	return summaries, nil
}

// Discover returns compatible users the caller has not acted on yet.
func (uc *MatchUseCase) Discover(ctx context.Context, userID string, limit int) ([]*domain.User, error) {
	switch {
	case limit <= 0:
		limit = defaultDiscoverLimit
	case limit > maxDiscoverLimit:
		limit = maxDiscoverLimit
	}

	viewer, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := uc.userRepo.Discover(ctx, viewer, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to discover users: %w", err)
	}
	return users, nil
}
