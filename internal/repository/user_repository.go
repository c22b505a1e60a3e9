package repository

import (
	"context"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Discover lists compatible users that the viewer has not liked, passed
	// or matched yet.
	Discover(ctx context.Context, viewer *domain.User, limit int) ([]*domain.User, error)
}
