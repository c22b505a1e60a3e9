package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user       domain.User
		lookingFor []string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Gender, pq.Array(&lookingFor), &user.CreatedAt); err != nil {
		return nil, err
	}
	user.LookingFor = make([]domain.Gender, 0, len(lookingFor))
	for _, g := range lookingFor {
		user.LookingFor = append(user.LookingFor, domain.Gender(g))
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, name, gender, looking_for, created_at FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowxContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, translateError("failed to get user", err)
	}
	return user, nil
}

func (r *userRepository) Discover(ctx context.Context, viewer *domain.User, limit int) ([]*domain.User, error) {
	seeking := make([]string, 0, len(viewer.LookingFor))
	for _, g := range viewer.LookingFor {
		seeking = append(seeking, string(g))
	}

	query := `
		SELECT u.id, u.name, u.gender, u.looking_for, u.created_at
		FROM users u
		WHERE u.id <> $1
		  AND u.gender = ANY($2::text[])
		  AND $3 = ANY(u.looking_for)
		  AND NOT EXISTS (SELECT 1 FROM likes l WHERE l.from_user_id = $1 AND l.to_user_id = u.id)
		  AND NOT EXISTS (SELECT 1 FROM passes p WHERE p.from_user_id = $1 AND p.to_user_id = u.id)
		  AND NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE (m.user_low_id = $1 AND m.user_high_id = u.id)
			   OR (m.user_high_id = $1 AND m.user_low_id = u.id)
		  )
		ORDER BY random()
		LIMIT $4
	`
	rows, err := r.db.QueryxContext(ctx, query, viewer.ID, pq.Array(seeking), string(viewer.Gender), limit)
	if err != nil {
		return nil, translateError("failed to discover users", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translateError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to discover users", err)
	}
	return users, nil
}
