package postgres

import (
	"context"

	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type likeLedger struct {
	db *sqlx.DB
}

func NewLikeLedger(db *sqlx.DB) repository.LikeLedger {
	return &likeLedger{db: db}
}

func (r *likeLedger) RecordLike(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	query := `
		INSERT INTO likes (from_user_id, to_user_id)
		VALUES ($1, $2)
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING
	`
	return r.insertOnce(ctx, "failed to record like", query, fromUserID, toUserID)
}

func (r *likeLedger) RecordPass(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	query := `
		INSERT INTO passes (from_user_id, to_user_id)
		VALUES ($1, $2)
		ON CONFLICT (from_user_id, to_user_id) DO NOTHING
	`
	return r.insertOnce(ctx, "failed to record pass", query, fromUserID, toUserID)
}

// insertOnce reports true when the row already existed.
func (r *likeLedger) insertOnce(ctx context.Context, op, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translateError(op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, translateError(op, err)
	}
	return rows == 0, nil
}

func (r *likeLedger) HasMutualLike(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT COUNT(*) = 2 FROM likes
		WHERE (from_user_id = $1 AND to_user_id = $2)
		   OR (from_user_id = $2 AND to_user_id = $1)
	`
	var mutual bool
	if err := r.db.GetContext(ctx, &mutual, query, userA, userB); err != nil {
		return false, translateError("failed to check mutual like", err)
	}
	return mutual, nil
}
