package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

// Create stores msg. A zero CreatedAt is filled in by the database.
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING created_at
	`
	var createdAt *time.Time
	if !msg.CreatedAt.IsZero() {
		createdAt = &msg.CreatedAt
	}
	err := r.db.QueryRowxContext(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.Type, msg.Status, createdAt,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return translateError("failed to insert message", err)
	}
	return nil
}

func (r *messageRepository) CursorPosition(ctx context.Context, conversationID, messageID string) (time.Time, error) {
	var createdAt time.Time
	query := `SELECT created_at FROM messages WHERE id = $1 AND conversation_id = $2`
	if err := r.db.GetContext(ctx, &createdAt, query, messageID, conversationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, domain.ErrMessageNotFound
		}
		return time.Time{}, translateError("failed to resolve cursor", err)
	}
	return createdAt, nil
}

func (r *messageRepository) ListBefore(ctx context.Context, conversationID string, before *domain.PageBoundary, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, type, status, created_at
		FROM messages
		WHERE conversation_id = $1`
	args := []any{conversationID}

	switch {
	case before == nil:
	case before.MessageID == "":
		query += ` AND created_at < $2`
		args = append(args, before.CreatedAt)
	default:
		query += ` AND (created_at, id) < ($2, $3::uuid)`
		args = append(args, before.CreatedAt, before.MessageID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	messages := make([]*domain.Message, 0, limit)
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, translateError("failed to list messages", err)
	}
	return messages, nil
}

func (r *messageRepository) Count(ctx context.Context, conversationID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`
	if err := r.db.GetContext(ctx, &count, query, conversationID); err != nil {
		return 0, translateError("failed to count messages", err)
	}
	return count, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID string, messageIDs []string, readerID string) (int64, error) {
	query := `
		UPDATE messages
		SET status = 'read'
		WHERE conversation_id = $1
		  AND id = ANY($2::uuid[])
		  AND sender_id <> $3
		  AND status <> 'read'
	`
	result, err := r.db.ExecContext(ctx, query, conversationID, pq.Array(messageIDs), readerID)
	if err != nil {
		return 0, translateError("failed to mark messages read", err)
	}
	return result.RowsAffected()
}
