package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository"
	"github.com/jmoiron/sqlx"
)

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) GetByMatchID(ctx context.Context, matchID string) (*domain.Conversation, error) {
	var conversation domain.Conversation
	query := `SELECT id, match_id, created_at, last_message_at FROM conversations WHERE match_id = $1`
	if err := r.db.GetContext(ctx, &conversation, query, matchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, translateError("failed to get conversation", err)
	}
	return &conversation, nil
}

func (r *conversationRepository) Upsert(ctx context.Context, matchID string) (*domain.Conversation, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO conversations (match_id)
		VALUES ($1)
		ON CONFLICT (match_id) DO UPDATE SET last_message_at = conversations.last_message_at
		RETURNING id, match_id, created_at, last_message_at
	`
	var conversation domain.Conversation
	if err := r.db.GetContext(ctx, &conversation, query, matchID); err != nil {
		return nil, translateError("failed to upsert conversation", err)
	}
	return &conversation, nil
}

func (r *conversationRepository) GetParticipants(ctx context.Context, conversationID string) (*domain.Participants, error) {
	query := `
		SELECT c.id AS conversation_id, m.id AS match_id,
		       m.user_low_id, m.user_high_id, m.status AS match_status
		FROM conversations c
		JOIN matches m ON m.id = c.match_id
		WHERE c.id = $1
	`
	var participants domain.Participants
	if err := r.db.GetContext(ctx, &participants, query, conversationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, translateError("failed to get participants", err)
	}
	return &participants, nil
}

func (r *conversationRepository) TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error {
	query := `UPDATE conversations SET last_message_at = GREATEST(last_message_at, $1) WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, conversationID); err != nil {
		return translateError("failed to touch conversation", err)
	}
	return nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.ConversationSummary, error) {
	query := `
		SELECT c.id, c.match_id, c.created_at, c.last_message_at,
		       u.id, u.name,
		       (SELECT COUNT(*) FROM messages mc WHERE mc.conversation_id = c.id),
		       lm.id, lm.sender_id, lm.content, lm.type, lm.status, lm.created_at
		FROM conversations c
		JOIN matches m ON m.id = c.match_id
		JOIN users u ON u.id = CASE WHEN m.user_low_id = $1 THEN m.user_high_id ELSE m.user_low_id END
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, type, status, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON true
		WHERE m.user_low_id = $1 OR m.user_high_id = $1
		ORDER BY c.last_message_at DESC
	`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, translateError("failed to list conversations", err)
	}
	defer rows.Close()

	summaries := make([]*domain.ConversationSummary, 0)
	for rows.Next() {
		var s domain.ConversationSummary
		var lastID, lastSender, lastContent, lastType, lastStatus sql.NullString
		var lastCreatedAt sql.NullTime
		if err := rows.Scan(
			&s.ID, &s.MatchID, &s.CreatedAt, &s.LastMessageAt,
			&s.OtherUserID, &s.OtherUserName, &s.MessageCount,
			&lastID, &lastSender, &lastContent, &lastType, &lastStatus, &lastCreatedAt,
		); err != nil {
			return nil, translateError("failed to scan conversation", err)
		}
		if lastID.Valid {
			s.LastMessage = &domain.Message{
				ID:             lastID.String,
				ConversationID: s.ID,
				SenderID:       lastSender.String,
				Content:        lastContent.String,
				Type:           domain.MessageType(lastType.String),
				Status:         domain.MessageStatus(lastStatus.String),
				CreatedAt:      lastCreatedAt.Time,
			}
		}
		s.RevealLevel = domain.RevealLevel(s.MessageCount)
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to list conversations", err)
	}
	return summaries, nil
}
