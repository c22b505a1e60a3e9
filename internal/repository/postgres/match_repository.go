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

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) CreateWithConversation(ctx context.Context, userLowID, userHighID string) (*domain.Match, *domain.Conversation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, translateError("failed to begin match transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	match := &domain.Match{
		UserLowID:  userLowID,
		UserHighID: userHighID,
		Status:     domain.MatchStatusActive,
	}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO matches (user_low_id, user_high_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, userLowID, userHighID, match.Status).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return nil, nil, translateError("failed to insert match", err)
	}

	conversation := &domain.Conversation{MatchID: match.ID}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO conversations (match_id)
		VALUES ($1)
		RETURNING id, created_at, last_message_at
	`, match.ID).Scan(&conversation.ID, &conversation.CreatedAt, &conversation.LastMessageAt)
	if err != nil {
		return nil, nil, translateError("failed to insert conversation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, translateError("failed to commit match transaction", err)
	}
	return match, conversation, nil
}

const selectMatch = `
	SELECT id, user_low_id, user_high_id, status, icebreakers, created_at
	FROM matches
`

func (r *matchRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Match, error) {
	var match domain.Match
	err := r.db.QueryRowxContext(ctx, query, args...).Scan(
		&match.ID, &match.UserLowID, &match.UserHighID, &match.Status,
		pq.Array(&match.Icebreakers), &match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, translateError("failed to get match", err)
	}
	return &match, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	return r.getOne(ctx, selectMatch+` WHERE id = $1`, id)
}

func (r *matchRepository) GetByUsers(ctx context.Context, userA, userB string) (*domain.Match, error) {
	low, high := domain.CanonicalPair(userA, userB)
	return r.getOne(ctx, selectMatch+` WHERE user_low_id = $1 AND user_high_id = $2`, low, high)
}

func (r *matchRepository) ListActive(ctx context.Context, userID string) ([]*domain.MatchSummary, error) {
	query := `
		SELECT m.id, m.user_low_id, m.user_high_id, m.icebreakers, m.created_at, c.id, u.name
		FROM matches m
		LEFT JOIN conversations c ON c.match_id = m.id
		JOIN users u ON u.id = CASE WHEN m.user_low_id = $1 THEN m.user_high_id ELSE m.user_low_id END
		WHERE (m.user_low_id = $1 OR m.user_high_id = $1) AND m.status = 'active'
		ORDER BY m.created_at DESC
	`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, translateError("failed to list matches", err)
	}
	defer rows.Close()

	summaries := make([]*domain.MatchSummary, 0)
	for rows.Next() {
		var (
			match          domain.Match
			conversationID sql.NullString
			summary        domain.MatchSummary
		)
		if err := rows.Scan(
			&match.ID, &match.UserLowID, &match.UserHighID, pq.Array(&match.Icebreakers),
			&match.CreatedAt, &conversationID, &summary.OtherUserName,
		); err != nil {
			return nil, translateError("failed to scan match", err)
		}
		summary.MatchID = match.ID
		summary.OtherUserID, _ = match.GetOtherUserID(userID)
		summary.Icebreakers = match.Icebreakers
		summary.CreatedAt = match.CreatedAt
		if conversationID.Valid {
			summary.ConversationID = &conversationID.String
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to list matches", err)
	}
	return summaries, nil
}

func (r *matchRepository) UpdateIcebreakers(ctx context.Context, matchID string, icebreakers []string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE matches SET icebreakers = $1 WHERE id = $2`, pq.Array(icebreakers), matchID)
	if err != nil {
		return translateError("failed to update icebreakers", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}
