package message

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/uuid"
)

func (uc *MessageUseCase) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return uc.limits.Default
	case limit > uc.limits.Max:
		return uc.limits.Max
	}
	return limit
}

// resolveCursor turns a cursor message id into the exclusive upper bound of
// the next page. The bound is the message's position, not its existence: a
// cursor whose message is gone falls back to the time embedded in its id.
func (uc *MessageUseCase) resolveCursor(ctx context.Context, conversationID, cursor string) (*domain.PageBoundary, error) {
	if cursor == "" {
		return nil, nil
	}
	id, err := uuid.Parse(cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}

	createdAt, err := uc.msgRepo.CursorPosition(ctx, conversationID, id.String())
	if err == nil {
		return &domain.PageBoundary{CreatedAt: createdAt, MessageID: id.String()}, nil
	}
	if !errors.Is(err, domain.ErrMessageNotFound) {
		return nil, fmt.Errorf("failed to resolve cursor: %w", err)
	}

	boundary, ok := domain.BoundaryFromID(id.String())
	if !ok {
		return nil, domain.ErrInvalidCursor
	}
	uc.log.WithField("conversation_id", conversationID).Debug("cursor message missing, paging by id timestamp")
	return boundary, nil
}

// Page returns up to limit messages older than cursor, oldest first.
// NextCursor names the oldest message in the page and is nil only when the
// page is empty.
func (uc *MessageUseCase) Page(ctx context.Context, userID, conversationID string, limit int, cursor string) (*domain.MessagePage, error) {
	p, err := uc.participants(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	limit = uc.clampLimit(limit)

	boundary, err := uc.resolveCursor(ctx, p.ConversationID, cursor)
	if err != nil {
		return nil, err
	}

	// One extra row tells us whether anything older remains.
	messages, err := uc.msgRepo.ListBefore(ctx, p.ConversationID, boundary, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	var nextCursor *string
	if len(messages) > 0 {
		oldest := messages[len(messages)-1].ID
		nextCursor = &oldest
	}
	slices.Reverse(messages)

	total, err := uc.msgRepo.Count(ctx, p.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	return &domain.MessagePage{
		Messages:    messages,
		HasMore:     hasMore,
		NextCursor:  nextCursor,
		TotalCount:  total,
		RevealLevel: domain.RevealLevel(total),
	}, nil
}
