package domain

import "time"

type Like struct {
	FromUserID string    `json:"fromUserId" db:"from_user_id"`
	ToUserID   string    `json:"toUserId" db:"to_user_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// LikeResult is what a like call reports back to the client.
type LikeResult struct {
	Matched        bool    `json:"matched"`
	AlreadyLiked   bool    `json:"alreadyLiked"`
	MatchID        *string `json:"matchId,omitempty"`
	ConversationID *string `json:"conversationId,omitempty"`
}
