package domain

import "time"

type Conversation struct {
	ID            string    `json:"id" db:"id"`
	MatchID       string    `json:"matchId" db:"match_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	LastMessageAt time.Time `json:"lastMessageAt" db:"last_message_at"`
}

// Participants resolves a conversation to the two users of its match.
type Participants struct {
	ConversationID string      `db:"conversation_id"`
	MatchID        string      `db:"match_id"`
	UserLowID      string      `db:"user_low_id"`
	UserHighID     string      `db:"user_high_id"`
	MatchStatus    MatchStatus `db:"match_status"`
}

func (p *Participants) Has(userID string) bool {
	return p.UserLowID == userID || p.UserHighID == userID
}

// Other returns the participant that is not userID, or false if userID is
// not part of the conversation.
func (p *Participants) Other(userID string) (string, bool) {
	switch userID {
	case p.UserLowID:
		return p.UserHighID, true
	case p.UserHighID:
		return p.UserLowID, true
	}
	return "", false
}

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	ID            string    `json:"id"`
	MatchID       string    `json:"matchId"`
	OtherUserID   string    `json:"otherUserId"`
	OtherUserName string    `json:"otherUserName"`
	LastMessage   *Message  `json:"lastMessage,omitempty"`
	MessageCount  int       `json:"messageCount"`
	RevealLevel   int       `json:"revealLevel"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}
