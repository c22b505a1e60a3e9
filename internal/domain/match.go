package domain

import "time"

type MatchStatus string

const (
	MatchStatusActive   MatchStatus = "active"
	MatchStatusArchived MatchStatus = "archived"
	MatchStatusBlocked  MatchStatus = "blocked"
)

// Match participants are stored in canonical order (UserLowID < UserHighID)
// so the pair uniqueness constraint does not depend on who liked first.
type Match struct {
	ID          string      `json:"id" db:"id"`
	UserLowID   string      `json:"userIdLow" db:"user_low_id"`
	UserHighID  string      `json:"userIdHigh" db:"user_high_id"`
	Status      MatchStatus `json:"status" db:"status"`
	Icebreakers []string    `json:"icebreakers,omitempty" db:"icebreakers"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

func (m *Match) HasUser(userID string) bool {
	return m.UserLowID == userID || m.UserHighID == userID
}

func (m *Match) GetOtherUserID(userID string) (string, bool) {
	if m.UserLowID == userID {
		return m.UserHighID, true
	}
	if m.UserHighID == userID {
		return m.UserLowID, true
	}
	return "", false
}

func (m *Match) IsActive() bool {
	return m.Status == MatchStatusActive
}

// CanonicalPair orders two user ids the way matches store them.
func CanonicalPair(a, b string) (low, high string) {
	if a > b {
		return b, a
	}
	return a, b
}

// MatchSummary is one row of a user's match list.
type MatchSummary struct {
	MatchID        string    `json:"matchId"`
	OtherUserID    string    `json:"otherUserId"`
	OtherUserName  string    `json:"otherUserName"`
	ConversationID *string   `json:"conversationId"`
	Icebreakers    []string  `json:"icebreakers,omitempty"`
	IsOnline       bool      `json:"isOnline"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MatchNotice is pushed to the participant who did not trigger the match.
type MatchNotice struct {
	MatchID        string `json:"matchId"`
	ConversationID string `json:"conversationId"`
	OtherUserID    string `json:"otherUserId"`
}
