package domain

import (
	"encoding/binary"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxMessageRunes = 2000

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeSystem:
		return true
	}
	return false
}

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// Message ids are UUIDv7 whose timestamp is exactly CreatedAt, so
// (CreatedAt, ID) is a total order that follows insertion even when two rows
// share a millisecond.
type Message struct {
	ID             string        `json:"id" db:"id"`
	ConversationID string        `json:"conversationId" db:"conversation_id"`
	SenderID       string        `json:"senderId" db:"sender_id"`
	Content        string        `json:"content" db:"content"`
	Type           MessageType   `json:"type" db:"type"`
	Status         MessageStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
}

// Before reports whether m sorts strictly before other in (CreatedAt, ID) order.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// MessageIDs mints message ids from a clock. Each id embeds the millisecond
// that becomes the message's CreatedAt, and ids from one generator strictly
// increase even if the clock stalls or steps back.
type MessageIDs struct {
	mu  sync.Mutex
	now func() time.Time
	ms  int64
	seq uint64
}

func NewMessageIDs(now func() time.Time) *MessageIDs {
	if now == nil {
		now = time.Now
	}
	return &MessageIDs{now: now}
}

// Next returns a fresh id together with the CreatedAt it encodes.
func (g *MessageIDs) Next() (string, time.Time, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, err
	}

	g.mu.Lock()
	switch ms := g.now().UnixMilli(); {
	case ms > g.ms:
		g.ms, g.seq = ms, 0
	case g.seq < 0xfff:
		g.seq++
	default:
		// 12 bits of sequence per millisecond are used up.
		g.ms, g.seq = g.ms+1, 0
	}
	ms, seq := g.ms, g.seq
	g.mu.Unlock()

	// 48-bit unix_ts_ms, version 7, 12-bit sequence; the random tail stays.
	binary.BigEndian.PutUint64(id[:8], uint64(ms)<<16|0x7000|seq)
	return id.String(), time.UnixMilli(ms).UTC(), nil
}

// ValidateContent checks a trimmed message body.
func ValidateContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxMessageRunes {
		return ErrContentTooLong
	}
	return nil
}

// PageBoundary is the exclusive upper bound of a history page. When
// MessageID is empty only the timestamp is compared.
type PageBoundary struct {
	CreatedAt time.Time
	MessageID string
}

// Admits reports whether m falls strictly before the boundary.
func (b *PageBoundary) Admits(m *Message) bool {
	if b == nil {
		return true
	}
	if b.MessageID == "" {
		return m.CreatedAt.Before(b.CreatedAt)
	}
	return m.Before(&Message{CreatedAt: b.CreatedAt, ID: b.MessageID})
}

// BoundaryFromID recovers the position of a UUIDv7 message id from the
// millisecond it embeds. Stored messages carry that millisecond as their
// CreatedAt, so the boundary is exact even when the message is gone.
func BoundaryFromID(id string) (*PageBoundary, bool) {
	u, err := uuid.Parse(id)
	if err != nil || u.Version() != 7 {
		return nil, false
	}
	ms := int64(binary.BigEndian.Uint64(u[:8]) >> 16)
	return &PageBoundary{CreatedAt: time.UnixMilli(ms).UTC(), MessageID: u.String()}, true
}

type MessagePage struct {
	Messages    []*Message `json:"messages"`
	HasMore     bool       `json:"hasMore"`
	NextCursor  *string    `json:"nextCursor"`
	TotalCount  int        `json:"totalCount"`
	RevealLevel int        `json:"revealLevel"`
}
