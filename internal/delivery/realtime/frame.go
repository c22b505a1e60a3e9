package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
)

type FrameType string

const (
	FrameConnected  FrameType = "connected"
	FrameNewMessage FrameType = "new_message"
	FrameNewMatch   FrameType = "new_match"
)

type ConnectedPayload struct {
	UserID string `json:"userId"`
}

// Frame is a server to client push. Exactly one payload field is set and it
// must agree with Type.
type Frame struct {
	Type      FrameType
	Connected *ConnectedPayload
	Message   *domain.Message
	Match     *domain.MatchNotice
}

func ConnectedFrame(userID string) Frame {
	return Frame{Type: FrameConnected, Connected: &ConnectedPayload{UserID: userID}}
}

func MessageFrame(msg *domain.Message) Frame {
	return Frame{Type: FrameNewMessage, Message: msg}
}

func MatchFrame(notice domain.MatchNotice) Frame {
	return Frame{Type: FrameNewMatch, Match: &notice}
}

type wireFrame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (f Frame) MarshalJSON() ([]byte, error) {
	var payload any
	switch f.Type {
	case FrameConnected:
		payload = f.Connected
	case FrameNewMessage:
		payload = f.Message
	case FrameNewMatch:
		payload = f.Match
	default:
		return nil, fmt.Errorf("unknown frame type %q", f.Type)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireFrame{Type: f.Type, Payload: raw})
}

func (f *Frame) UnmarshalJSON(data []byte) error {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Frame{Type: w.Type}
	var target any
	switch w.Type {
	case FrameConnected:
		out.Connected = &ConnectedPayload{}
		target = out.Connected
	case FrameNewMessage:
		out.Message = &domain.Message{}
		target = out.Message
	case FrameNewMatch:
		out.Match = &domain.MatchNotice{}
		target = out.Match
	default:
		return fmt.Errorf("unknown frame type %q", w.Type)
	}
	if err := json.Unmarshal(w.Payload, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", w.Type, err)
	}
	*f = out
	return nil
}
