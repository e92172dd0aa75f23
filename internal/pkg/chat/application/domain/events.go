package chat

import (
	"encoding/json"
	"fmt"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
)

// Room broadcast event names. The set is closed: DecodeEvent rejects
// anything else, and connection handlers switch exhaustively over the
// decoded types.
const (
	EventMessage    = "chat_message"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventTyping     = "user_typing"
)

// Event is the closed union of everything a chat room can broadcast.
type Event interface{ isChatEvent() }

// MessageEvent carries a persisted message. SenderID lets each receiving
// connection decide whether to attach its own unread count (recipients
// only, never the sender's echo).
type MessageEvent struct {
	Message  Payload `json:"message"`
	SenderID int64   `json:"sender_id"`
}

// UserJoinedEvent announces a user entering the room.
type UserJoinedEvent struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}

// UserLeftEvent announces a user leaving the room.
type UserLeftEvent struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
}

// TypingEvent is the ephemeral typing indicator.
type TypingEvent struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

func (MessageEvent) isChatEvent()    {}
func (UserJoinedEvent) isChatEvent() {}
func (UserLeftEvent) isChatEvent()   {}
func (TypingEvent) isChatEvent()     {}

// DecodeEvent maps a fabric envelope back to its typed event.
func DecodeEvent(env fabric.Envelope) (Event, error) {
	switch env.Event {
	case EventMessage:
		var e MessageEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventUserJoined:
		var e UserJoinedEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventUserLeft:
		var e UserLeftEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventTyping:
		var e TypingEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("chat: unknown room event %q", env.Event)
	}
}

// RoomGroup derives the fabric group key for a session's chat room.
func RoomGroup(sessionID string) string {
	return "chat.session." + sessionID
}
