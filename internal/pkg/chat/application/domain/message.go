package chat

import (
	"errors"
	"strings"
	"time"
)

// Kind discriminates regular user messages from system announcements.
type Kind string

const (
	KindText   Kind = "text"
	KindSystem Kind = "system"
)

// Domain-level errors for chat behaviors.
var (
	ErrEmptyMessage = errors.New("chat: message cannot be empty")
)

// Message is a persisted chat entry within a live session room.
//
// The read-by set drives unread-count computation: a message is unread for
// a user while that user is absent from the set. The sender is added at
// creation time, atomically with the insert, so a sender never counts their
// own message as unread. Soft-deleted messages stay stored but are excluded
// from history and unread counts.
type Message struct {
	ID        int64
	SessionID string
	Sender    Sender
	Body      string
	Kind      Kind
	Deleted   bool
	CreatedAt time.Time
}

// Sender is the identity snapshot attached to a message for wire payloads.
type Sender struct {
	ID    int64
	Name  string
	Email string
	Role  string
}

// NewMessage validates and normalizes a candidate text message.
func NewMessage(sessionID string, sender Sender, body string) (Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{
		SessionID: sessionID,
		Sender:    sender,
		Body:      body,
		Kind:      KindText,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Payload is the wire shape of a message, matching what the platform's
// web and mobile clients already consume.
type Payload struct {
	ID          int64  `json:"id"`
	SessionID   string `json:"session_id"`
	SenderID    int64  `json:"sender_id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	SenderRole  string `json:"sender_role"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
	IsDeleted   bool   `json:"is_deleted"`
	CreatedAt   string `json:"created_at"`
}

// ToPayload converts the message to its wire shape.
func (m Message) ToPayload() Payload {
	return Payload{
		ID:          m.ID,
		SessionID:   m.SessionID,
		SenderID:    m.Sender.ID,
		SenderName:  m.Sender.Name,
		SenderEmail: m.Sender.Email,
		SenderRole:  m.Sender.Role,
		Message:     m.Body,
		MessageType: string(m.Kind),
		IsDeleted:   m.Deleted,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
	}
}
