package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Delivery channels. Only the in-app channel has realtime behavior today;
// the others are stored for downstream senders.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
	ChannelInApp = "in_app"
)

// Lifecycle status of a notification.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Notification categories shown to the user.
const (
	TypeInfo             = "info"
	TypeSuccess          = "success"
	TypeWarning          = "warning"
	TypeError            = "error"
	TypeCourse           = "course"
	TypeEnrollment       = "enrollment"
	TypeSession          = "session"
	TypeLibrary          = "library"
	TypeSystem           = "system"
	TypeUserRegistration = "user_registration"
)

// Notification is a per-user message persisted for the notification center
// and pushed over the user's realtime feed when it is created.
type Notification struct {
	ID        int64
	UserID    int64
	Channel   string
	Type      string
	Title     string
	Body      string
	Metadata  json.RawMessage
	ActionURL string
	Status    string
	SentAt    *time.Time
	ReadAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRead reports whether the notification has been read.
func (n Notification) IsRead() bool { return n.ReadAt != nil }

// UserGroup is the fabric group carrying a user's realtime notification feed.
func UserGroup(userID int64) string {
	return fmt.Sprintf("notifications_%d", userID)
}

// ListPayload is the compact wire shape used in feeds and realtime pushes.
type ListPayload struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ActionURL string `json:"action_url,omitempty"`
	IsRead    bool   `json:"is_read"`
	TimeAgo   string `json:"time_ago"`
	CreatedAt string `json:"created_at"`
}

// Payload is the full wire shape used by the detail and mutation endpoints.
type Payload struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user"`
	Channel   string          `json:"channel"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Metadata  json.RawMessage `json:"metadata"`
	ActionURL string          `json:"action_url,omitempty"`
	Status    string          `json:"status"`
	SentAt    *string         `json:"sent_at"`
	ReadAt    *string         `json:"read_at"`
	IsRead    bool            `json:"is_read"`
	TimeAgo   string          `json:"time_ago"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ToListPayload converts the notification to its compact wire shape.
func (n Notification) ToListPayload() ListPayload {
	return ListPayload{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead(),
		TimeAgo:   TimeAgo(n.CreatedAt, time.Now()),
		CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
	}
}

// ToPayload converts the notification to its full wire shape.
func (n Notification) ToPayload() Payload {
	metadata := n.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	return Payload{
		ID:        n.ID,
		UserID:    n.UserID,
		Channel:   n.Channel,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Metadata:  metadata,
		ActionURL: n.ActionURL,
		Status:    n.Status,
		SentAt:    formatTimePtr(n.SentAt),
		ReadAt:    formatTimePtr(n.ReadAt),
		IsRead:    n.IsRead(),
		TimeAgo:   TimeAgo(n.CreatedAt, time.Now()),
		CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: n.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

// TimeAgo renders a coarse human-readable age for notification feeds.
func TimeAgo(created, now time.Time) string {
	diff := now.Sub(created)
	if diff < 0 {
		diff = 0
	}

	days := int(diff.Hours() / 24)
	switch {
	case days == 1:
		return "1 day ago"
	case days > 1 && days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days >= 7 && days < 30:
		weeks := days / 7
		return fmt.Sprintf("%d week%s ago", weeks, plural(weeks))
	case days >= 30:
		months := days / 30
		return fmt.Sprintf("%d month%s ago", months, plural(months))
	}

	if hours := int(diff.Hours()); hours > 0 {
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	}
	if minutes := int(diff.Minutes()); minutes > 0 {
		return fmt.Sprintf("%d minute%s ago", minutes, plural(minutes))
	}
	return "Just now"
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
