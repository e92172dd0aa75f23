package domain

import (
	"encoding/json"
	"fmt"

	"github.com/SulimanRohany/deen-bridge-backend/internal/infrastructure/fabric"
)

// Feed event names. The set is closed: DecodeEvent rejects anything else,
// and the feed socket switches exhaustively over the decoded types.
const (
	EventCreated = "notification_message"
	EventUpdated = "notification_update"
)

// Event is the closed union of everything a user's notification feed can
// carry.
type Event interface{ isNotificationEvent() }

// CreatedEvent pushes a freshly persisted notification.
type CreatedEvent struct {
	Notification ListPayload `json:"notification"`
}

// UpdatedEvent signals a state change (read/unread) on a stored
// notification; Updates carries the mutated fields.
type UpdatedEvent struct {
	NotificationID int64          `json:"notification_id"`
	Updates        map[string]any `json:"updates"`
}

func (CreatedEvent) isNotificationEvent() {}
func (UpdatedEvent) isNotificationEvent() {}

// DecodeEvent maps a fabric envelope back to its typed event.
func DecodeEvent(env fabric.Envelope) (Event, error) {
	switch env.Event {
	case EventCreated:
		var e CreatedEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventUpdated:
		var e UpdatedEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("notification: unknown feed event %q", env.Event)
	}
}
