package port

import (
	"context"
	"errors"

	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
)

// ErrNotificationNotFound reports that the notification does not exist or
// belongs to another user. Ownership failures are indistinguishable from
// missing rows on purpose.
var ErrNotificationNotFound = errors.New("notification not found")

// ListFilter narrows a user's notification feed.
type ListFilter struct {
	IsRead *bool  // nil means both read and unread
	Type   string // empty means all types
	Limit  int    // 0 means repository default
}

// NotificationRepository stores per-user notifications. Every operation is
// scoped to the owning user: a notification id from another user behaves as
// if it did not exist.
type NotificationRepository interface {
	// Save inserts the notification and fills in ID, CreatedAt and UpdatedAt.
	Save(ctx context.Context, n *domain.Notification) error

	// ListForUser returns the user's notifications, newest first.
	ListForUser(ctx context.Context, userID int64, f ListFilter) ([]domain.Notification, error)

	// FindForUser fetches one notification owned by the user.
	FindForUser(ctx context.Context, id, userID int64) (domain.Notification, error)

	// MarkRead stamps read_at if unset and returns the row. Marking an
	// already-read notification changes nothing.
	MarkRead(ctx context.Context, id, userID int64) (domain.Notification, error)

	// MarkUnread clears read_at and returns the row.
	MarkUnread(ctx context.Context, id, userID int64) (domain.Notification, error)

	// MarkAllRead stamps read_at on every unread notification of the user
	// and reports how many rows changed.
	MarkAllRead(ctx context.Context, userID int64) (int, error)

	// UnreadCount counts the user's unread notifications.
	UnreadCount(ctx context.Context, userID int64) (int, error)

	// Delete removes one notification owned by the user.
	Delete(ctx context.Context, id, userID int64) error

	// DeleteAll removes every notification of the user and reports the count.
	DeleteAll(ctx context.Context, userID int64) (int, error)
}
