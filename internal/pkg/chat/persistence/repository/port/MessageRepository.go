package repository

import (
	"context"
	"errors"

	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
)

var (
	ErrMessageNotFound = errors.New("chat: message not found")
	ErrNotSender       = errors.New("chat: only the sender may delete a message")
)

// MessageRepository defines persistence operations for session chat.
//
// Unread counts are always recomputed from the read-by set; nothing here
// caches them. Read-by mutation is a set-add (commutative, idempotent), so
// concurrent markers need no coordination beyond the store's per-row
// atomicity.
type MessageRepository interface {
	// SaveMessage persists m, assigns its id, and adds the sender to the
	// read-by set in the same transaction.
	SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	// History returns up to limit most recent non-deleted messages for the
	// session, in chronological order.
	History(ctx context.Context, sessionID string, limit int) ([]chat.Message, error)

	// UnreadCount counts non-deleted session messages whose read-by set
	// does not contain userID.
	UnreadCount(ctx context.Context, sessionID string, userID int64) (int, error)

	// MarkRead adds userID to the read-by set of every unread non-deleted
	// message in the session, restricted to ids <= *ceiling when a ceiling
	// is given. It returns how many messages were newly marked.
	MarkRead(ctx context.Context, sessionID string, userID int64, ceiling *int64) (int, error)

	// SoftDelete flags a message deleted. Only the sender may delete;
	// ErrNotSender or ErrMessageNotFound otherwise.
	SoftDelete(ctx context.Context, messageID, requesterID int64) error
}
