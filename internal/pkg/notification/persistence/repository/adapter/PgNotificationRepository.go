package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// DefaultListLimit bounds feed queries when the caller does not ask for a
// specific page size.
const DefaultListLimit = 50

// MaxListLimit caps client-supplied page sizes.
const MaxListLimit = 100

const notificationColumns = `id, user_id, channel, type, title, body, metadata, action_url, status, sent_at, read_at, created_at, updated_at`

// PgNotificationRepository implements port.NotificationRepository on the
// shared Postgres schema.
type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

var _ port.NotificationRepository = (*PgNotificationRepository)(nil)

func (r *PgNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	metadata := n.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications_notification
			(user_id, channel, type, title, body, metadata, action_url, status, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, created_at, updated_at`,
		n.UserID, n.Channel, n.Type, n.Title, n.Body, metadata, nullableString(n.ActionURL), n.Status, n.SentAt, now,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PgNotificationRepository) ListForUser(ctx context.Context, userID int64, f port.ListFilter) ([]domain.Notification, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications_notification
		WHERE user_id = $1`
	args := []any{userID}

	if f.IsRead != nil {
		if *f.IsRead {
			query += ` AND read_at IS NOT NULL`
		} else {
			query += ` AND read_at IS NULL`
		}
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PgNotificationRepository) FindForUser(ctx context.Context, id, userID int64) (domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications_notification
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Notification{}, port.ErrNotificationNotFound
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (r *PgNotificationRepository) MarkRead(ctx context.Context, id, userID int64) (domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications_notification
		SET read_at = COALESCE(read_at, now()), updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		id, userID,
	)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Notification{}, port.ErrNotificationNotFound
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (r *PgNotificationRepository) MarkUnread(ctx context.Context, id, userID int64) (domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications_notification
		SET read_at = NULL, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		id, userID,
	)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Notification{}, port.ErrNotificationNotFound
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("mark notification unread: %w", err)
	}
	return n, nil
}

func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications_notification
		SET read_at = now(), updated_at = now()
		WHERE user_id = $1 AND read_at IS NULL`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM notifications_notification
		WHERE user_id = $1 AND read_at IS NULL`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *PgNotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications_notification
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) DeleteAll(ctx context.Context, userID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications_notification
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanNotification(row pgx.Row) (domain.Notification, error) {
	var (
		n         domain.Notification
		actionURL *string
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Channel, &n.Type, &n.Title, &n.Body,
		&n.Metadata, &actionURL, &n.Status, &n.SentAt, &n.ReadAt,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return domain.Notification{}, err
	}
	if actionURL != nil {
		n.ActionURL = *actionURL
	}
	return n, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
