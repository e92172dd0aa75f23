package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// PgMessageRepository stores chat messages in the tables the platform
// backend already manages (chats_chatmessage and its read-by join table),
// so the realtime service and the REST backend share one source of truth.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgMessageRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO chats_chatmessage (session_id, sender_id, message, message_type, is_deleted, created_at, updated_at)
		VALUES ($1::bigint, $2, $3, $4, FALSE, $5, $5)
		RETURNING id
	`, m.SessionID, m.Sender.ID, m.Body, string(m.Kind), m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return chat.Message{}, err
	}

	// Sender joins the read-by set atomically with the insert.
	_, err = tx.Exec(ctx, `
		INSERT INTO chats_chatmessage_read_by (chatmessage_id, customuser_id)
		VALUES ($1, $2)
		ON CONFLICT (chatmessage_id, customuser_id) DO NOTHING
	`, m.ID, m.Sender.ID)
	if err != nil {
		return chat.Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PgMessageRepository) History(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.session_id::text, m.sender_id, u.full_name, u.email, u.role,
		       m.message, m.message_type, m.is_deleted, m.created_at
		FROM chats_chatmessage m
		JOIN accounts_customuser u ON u.id = m.sender_id
		WHERE m.session_id = $1::bigint AND NOT m.is_deleted
		ORDER BY m.created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			m    chat.Message
			kind string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender.ID, &m.Sender.Name, &m.Sender.Email,
			&m.Sender.Role, &m.Body, &kind, &m.Deleted, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Kind = chat.Kind(kind)
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	// Query returns newest-first for the LIMIT; flip to chronological.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *PgMessageRepository) UnreadCount(ctx context.Context, sessionID string, userID int64) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM chats_chatmessage m
		WHERE m.session_id = $1::bigint AND NOT m.is_deleted
		  AND NOT EXISTS (
			SELECT 1 FROM chats_chatmessage_read_by r
			WHERE r.chatmessage_id = m.id AND r.customuser_id = $2
		  )
	`, sessionID, userID).Scan(&count)
	return count, err
}

func (r *PgMessageRepository) MarkRead(ctx context.Context, sessionID string, userID int64, ceiling *int64) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO chats_chatmessage_read_by (chatmessage_id, customuser_id)
		SELECT m.id, $2
		FROM chats_chatmessage m
		WHERE m.session_id = $1::bigint AND NOT m.is_deleted
		  AND ($3::bigint IS NULL OR m.id <= $3::bigint)
		ON CONFLICT (chatmessage_id, customuser_id) DO NOTHING
	`, sessionID, userID, ceiling)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *PgMessageRepository) SoftDelete(ctx context.Context, messageID, requesterID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chats_chatmessage
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND sender_id = $2
	`, messageID, requesterID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chats_chatmessage WHERE id = $1)`, messageID,
	).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if exists {
		return repository.ErrNotSender
	}
	return repository.ErrMessageNotFound
}
