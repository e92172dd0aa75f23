package adapter

import (
	"context"
	"sync"
	"time"

	domain "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/application/domain"
	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// MemNotificationRepository is an in-memory port.NotificationRepository used
// in tests and local development without Postgres.
type MemNotificationRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.Notification
}

func NewMemNotificationRepository() *MemNotificationRepository {
	return &MemNotificationRepository{}
}

var _ port.NotificationRepository = (*MemNotificationRepository)(nil)

func (r *MemNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n.ID = r.nextID
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	r.rows = append(r.rows, *n)
	return nil
}

func (r *MemNotificationRepository) ListForUser(ctx context.Context, userID int64, f port.ListFilter) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// rows are append-ordered; iterate backwards for newest first
	var out []domain.Notification
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.rows[i]
		if n.UserID != userID {
			continue
		}
		if f.IsRead != nil && n.IsRead() != *f.IsRead {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *MemNotificationRepository) FindForUser(ctx context.Context, id, userID int64) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.index(id, userID); i >= 0 {
		return r.rows[i], nil
	}
	return domain.Notification{}, port.ErrNotificationNotFound
}

func (r *MemNotificationRepository) MarkRead(ctx context.Context, id, userID int64) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id, userID)
	if i < 0 {
		return domain.Notification{}, port.ErrNotificationNotFound
	}
	if r.rows[i].ReadAt == nil {
		now := time.Now().UTC()
		r.rows[i].ReadAt = &now
		r.rows[i].UpdatedAt = now
	}
	return r.rows[i], nil
}

func (r *MemNotificationRepository) MarkUnread(ctx context.Context, id, userID int64) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id, userID)
	if i < 0 {
		return domain.Notification{}, port.ErrNotificationNotFound
	}
	r.rows[i].ReadAt = nil
	r.rows[i].UpdatedAt = time.Now().UTC()
	return r.rows[i], nil
}

func (r *MemNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	count := 0
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].ReadAt == nil {
			r.rows[i].ReadAt = &now
			r.rows[i].UpdatedAt = now
			count++
		}
	}
	return count, nil
}

func (r *MemNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *MemNotificationRepository) Delete(ctx context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id, userID)
	if i < 0 {
		return port.ErrNotificationNotFound
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

func (r *MemNotificationRepository) DeleteAll(ctx context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	count := 0
	for _, n := range r.rows {
		if n.UserID == userID {
			count++
			continue
		}
		kept = append(kept, n)
	}
	r.rows = kept
	return count, nil
}

// index must be called with the mutex held.
func (r *MemNotificationRepository) index(id, userID int64) int {
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].UserID == userID {
			return i
		}
	}
	return -1
}
