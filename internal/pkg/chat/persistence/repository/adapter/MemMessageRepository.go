package adapter

import (
	"context"
	"sync"

	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// MemMessageRepository is the in-memory MessageRepository used by tests
// and local development without a database.
type MemMessageRepository struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*memMessage
}

type memMessage struct {
	chat.Message
	readBy map[int64]struct{}
}

func NewMemMessageRepository() *MemMessageRepository {
	return &MemMessageRepository{nextID: 1}
}

var _ repository.MessageRepository = (*MemMessageRepository)(nil)

func (r *MemMessageRepository) SaveMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.ID = r.nextID
	r.nextID++
	r.msgs = append(r.msgs, &memMessage{
		Message: m,
		readBy:  map[int64]struct{}{m.Sender.ID: {}},
	})
	return m, nil
}

func (r *MemMessageRepository) History(_ context.Context, sessionID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var live []chat.Message
	for _, m := range r.msgs {
		if m.SessionID == sessionID && !m.Deleted {
			live = append(live, m.Message)
		}
	}
	if len(live) > limit {
		live = live[len(live)-limit:]
	}
	return live, nil
}

func (r *MemMessageRepository) UnreadCount(_ context.Context, sessionID string, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, m := range r.msgs {
		if m.SessionID != sessionID || m.Deleted {
			continue
		}
		if _, read := m.readBy[userID]; !read {
			count++
		}
	}
	return count, nil
}

func (r *MemMessageRepository) MarkRead(_ context.Context, sessionID string, userID int64, ceiling *int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	marked := 0
	for _, m := range r.msgs {
		if m.SessionID != sessionID || m.Deleted {
			continue
		}
		if ceiling != nil && m.ID > *ceiling {
			continue
		}
		if _, read := m.readBy[userID]; !read {
			m.readBy[userID] = struct{}{}
			marked++
		}
	}
	return marked, nil
}

func (r *MemMessageRepository) SoftDelete(_ context.Context, messageID, requesterID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.msgs {
		if m.ID != messageID {
			continue
		}
		if m.Sender.ID != requesterID {
			return repository.ErrNotSender
		}
		m.Deleted = true
		return nil
	}
	return repository.ErrMessageNotFound
}

// ReadBy reports whether userID has read messageID. Test helper.
func (r *MemMessageRepository) ReadBy(messageID, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.msgs {
		if m.ID == messageID {
			_, ok := m.readBy[userID]
			return ok
		}
	}
	return false
}
