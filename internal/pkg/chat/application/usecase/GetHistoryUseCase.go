package usecase

import (
	"context"
	"fmt"

	chat "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/application/domain"
	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// DefaultHistoryLimit bounds history responses when the client does not ask
// for a specific window.
const DefaultHistoryLimit = 50

// GetHistoryInput identifies the session window and the requesting user.
type GetHistoryInput struct {
	SessionID string
	UserID    int64
	Limit     int
}

// GetHistoryOutput is the history page plus the requester's unread count,
// recomputed at call time.
type GetHistoryOutput struct {
	Messages    []chat.Message
	UnreadCount int
}

// GetHistoryUseCase fetches recent non-deleted messages in chronological
// order together with the requester's current unread count.
type GetHistoryUseCase struct {
	Repo repository.MessageRepository
}

func NewGetHistoryUseCase(repo repository.MessageRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) (*GetHistoryOutput, error) {
	if in.SessionID == "" {
		return nil, fmt.Errorf("sessionId is required")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	msgs, err := uc.Repo.History(ctx, in.SessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	unread, err := uc.Repo.UnreadCount(ctx, in.SessionID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &GetHistoryOutput{Messages: msgs, UnreadCount: unread}, nil
}
