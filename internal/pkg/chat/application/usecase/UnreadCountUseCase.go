package usecase

import (
	"context"
	"fmt"

	repository "github.com/SulimanRohany/deen-bridge-backend/internal/pkg/chat/persistence/repository/port"
)

// UnreadCountUseCase recomputes a user's unread count for a session. It is
// invoked per recipient at delivery time; the count is never cached.
type UnreadCountUseCase struct {
	Repo repository.MessageRepository
}

func NewUnreadCountUseCase(repo repository.MessageRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, sessionID string, userID int64) (int, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionId is required")
	}
	count, err := uc.Repo.UnreadCount(ctx, sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
