package usecase

import (
	"context"
	"fmt"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// UnreadCountUseCase counts a user's unread notifications. The count is
// recomputed per call, never cached.
type UnreadCountUseCase struct {
	Repo port.NotificationRepository
}

func NewUnreadCountUseCase(repo port.NotificationRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, userID int64) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("userId is required")
	}
	count, err := uc.Repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
