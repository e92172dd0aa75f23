package usecase

import (
	"context"
	"fmt"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// MarkAllReadUseCase stamps every unread notification of a user as read and
// reports how many changed.
type MarkAllReadUseCase struct {
	Repo port.NotificationRepository
}

func NewMarkAllReadUseCase(repo port.NotificationRepository) *MarkAllReadUseCase {
	return &MarkAllReadUseCase{Repo: repo}
}

func (uc *MarkAllReadUseCase) Execute(ctx context.Context, userID int64) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("userId is required")
	}
	count, err := uc.Repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
