package usecase

import (
	"context"
	"fmt"

	"github.com/SulimanRohany/deen-bridge-backend/internal/pkg/notification/persistence/repository/port"
)

// DeleteAllNotificationsUseCase clears a user's notification center and
// reports how many rows were removed.
type DeleteAllNotificationsUseCase struct {
	Repo port.NotificationRepository
}

func NewDeleteAllNotificationsUseCase(repo port.NotificationRepository) *DeleteAllNotificationsUseCase {
	return &DeleteAllNotificationsUseCase{Repo: repo}
}

func (uc *DeleteAllNotificationsUseCase) Execute(ctx context.Context, userID int64) (int, error) {
	if userID == 0 {
		return 0, fmt.Errorf("userId is required")
	}
	count, err := uc.Repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
